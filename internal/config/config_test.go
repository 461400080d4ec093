package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
)

// withMockKeyring sets up an in-memory keyring for the duration of a test
func withMockKeyring(t *testing.T) *keyring.ArrayKeyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
	return ring
}

// withFailingKeyring sets up a keyring that always fails to open
func withFailingKeyring(t *testing.T, err error) {
	t.Helper()
	t.Cleanup(SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return nil, err
	}))
}

func TestProfileKey(t *testing.T) {
	tests := []struct {
		profile  string
		expected string
	}{
		{"", profilePrefix + "default"},
		{"default", profilePrefix + "default"},
		{"staging", profilePrefix + "staging"},
	}
	for _, tt := range tests {
		if got := profileKey(tt.profile); got != tt.expected {
			t.Errorf("profileKey(%q) = %q, want %q", tt.profile, got, tt.expected)
		}
	}
}

func TestNormalizeProfiles(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil input", nil, nil},
		{"duplicates removed", []string{"default", "work", "default"}, []string{"default", "work"}},
		{"whitespace trimmed", []string{" default ", "  work  "}, []string{"default", "work"}},
		{"empty strings removed", []string{"", "a", "  "}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeProfiles(tt.input)
			if strings.Join(result, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("normalizeProfiles(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr string
	}{
		{"minimal", Profile{BaseURL: "https://idm.example.com"}, ""},
		{"full", Profile{
			BaseURL:      "https://idm.example.com",
			BasePrefix:   "/gateway/idm",
			APIVersion:   "v2",
			Prefixes:     map[string]string{"twoFA": "/custom/2fa"},
			CacheBackend: "redis",
			RedisURL:     "redis://localhost:6379/0",
		}, ""},
		{"missing base url", Profile{}, "BaseURL"},
		{"relative base url", Profile{BaseURL: "idm.example.com"}, "BaseURL"},
		{"base prefix not rooted", Profile{BaseURL: "https://idm.example.com", BasePrefix: "api"}, "BasePrefix"},
		{"override not rooted", Profile{BaseURL: "https://idm.example.com", Prefixes: map[string]string{"auth": "auth"}}, "Prefixes"},
		{"bad cache backend", Profile{BaseURL: "https://idm.example.com", CacheBackend: "memcached"}, "CacheBackend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("Validate() = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestSaveLoadProfile(t *testing.T) {
	withMockKeyring(t)

	staging := Profile{BaseURL: "https://staging.example.com", APIVersion: "v2"}
	if err := SaveProfile("staging", staging); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := LoadProfile("staging")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got.BaseURL != staging.BaseURL || got.APIVersion != "v2" {
		t.Fatalf("LoadProfile = %+v", got)
	}

	current, err := CurrentProfile()
	if err != nil || current != "staging" {
		t.Fatalf("CurrentProfile = %q, %v", current, err)
	}
}

func TestSaveProfile_RejectsInvalid(t *testing.T) {
	ring := withMockKeyring(t)

	if err := SaveProfile("bad", Profile{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected validation error")
	}
	if keys, _ := ring.Keys(); len(keys) != 0 {
		t.Fatalf("nothing should be written, got keys %v", keys)
	}
}

func TestLoadProfile_NotFound(t *testing.T) {
	withMockKeyring(t)

	_, err := LoadProfile("absent")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("LoadProfile error = %v, want ErrProfileNotFound", err)
	}
}

func TestListAndDeleteProfiles(t *testing.T) {
	withMockKeyring(t)

	for _, name := range []string{"default", "staging", "prod"} {
		if err := SaveProfile(name, Profile{BaseURL: "https://" + name + ".example.com"}); err != nil {
			t.Fatalf("SaveProfile(%s): %v", name, err)
		}
	}

	profiles, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if strings.Join(profiles, ",") != "default,staging,prod" {
		t.Fatalf("ListProfiles = %v", profiles)
	}

	if err := DeleteProfile("prod"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	current, _ := CurrentProfile()
	if current != "default" {
		t.Fatalf("current after delete = %q, want default", current)
	}
	if err := DeleteProfile("prod"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("second delete = %v, want ErrProfileNotFound", err)
	}
}

func TestKeyringOpenFailure(t *testing.T) {
	withFailingKeyring(t, errors.New("locked"))

	if _, err := LoadProfile("default"); err == nil || !strings.Contains(err.Error(), "failed to open keyring") {
		t.Fatalf("LoadProfile error = %v", err)
	}
	if err := SaveProfile("default", Profile{BaseURL: "https://idm.example.com"}); err == nil {
		t.Fatal("SaveProfile should fail")
	}
}

func TestShouldForceFileBackend(t *testing.T) {
	tests := []struct {
		goos, backend, dbus string
		want                bool
	}{
		{"linux", keyringBackendFile, "x", true},
		{"linux", keyringBackendAuto, "", true},
		{"linux", keyringBackendAuto, "unix:path=/run/user/1000/bus", false},
		{"linux", keyringBackendSystem, "", false},
		{"darwin", keyringBackendAuto, "", false},
	}
	for _, tt := range tests {
		if got := shouldForceFileBackend(tt.goos, tt.backend, tt.dbus); got != tt.want {
			t.Errorf("shouldForceFileBackend(%q, %q, %q) = %v, want %v", tt.goos, tt.backend, tt.dbus, got, tt.want)
		}
	}
}

func TestKeyringBackendMode(t *testing.T) {
	tests := map[string]string{
		"":       keyringBackendAuto,
		"file":   keyringBackendFile,
		"System": keyringBackendSystem,
		"native": keyringBackendSystem,
		"weird":  keyringBackendAuto,
	}
	for value, want := range tests {
		t.Setenv(envKeyringBackend, value)
		if got := keyringBackendMode(); got != want {
			t.Errorf("keyringBackendMode(%q) = %q, want %q", value, got, want)
		}
	}
}

func TestKeyringFileDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv(envCredentialsDir, base)

	if got, want := keyringFileDir(), filepath.Join(base, "keyring"); got != want {
		t.Fatalf("keyringFileDir() = %q, want %q", got, want)
	}
}

func TestKeyringFileDir_DefaultsToUserConfigDir(t *testing.T) {
	t.Setenv(envCredentialsDir, "")

	fakeConfigDir := t.TempDir()
	original := userConfigDir
	userConfigDir = func() (string, error) { return fakeConfigDir, nil }
	t.Cleanup(func() { userConfigDir = original })

	if got, want := keyringFileDir(), filepath.Join(fakeConfigDir, serviceName, "keyring"); got != want {
		t.Fatalf("keyringFileDir() = %q, want %q", got, want)
	}
}

func TestKeyringFilePassword(t *testing.T) {
	t.Setenv(envKeyringPassword, "env-pass")
	password, err := keyringFilePassword("prompt")
	if err != nil || password != "env-pass" {
		t.Fatalf("keyringFilePassword() = %q, %v", password, err)
	}

	t.Setenv(envKeyringPassword, "")
	original := stdinHasTTY
	stdinHasTTY = func() bool { return false }
	t.Cleanup(func() { stdinHasTTY = original })

	_, err = keyringFilePassword("prompt")
	if err == nil || !strings.Contains(err.Error(), envKeyringPassword) {
		t.Fatalf("error = %v, want to mention %s", err, envKeyringPassword)
	}
}
