package iocontext

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDefaultIO(t *testing.T) {
	streams := DefaultIO()
	if streams.Out == nil || streams.ErrOut == nil || streams.In == nil {
		t.Error("DefaultIO should return non-nil streams")
	}
}

func TestWithIO(t *testing.T) {
	out := &bytes.Buffer{}
	streams := &IO{Out: out, ErrOut: &bytes.Buffer{}}
	ctx := WithIO(context.Background(), streams)

	if GetIO(ctx).Out != out {
		t.Error("GetIO should return the IO set with WithIO")
	}
}

func TestGetIO_DefaultsWhenNotSet(t *testing.T) {
	if GetIO(context.Background()) == nil {
		t.Error("GetIO should return default IO when not set")
	}
}

func TestReadSecret(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"newline", "hunter2\n", "hunter2", false},
		{"crlf", "hunter2\r\nignored\n", "hunter2", false},
		{"no newline", "hunter2", "hunter2", false},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streams := &IO{In: strings.NewReader(tt.input)}
			got, err := streams.ReadSecret("password")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadSecret() = %q, want %q", got, tt.want)
			}
		})
	}
}
