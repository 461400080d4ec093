package dryrun

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_PassesReadsThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"min_length":8}`))
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{}}
	resp, err := client.Get(server.URL + "/policy")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTransport_SkipsMutations(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{}}
	body := strings.NewReader(`{"username":"alice","password":"hunter2"}`)
	_, err := client.Post(server.URL+"/api/v1/idm/auth/login", "application/json", body)

	var skipped *SkippedError
	require.True(t, errors.As(err, &skipped), "expected SkippedError, got %v", err)
	assert.Equal(t, 0, hits)
	assert.Equal(t, http.MethodPost, skipped.Preview.Method)
	assert.True(t, strings.HasSuffix(skipped.Preview.URL, "/api/v1/idm/auth/login"))
	assert.Equal(t, "alice", skipped.Preview.Body["username"])
	assert.Equal(t, masked, skipped.Preview.Body["password"])
}

func TestPreviewRequest_NonJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "https://idm.example.com/x", strings.NewReader("plain"))
	p, err := PreviewRequest(req)
	require.NoError(t, err)
	assert.Nil(t, p.Body)
	assert.Equal(t, []string{"request body is not a JSON object"}, p.Warnings)
}

func TestPreviewRequest_NoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://idm.example.com/api/v1/idm/auth/logout", nil)
	p, err := PreviewRequest(req)
	require.NoError(t, err)
	assert.Nil(t, p.Body)
	assert.Empty(t, p.Warnings)
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Method: http.MethodPut,
		URL:    "https://idm.example.com/api/v1/idm/profile/phone",
		Body:   map[string]any{"phone": "+12015550123"},
	}

	var buf bytes.Buffer
	p.Write(&buf)

	output := buf.String()
	assert.Contains(t, output, "[DRY-RUN] Would send PUT https://idm.example.com/api/v1/idm/profile/phone")
	assert.Contains(t, output, "phone: +12015550123")
	assert.Contains(t, output, "No changes made")
}
