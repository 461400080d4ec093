// Package dryrun previews mutating IDM requests instead of sending them.
package dryrun

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const masked = "********"

// secretFields are request body fields whose values are never printed.
var secretFields = map[string]bool{
	"password":         true,
	"current_password": true,
	"new_password":     true,
	"passcode":         true,
	"code":             true,
	"token":            true,
}

// Preview describes one request that was not sent.
type Preview struct {
	Method   string         `json:"method"`
	URL      string         `json:"url"`
	Body     map[string]any `json:"body,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// SkippedError is returned by Transport in place of a response. The client
// wraps it, so callers find it with errors.As.
type SkippedError struct {
	Preview *Preview
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("dry-run: %s %s not sent", e.Preview.Method, e.Preview.URL)
}

// Transport passes reads through to Base and turns every other request
// into a *SkippedError.
type Transport struct {
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		base := t.Base
		if base == nil {
			base = http.DefaultTransport
		}
		return base.RoundTrip(req)
	}

	preview, err := PreviewRequest(req)
	if err != nil {
		return nil, err
	}
	return nil, &SkippedError{Preview: preview}
}

// PreviewRequest builds a Preview from req, masking secret body fields.
func PreviewRequest(req *http.Request) (*Preview, error) {
	p := &Preview{Method: req.Method, URL: req.URL.Redacted()}
	if req.Body == nil || req.Body == http.NoBody {
		return p, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		p.Warnings = append(p.Warnings, "request body is not a JSON object")
		return p, nil
	}
	for k, v := range body {
		if secretFields[strings.ToLower(k)] {
			if s, ok := v.(string); ok && s != "" {
				body[k] = masked
			}
		}
	}
	p.Body = body
	return p, nil
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	if len(p.Body) > 0 {
		keys := make([]string, 0, len(p.Body))
		for k := range p.Body {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, p.Body[k])
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}
