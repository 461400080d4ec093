package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var cfgErr *api.ConfigError
	var structured *api.StructuredError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: idm config set --base-url https://idm.example.com\n")
		msg.WriteString("  - Or pass --base-url for a single command\n")

	case errors.Is(err, config.ErrProfileNotFound):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - List profiles: idm config list\n")
		msg.WriteString("  - Create it: idm config set --profile NAME --base-url URL\n")

	case errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Configuration error: %s\n\n", cfgErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Inspect the resolved route table: idm prefixes\n")
		msg.WriteString("  - Check the active profile: idm config show\n")

	case errors.As(err, &apiErr) && apiErr.StatusCode == 0:
		fmt.Fprintf(&msg, "Request failed: %s\n\n", apiErr.Message)
		msg.WriteString(networkSuggestions(apiErr))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, apiErr.Message)
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode, apiErr.Message))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &structured):
		fmt.Fprintf(&msg, "Error: %s\n", structured.Message)
		if structured.Suggestion != "" {
			fmt.Fprintf(&msg, "\nSuggestion: %s\n", structured.Suggestion)
		}

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func networkSuggestions(apiErr *api.APIError) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")
	text := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(text, "connection refused"):
		s.WriteString("  - Check if the IDM server is running\n")
		s.WriteString("  - Verify the URL: idm config show\n")
	case strings.Contains(text, "no such host"):
		s.WriteString("  - Check the server URL spelling\n")
		s.WriteString("  - Verify your DNS settings\n")
	case strings.Contains(text, "certificate") || strings.Contains(text, "tls"):
		s.WriteString("  - Verify the server's TLS certificate\n")
		s.WriteString("  - Ensure you're using https:// correctly\n")
	case strings.Contains(text, "decode"):
		s.WriteString("  - The server answered with an unexpected body\n")
		s.WriteString("  - Check the route prefixes: idm prefixes\n")
	default:
		s.WriteString("  - Check your network connection\n")
		s.WriteString("  - Increase --timeout for slow servers\n")
	}
	return s.String()
}

func suggestionsForStatusCode(code int, message string) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == http.StatusBadRequest:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the request\n")
		if strings.Contains(strings.ToLower(message), "required") {
			suggestions.WriteString("  - A required field may be missing\n")
		}

	case code == http.StatusUnauthorized:
		suggestions.WriteString("  - Your session is missing or expired\n")
		suggestions.WriteString("  - Run: idm login, then pass the session with --session-cookie\n")

	case code == http.StatusForbidden:
		suggestions.WriteString("  - You don't have permission for this action\n")
		suggestions.WriteString("  - Complete two-factor validation if login asked for it\n")

	case code == http.StatusNotFound:
		suggestions.WriteString("  - The endpoint doesn't exist on this server\n")
		suggestions.WriteString("  - Check the route layout: idm prefixes\n")
		suggestions.WriteString("  - Try --api-version, --legacy-prefixes or --prefix group=/path\n")

	case code == http.StatusConflict:
		suggestions.WriteString("  - The value is already taken\n")

	case code == http.StatusUnprocessableEntity:
		suggestions.WriteString("  - Validation failed\n")
		suggestions.WriteString("  - Check your input values\n")

	case code == http.StatusTooManyRequests:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry in a few seconds\n")

	case code >= 500:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
