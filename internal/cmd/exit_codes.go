package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/config"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
	exitConfig      = 9
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if handled, ok := err.(*handledError); ok {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if errors.Is(err, config.ErrNotConfigured) || errors.Is(err, config.ErrProfileNotFound) || errors.Is(err, config.ErrInvalidProfile) {
		return exitConfig
	}
	if code := exitCodeFromStructured(err); code != 0 {
		return code
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func exitCodeFromStructured(err error) int {
	structured := api.StructuredErrorFromError(err)
	if structured == nil {
		return 0
	}
	switch structured.Code {
	case api.ErrUnauthorized:
		return exitAuth
	case api.ErrForbidden:
		return exitForbidden
	case api.ErrNotFound:
		return exitNotFound
	case api.ErrRateLimited:
		return exitRateLimited
	case api.ErrServerError:
		return exitServer
	case api.ErrNetwork:
		return exitNetwork
	case api.ErrConfig:
		return exitConfig
	case api.ErrBadRequest, api.ErrValidation, api.ErrConflict:
		return exitUsage
	default:
		return 0
	}
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts at most",
		"accepts 1 arg",
		"invalid argument",
		"invalid value",
		"must be",
		"is required",
		"are required",
		"missing",
		"required flag",
		"none of the others can be",
		"at least one of the flags",
		"cannot be used together",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
