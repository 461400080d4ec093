package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCommand(t *testing.T) {
	commands := []string{"login", "logout", "status", "signup", "profile", "prefixes"}

	assert.Equal(t, "login", suggestCommand("logni", commands))
	assert.Equal(t, "status", suggestCommand("staus", commands))
	assert.Equal(t, "profile", suggestCommand("PROFILE", commands))
	assert.Empty(t, suggestCommand("zzzzzzzz", commands))
}

func TestSuggestFlag(t *testing.T) {
	flags := []string{"--username", "--password", "--password-stdin", "--show-session"}

	assert.Equal(t, "--username", suggestFlag("--usernme", flags))
	assert.Equal(t, "--password", suggestFlag("--pasword", flags))
	assert.Empty(t, suggestFlag("--", flags))
	assert.Empty(t, suggestFlag("--qqqqqqqqqq", flags))
}
