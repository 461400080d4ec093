package api

import (
	"fmt"
	"strings"
	"unicode"
)

var commonPasswords = map[string]struct{}{
	"123456":      {},
	"12345678":    {},
	"123456789":   {},
	"password":    {},
	"password1":   {},
	"password123": {},
	"qwerty":      {},
	"qwerty123":   {},
	"letmein":     {},
	"welcome":     {},
	"admin":       {},
	"iloveyou":    {},
	"abc123":      {},
	"111111":      {},
	"monkey":      {},
	"dragon":      {},
}

// Check lists the rules password breaks. An empty result means the password
// satisfies every rule the client can evaluate locally; history and
// expiration rules are server-side only.
func (p PasswordPolicy) Check(password string) []string {
	var violations []string

	if p.MinLength > 0 && len([]rune(password)) < p.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			special = true
		}
	}
	if p.RequireUppercase && !upper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if p.RequireLowercase && !lower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if p.RequireDigit && !digit {
		violations = append(violations, "must contain a digit")
	}
	if p.RequireSpecialChar && !special {
		violations = append(violations, "must contain a special character")
	}
	if p.MaxRepeatedChars > 0 && longestRun(password) > p.MaxRepeatedChars {
		violations = append(violations, fmt.Sprintf("must not repeat a character more than %d times in a row", p.MaxRepeatedChars))
	}
	if p.DisallowCommonPwds {
		if _, ok := commonPasswords[strings.ToLower(password)]; ok {
			violations = append(violations, "must not be a commonly used password")
		}
	}
	return violations
}

func longestRun(s string) int {
	longest, run := 0, 0
	var prev rune
	for i, r := range []rune(s) {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = r
	}
	return longest
}
