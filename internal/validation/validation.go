// Package validation holds the pure registration policy checks. No I/O:
// every rule runs against the candidate fields and all failures are
// accumulated so the caller can report every defect at once.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	nameMinLen     = 2
	nameMaxLen     = 50
	emailMaxLen    = 254 // RFC 5321 limit
	passwordMinLen = 8
	passwordMaxLen = 128
)

var (
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	symbolPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	alphaSequences = regexp.MustCompile(`(abc|bcd|cde|def|efg|fgh|ghi|hij|ijk|jkl|klm|lmn|mno|nop|opq|pqr|qrs|rst|stu|tuv|uvw|vwx|wxy|xyz)`)
	digitSequences = regexp.MustCompile(`(123|234|345|456|567|678|789|890)`)

	// Common weak passwords rejected as substrings, case-insensitively.
	denylist = []string{"password", "123456", "qwerty", "admin", "letmein", "welcome", "monkey"}
)

// Result reports the outcome of validating a candidate registration.
type Result struct {
	OK     bool
	Errors []string
}

// Validate checks all four registration fields independently and returns
// every violation in field order (first name, last name, email, password).
// It never short-circuits after the first failure.
func Validate(firstName, lastName, email, password string) Result {
	var errs []string
	errs = append(errs, validateName("First name", firstName)...)
	errs = append(errs, validateName("Last name", lastName)...)
	errs = append(errs, validateEmail(email)...)
	errs = append(errs, validatePassword(password)...)
	return Result{OK: len(errs) == 0, Errors: errs}
}

func validateName(field, name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{field + " is required."}
	}
	var errs []string
	if len(name) < nameMinLen {
		errs = append(errs, fmt.Sprintf("%s must be at least %d characters long.", field, nameMinLen))
	}
	if len(name) > nameMaxLen {
		errs = append(errs, fmt.Sprintf("%s cannot exceed %d characters.", field, nameMaxLen))
	}
	if !namePattern.MatchString(name) {
		errs = append(errs, field+" contains invalid characters. Only letters, spaces, hyphens, and apostrophes are allowed.")
	}
	return errs
}

func validateEmail(email string) []string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return []string{"Email address is required."}
	}
	var errs []string
	if len(email) > emailMaxLen {
		errs = append(errs, fmt.Sprintf("Email address is too long (maximum %d characters).", emailMaxLen))
	}
	if !isValidEmail(email) {
		errs = append(errs, "Please enter a valid email address.")
	}
	return errs
}

// isValidEmail requires both the strict pattern and a structural parse that
// round-trips to the same address. The parse catches shapes the pattern
// alone would accept, e.g. display-name wrapped addresses.
func isValidEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

func validatePassword(password string) []string {
	if strings.TrimSpace(password) == "" {
		return []string{"Password is required."}
	}
	var errs []string
	if len(password) < passwordMinLen {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long.", passwordMinLen))
	}
	if len(password) > passwordMaxLen {
		errs = append(errs, fmt.Sprintf("Password cannot exceed %d characters.", passwordMaxLen))
	}
	if !upperPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter.")
	}
	if !lowerPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one lowercase letter.")
	}
	if !digitPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one digit.")
	}
	if !symbolPattern.MatchString(password) {
		errs = append(errs, `Password must contain at least one special character (!@#$%^&*()_+-=[]{}|;':"\,.<>?/).`)
	}
	if containsWhitespace(password) {
		errs = append(errs, "Password cannot contain spaces.")
	}
	if hasRepeatedRun(password) {
		errs = append(errs, "Password cannot contain the same character three or more times in a row.")
	}
	if hasSequentialRun(password) {
		errs = append(errs, "Password cannot contain sequential characters (e.g. abc, 123).")
	}
	if containsDenylisted(password) {
		errs = append(errs, "Password contains a common word that makes it weak. Please choose a more secure password.")
	}
	return errs
}

func containsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// hasRepeatedRun reports whether any character repeats 3+ times in a row.
func hasRepeatedRun(s string) bool {
	runes := []rune(s)
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func hasSequentialRun(s string) bool {
	return alphaSequences.MatchString(strings.ToLower(s)) || digitSequences.MatchString(s)
}

func containsDenylisted(s string) bool {
	lower := strings.ToLower(s)
	for _, word := range denylist {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
