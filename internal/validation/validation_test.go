package validation

import (
	"reflect"
	"strings"
	"testing"
)

const (
	goodFirst    = "Jane"
	goodLast     = "Doe"
	goodEmail    = "jane@example.com"
	goodPassword = "Str0ng!Pazz"
)

func TestValidateAccepts(t *testing.T) {
	res := Validate(goodFirst, goodLast, goodEmail, goodPassword)
	if !res.OK {
		t.Fatalf("expected valid input to pass, got errors: %v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
}

func TestValidateNames(t *testing.T) {
	cases := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"empty first", "", goodLast, "First name is required."},
		{"whitespace first", "   ", goodLast, "First name is required."},
		{"one char first", "J", goodLast, "First name must be at least 2 characters long."},
		{"51 char first", strings.Repeat("a", 51), goodLast, "First name cannot exceed 50 characters."},
		{"digit in first", "J4ne", goodLast, "First name contains invalid characters. Only letters, spaces, hyphens, and apostrophes are allowed."},
		{"symbol in last", goodFirst, "Doe!", "Last name contains invalid characters. Only letters, spaces, hyphens, and apostrophes are allowed."},
		{"one char last", goodFirst, "D", "Last name must be at least 2 characters long."},
		{"empty last", goodFirst, "", "Last name is required."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(tc.first, tc.last, goodEmail, goodPassword)
			if res.OK {
				t.Fatalf("expected rejection")
			}
			if !containsMessage(res.Errors, tc.want) {
				t.Fatalf("expected %q in %v", tc.want, res.Errors)
			}
		})
	}
}

func TestValidateNameEdges(t *testing.T) {
	for _, name := range []string{"Jo", strings.Repeat("a", 50), "Mary Jane", "O'Brien", "Smith-Jones"} {
		res := Validate(name, name, goodEmail, goodPassword)
		if !res.OK {
			t.Fatalf("expected name %q to pass, got %v", name, res.Errors)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		name  string
		email string
		valid bool
	}{
		{"plain", "user@example.com", true},
		{"subdomain", "user@mail.example.co.uk", true},
		{"plus tag", "user+tag@example.com", true},
		{"uppercase normalized", "USER@EXAMPLE.COM", true},
		{"empty", "", false},
		{"no at", "userexample.com", false},
		{"no tld", "user@example", false},
		{"one letter tld", "user@example.c", false},
		{"double at", "a@b@example.com", false},
		{"display name", `"Jane Doe" <jane@example.com>`, false},
		{"leading dot domain", "user@.example.com", false},
		{"too long", strings.Repeat("a", 250) + "@ex.com", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(goodFirst, goodLast, tc.email, goodPassword)
			if res.OK != tc.valid {
				t.Fatalf("email %q: expected valid=%v, got errors %v", tc.email, tc.valid, res.Errors)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     string
	}{
		{"empty", "", "Password is required."},
		{"too short", "Ab1!xyq", "Password must be at least 8 characters long."},
		{"too long", "Ab1!" + strings.Repeat("xQ", 63), "Password cannot exceed 128 characters."},
		{"no uppercase", "str0ng!pazz", "Password must contain at least one uppercase letter."},
		{"no lowercase", "STR0NG!PAZZ", "Password must contain at least one lowercase letter."},
		{"no digit", "Strong!Pazz", "Password must contain at least one digit."},
		{"no symbol", "Str0ngPazz", `Password must contain at least one special character (!@#$%^&*()_+-=[]{}|;':"\,.<>?/).`},
		{"contains space", "Str0ng! Pazz", "Password cannot contain spaces."},
		{"repeated run", "Straaa0ng!", "Password cannot contain the same character three or more times in a row."},
		{"alpha sequence", "Strabc0ng!", "Password cannot contain sequential characters (e.g. abc, 123)."},
		{"digit sequence", "Strong123!x", "Password cannot contain sequential characters (e.g. abc, 123)."},
		{"denylisted word", "MyPassword9!", "Password contains a common word that makes it weak. Please choose a more secure password."},
		{"denylisted mixed case", "xQwErTy7!z", "Password contains a common word that makes it weak. Please choose a more secure password."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(goodFirst, goodLast, goodEmail, tc.password)
			if res.OK {
				t.Fatalf("expected password %q to be rejected", tc.password)
			}
			if !containsMessage(res.Errors, tc.want) {
				t.Fatalf("expected %q in %v", tc.want, res.Errors)
			}
		})
	}
}

func TestValidatePasswordAccepts(t *testing.T) {
	for _, pw := range []string{"Str0ng!Pazz", "V3ry&Good", "N0t-Weak-At-A11", "xY9#" + strings.Repeat("qT", 62)} {
		res := Validate(goodFirst, goodLast, goodEmail, pw)
		if !res.OK {
			t.Fatalf("expected password %q to pass, got %v", pw, res.Errors)
		}
	}
}

// All checks run independently: a fully broken input reports every field.
func TestValidateAccumulates(t *testing.T) {
	res := Validate("J", "4", "not-an-email", "weak")
	if res.OK {
		t.Fatalf("expected rejection")
	}
	if len(res.Errors) < 4 {
		t.Fatalf("expected failures for every field, got %v", res.Errors)
	}
	// Field order is stable: first name messages come before password ones.
	if !strings.HasPrefix(res.Errors[0], "First name") {
		t.Fatalf("expected first-name message first, got %v", res.Errors)
	}
}

func TestValidateIdempotent(t *testing.T) {
	a := Validate("J", "Doe", "user@example.com", "Weak1!")
	b := Validate("J", "Doe", "user@example.com", "Weak1!")
	if a.OK != b.OK || !reflect.DeepEqual(a.Errors, b.Errors) {
		t.Fatalf("expected identical results, got %v vs %v", a, b)
	}
}

func containsMessage(msgs []string, want string) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}
