// Package validation implements declarative field validation for the signup
// form. Every rule is evaluated independently so the user sees all
// violations at once, in a stable order.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// SignupForm carries the raw submitted signup fields.
type SignupForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	TermsAccepted   bool
}

// SignupRecord is the validated, normalized outcome of a successful
// validation: names trimmed, email lowercased and trimmed. The password is
// passed through untouched for hashing and must never be persisted as-is.
type SignupRecord struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	TermsAccepted bool
}

// FieldError names one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of field errors. It satisfies the error
// interface so services can return it directly.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// PublicValues returns the submitted values that are safe to echo back into
// a re-rendered form. Password fields are deliberately absent.
func (f SignupForm) PublicValues() map[string]string {
	return map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// The normalized form is what uniqueness is checked against.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	alphaSpaceRe = regexp.MustCompile(`^[\p{L} ]+$`)
	emailRe      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// passwordSpecials is the restricted set of accepted special characters.
const passwordSpecials = `!@#$%^&*()-_=+`

type rule struct {
	field string
	check func(f SignupForm) string // empty string means the rule holds
}

// signupRules is the declarative rule table, in display order. It is
// read-only after init and safe for concurrent use.
var signupRules = []rule{
	{"firstName", func(f SignupForm) string {
		name := strings.TrimSpace(f.FirstName)
		if len([]rune(name)) < 2 {
			return "must be at least 2 characters"
		}
		if !alphaSpaceRe.MatchString(name) {
			return "must contain only letters and spaces"
		}
		return ""
	}},
	{"lastName", func(f SignupForm) string {
		name := strings.TrimSpace(f.LastName)
		if name != "" && !alphaSpaceRe.MatchString(name) {
			return "must contain only letters and spaces"
		}
		return ""
	}},
	{"email", func(f SignupForm) string {
		if !emailRe.MatchString(NormalizeEmail(f.Email)) {
			return "must be a valid email address"
		}
		return ""
	}},
	{"password", func(f SignupForm) string {
		if len([]rune(f.Password)) < 8 {
			return "must be at least 8 characters"
		}
		return ""
	}},
	{"password", func(f SignupForm) string {
		return checkPasswordComplexity(f.Password)
	}},
	{"confirmPassword", func(f SignupForm) string {
		if f.ConfirmPassword != f.Password {
			return "must match the password"
		}
		return ""
	}},
	{"terms", func(f SignupForm) string {
		if !f.TermsAccepted {
			return "must be accepted"
		}
		return ""
	}},
}

func checkPasswordComplexity(password string) string {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return "must contain an uppercase letter, a lowercase letter, a digit, and one of " + passwordSpecials
	}
	return ""
}

// ValidateSignup runs every rule against the form. On success it returns the
// normalized record; otherwise an ordered Errors list with one entry per
// violated field. Rules are never short-circuited.
func ValidateSignup(f SignupForm) (*SignupRecord, Errors) {
	var errs Errors
	for _, r := range signupRules {
		if msg := r.check(f); msg != "" {
			errs = append(errs, FieldError{Field: r.field, Message: msg})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &SignupRecord{
		FirstName:     strings.TrimSpace(f.FirstName),
		LastName:      strings.TrimSpace(f.LastName),
		Email:         NormalizeEmail(f.Email),
		Password:      f.Password,
		TermsAccepted: f.TermsAccepted,
	}, nil
}
