package validator

import (
	"fmt"
	"regexp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	uppercaseRe   = regexp.MustCompile(`[A-Z]`)
	lowercaseRe   = regexp.MustCompile(`[a-z]`)
	digitRe       = regexp.MustCompile(`[0-9]`)
	specialRe     = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	emailRe       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	totpCodeRe    = regexp.MustCompile(`^\d{6}$`)
)

const (
	minUsernameLen = 4
	minPasswordLen = 10
)

// Required validates that a string is not empty.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return value != "" },
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

// Username validates the registration username policy: at least four
// characters, letters and digits only.
func Username(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= minUsernameLen && usernameRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters of letters and digits", minUsernameLen),
		},
	}
}

// StrongPassword validates the password policy: at least ten characters
// with an uppercase letter, a lowercase letter, a digit and a special
// character.
func StrongPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= minPasswordLen &&
				uppercaseRe.MatchString(value) &&
				lowercaseRe.MatchString(value) &&
				digitRe.MatchString(value) &&
				specialRe.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters and contain upper and lower case letters, a digit and a special character", minPasswordLen),
		},
	}
}

// ValidEmail validates that a string looks like an email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool { return emailRe.MatchString(value) },
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// TOTPCode validates that a string is a six-digit one-time code.
func TOTPCode(field, value string) Rule {
	return Rule{
		Check: func() bool { return totpCodeRe.MatchString(value) },
		Error: ValidationError{Field: field, Message: "must be a 6-digit code"},
	}
}
