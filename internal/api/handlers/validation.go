package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "Password must be at least 8 characters long"
	}
	return ""
}

// validateCredentials returns the first problem with an email/password pair.
func validateCredentials(email, password string) string {
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	return validatePassword(password)
}
