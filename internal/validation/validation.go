package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	MaxWordLength   = 64
	MaxSpeechLength = 200
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateWord checks a practised word: letters plus inner spaces, hyphens and apostrophes
func ValidateWord(word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ValidationError{Field: "word", Message: "word is required"}
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		return ValidationError{Field: "word", Message: fmt.Sprintf("word must be at most %d characters", MaxWordLength)}
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return ValidationError{Field: "word", Message: "word may only contain letters, spaces, hyphens and apostrophes"}
		}
	}
	return nil
}

// ValidateSpeechText checks text sent to the speech proxy
func ValidateSpeechText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ValidationError{Field: "text", Message: "text is required"}
	}
	if utf8.RuneCountInString(text) > MaxSpeechLength {
		return ValidationError{Field: "text", Message: fmt.Sprintf("text must be at most %d characters", MaxSpeechLength)}
	}
	return nil
}
