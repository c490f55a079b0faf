package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrRateLimited       = errors.New("too many requests")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

const (
	maxNameLength    = 100
	maxMessageLength = 5000
)

// ValidationError carries the message shown to the visitor.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RateLimitError is returned once a client address has used up its window.
// It matches ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

type Message struct {
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Message   string    `bson:"message" json:"message"`
	ClientIP  string    `bson:"client_ip" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Subscriber struct {
	Email     string    `bson:"email" json:"email"`
	Source    string    `bson:"source,omitempty" json:"source,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Normalize trims every field and lowercases the email.
func (m *Message) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = normalizeEmail(m.Email)
	m.Message = strings.TrimSpace(m.Message)
}

func (m Message) Validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if len(m.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: "Name is too long"}
	}
	if err := validateEmail(m.Email); err != nil {
		return err
	}
	if m.Message == "" {
		return &ValidationError{Field: "message", Message: "Message is required"}
	}
	if len(m.Message) > maxMessageLength {
		return &ValidationError{Field: "message", Message: "Message is too long"}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}
