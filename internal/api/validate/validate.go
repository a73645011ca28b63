// Package validate holds request-level validation rules shared by handlers.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nooklet/nooklet/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Username must be lowercase letters, digits, underscore, 3-30 chars.
var usernameRx = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func Password(v string) error {
	if len(v) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(v) > 128 {
		return fmt.Errorf("password exceeds 128 characters")
	}
	return nil
}

func Username(v string) error {
	if !usernameRx.MatchString(v) {
		return fmt.Errorf("username must be 3-30 lowercase letters, digits or underscore")
	}
	return nil
}

// Content enforces the creation rule: required and non-empty after trimming.
func Content(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

func NookletType(v model.NookletType) error {
	if !model.ValidNookletType(v) {
		return fmt.Errorf("type must be one of journal, voice, quick_capture")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}
