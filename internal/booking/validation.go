package booking

import (
	"regexp"
	"strings"
)

// Contact validation messages.
const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Please enter a valid email"
	MsgPhoneRequired = "Phone number is required"
	MsgPhoneInvalid  = "Please enter a valid 10-digit phone number"
)

var (
	emailPattern    = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneSeparators = regexp.MustCompile(`[\s\p{Zs}()\-]`)
	phonePattern    = regexp.MustCompile(`^\d{10}$`)
)

// ValidateEmail returns the message for an invalid email, or "".
func ValidateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidatePhone returns the message for an invalid phone number, or "".
// Spaces, parentheses and hyphens are ignored; exactly ten digits must remain.
func ValidatePhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return MsgPhoneRequired
	}
	if !phonePattern.MatchString(phoneSeparators.ReplaceAllString(phone, "")) {
		return MsgPhoneInvalid
	}
	return ""
}

// ValidateContact checks every required field and returns one message per
// failing field. The message field is optional.
func ValidateContact(c Contact) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}
	if msg := ValidateEmail(c.Email); msg != "" {
		errs[FieldEmail] = msg
	}
	if msg := ValidatePhone(c.Phone); msg != "" {
		errs[FieldPhone] = msg
	}
	return errs
}
