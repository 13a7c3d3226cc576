// Package contact validates the portfolio contact form and drives its
// submission lifecycle: idle, submitting, then success or error, then
// back to idle after a fixed display window.
package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields lists every field in focus order.
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// ParseField maps an input name to a Field.
func ParseField(s string) (Field, bool) {
	switch f := Field(s); f {
	case FieldName, FieldEmail, FieldMessage:
		return f, true
	}
	return "", false
}

const (
	NameMin    = 2
	NameMax    = 50
	MessageMin = 10
	MessageMax = 1000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Values holds the raw field contents.
type Values struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Get returns the value of f.
func (v Values) Get(f Field) string {
	switch f {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldMessage:
		return v.Message
	}
	return ""
}

// With returns a copy of v with f set to value.
func (v Values) With(f Field, value string) Values {
	switch f {
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldMessage:
		v.Message = value
	}
	return v
}

// Errors maps a field to its message. A missing key means the field is valid.
type Errors map[Field]string

// First returns the first invalid field in focus order.
func (e Errors) First() (Field, bool) {
	for _, f := range Fields {
		if _, ok := e[f]; ok {
			return f, true
		}
	}
	return "", false
}

// ValidateField returns the error message for one field, or "".
func ValidateField(f Field, value string) string {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	switch f {
	case FieldName:
		switch {
		case n == 0:
			return "Name is required"
		case n < NameMin:
			return "Name must be at least 2 characters"
		case n > NameMax:
			return "Name must be 50 characters or less"
		}
	case FieldEmail:
		switch {
		case n == 0:
			return "Email is required"
		case !emailPattern.MatchString(value):
			return "Please enter a valid email address"
		}
	case FieldMessage:
		switch {
		case n == 0:
			return "Message is required"
		case n < MessageMin:
			return "Message must be at least 10 characters"
		case n > MessageMax:
			return "Message must be 1000 characters or less"
		}
	}
	return ""
}

// Validate checks every field.
func Validate(v Values) Errors {
	errs := Errors{}
	for _, f := range Fields {
		if msg := ValidateField(f, v.Get(f)); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}
