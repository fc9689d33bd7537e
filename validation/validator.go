// Package validation evaluates small declarative rule sets against form input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule declares the checks for one field.
// Zero MinLength or MaxLength disables that length check.
type Rule struct {
	Required  bool
	Email     bool
	MinLength int
	MaxLength int
	Label     string
}

// Rules maps field names to their rule.
type Rules map[string]Rule

// WithMaxLength returns a copy of r with every field capped at n characters.
func (r Rules) WithMaxLength(n int) Rules {
	out := make(Rules, len(r))
	for name, rule := range r {
		rule.MaxLength = n
		out[name] = rule
	}
	return out
}

// Field is one named form value. Forms are ordered slices of fields so
// errors come out in the order the fields were declared.
type Field struct {
	Name  string
	Value string
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool
	Errors []string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether value has the local@domain.tld shape.
func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsPresent reports whether value has any non-whitespace content.
func IsPresent(value string) bool {
	return strings.TrimSpace(value) != ""
}

// HasMinLength counts characters, not bytes.
func HasMinLength(value string, min int) bool {
	return value != "" && utf8.RuneCountInString(value) >= min
}

// Validate checks every field that has a rule and collects all errors.
// A failed required check skips the remaining checks for that field only.
func Validate(fields []Field, rules Rules) Result {
	var errs []string

	for _, f := range fields {
		rule, ok := rules[f.Name]
		if !ok {
			continue
		}

		label := rule.Label
		if label == "" {
			label = f.Name
		}

		if rule.Required && !IsPresent(f.Value) {
			errs = append(errs, fmt.Sprintf("%s es requerido", label))
			continue
		}

		if rule.Email && f.Value != "" && !IsEmail(f.Value) {
			errs = append(errs, fmt.Sprintf("%s debe ser un email válido", label))
		}

		if rule.MinLength > 0 && f.Value != "" && !HasMinLength(f.Value, rule.MinLength) {
			errs = append(errs, fmt.Sprintf("%s debe tener al menos %d caracteres", label, rule.MinLength))
		}

		if rule.MaxLength > 0 && utf8.RuneCountInString(f.Value) > rule.MaxLength {
			errs = append(errs, fmt.Sprintf("%s debe tener como máximo %d caracteres", label, rule.MaxLength))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// LoginRules are the checks applied to the login form.
func LoginRules() Rules {
	return Rules{
		"correo": {Required: true, Email: true, Label: "Correo electrónico"},
		"clave":  {Required: true, MinLength: 1, Label: "Contraseña"},
	}
}

// RegisterRules are the checks applied before a registration call.
func RegisterRules() Rules {
	return Rules{
		"nombre": {Required: true, Label: "Nombre"},
		"correo": {Required: true, Email: true, Label: "Correo electrónico"},
		"clave":  {Required: true, MinLength: 1, Label: "Contraseña"},
	}
}
