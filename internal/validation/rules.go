// Package validation provides the custom validation rules used for vault
// input, on top of github.com/jellydator/validation.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	"github.com/dmitrijs2005/passvault/internal/common"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError wraps validation errors as common.ErrValidation.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
}

// Check runs rules against a single value and wraps the failure.
func Check(value any, rules ...validation.Rule) error {
	return WrapValidationError(validation.Validate(value, rules...))
}

// Email validates email format using regex.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NotOnlyDigits rejects strings made of digits alone.
var NotOnlyDigits = validation.NewStringRuleWithError(
	func(s string) bool {
		for _, r := range s {
			if !unicode.IsDigit(r) {
				return true
			}
		}
		return false
	},
	validation.NewError("validation_not_only_digits", "must not consist of numbers only"),
)

// AbsoluteURL requires an http or https URL with a host.
var AbsoluteURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_url", "must be a valid URL including http:// or https://"),
)

// UsernameRules returns the rules for a credential user name. Email format is
// enforced only when s contains '@', so plain user names stay valid.
func UsernameRules(s string) []validation.Rule {
	rules := []validation.Rule{validation.RuneLength(0, 100)}
	if strings.Contains(s, "@") {
		rules = append(rules, Email)
	}
	return rules
}
