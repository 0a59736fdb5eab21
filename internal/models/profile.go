// Package models defines the persisted vault records, the backup file
// format and the validation applied to user input.
package models

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
	appValidation "github.com/dmitrijs2005/passvault/internal/validation"
)

// MaxMasterCodeLength bounds master codes of any vault.
const MaxMasterCodeLength = 128

// Settings are user preferences stored with the profile.
type Settings struct {
	ConfirmDeletions bool `json:"confirmDeletions"`
}

// DefaultSettings are applied at onboarding.
func DefaultSettings() Settings {
	return Settings{ConfirmDeletions: true}
}

// UserProfile is the single user record of a vault. The master code is
// never stored; MasterCodeVerifier is a marker encrypted under the key
// derived with KDF.
type UserProfile struct {
	Name               string            `json:"name"`
	KDF                cryptox.KDFParams `json:"kdf"`
	MasterCodeVerifier string            `json:"masterCodeVerifier"`
	CreatedAt          time.Time         `json:"createdAt"`
	LastLogin          time.Time         `json:"lastLogin"`
	Settings           Settings          `json:"settings"`
}

// Validate checks that a loaded profile is usable for authentication.
func (p *UserProfile) Validate() error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.MasterCodeVerifier, validation.Required),
		validation.Field(&p.CreatedAt, validation.Required),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	return appValidation.WrapValidationError(p.KDF.Validate())
}

// ValidateUserName applies the onboarding rules for a display name.
func ValidateUserName(name string) error {
	return appValidation.Check(name,
		validation.Required.Error("name is required"),
		appValidation.NotBlank,
		validation.RuneLength(2, 50).Error("name must be between 2 and 50 characters"),
		appValidation.NotOnlyDigits,
	)
}

// ValidateMasterCode checks a new master code against minLength and the
// global maximum. Leading and trailing whitespace is rejected, since it is
// easy to type by accident and impossible to see.
func ValidateMasterCode(code string, minLength int) error {
	return appValidation.Check(code,
		validation.Required.Error("master code is required"),
		validation.RuneLength(minLength, MaxMasterCodeLength),
		appValidation.NoWhitespace,
	)
}
