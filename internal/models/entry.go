package models

import (
	"sort"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	appValidation "github.com/dmitrijs2005/passvault/internal/validation"
)

const (
	MaxNicknameLength = 50
	MaxTags           = 10
	MaxTagLength      = 20
)

// PasswordEntry is one stored credential. Value is an envelope sealed under
// the active vault key; every other field is stored in clear.
type PasswordEntry struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	Username    string    `json:"username,omitempty"`
	URL         string    `json:"url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NicknameKey is the form used for uniqueness checks.
func NicknameKey(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// Matches reports whether query occurs, case-insensitively, in any of the
// searchable clear-text fields.
func (e *PasswordEntry) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := append([]string{e.Nickname, e.Description, e.Username, e.URL, e.Category}, e.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// SortEntries orders favorites first, then by nickname.
func SortEntries(entries []PasswordEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Favorite != entries[j].Favorite {
			return entries[i].Favorite
		}
		return NicknameKey(entries[i].Nickname) < NicknameKey(entries[j].Nickname)
	})
}

// EntryInput carries user-supplied fields for create and update. On update
// an empty Password keeps the stored secret.
type EntryInput struct {
	Nickname    string
	Password    string
	Description string
	Username    string
	URL         string
	Category    string
	Tags        []string
	Favorite    bool
}

// Normalize trims surrounding whitespace from text fields and drops empty
// tags.
func (in *EntryInput) Normalize() {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Description = strings.TrimSpace(in.Description)
	in.Username = strings.TrimSpace(in.Username)
	in.URL = strings.TrimSpace(in.URL)
	in.Category = strings.TrimSpace(in.Category)

	tags := in.Tags[:0:0]
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
}

// Validate checks field rules. passwordRequired is false for updates that
// keep the current secret.
func (in *EntryInput) Validate(passwordRequired bool) error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Nickname,
			validation.Required.Error("nickname is required"),
			validation.RuneLength(2, MaxNicknameLength).Error("nickname must be between 2 and 50 characters")),
		validation.Field(&in.Password,
			validation.When(passwordRequired, validation.Required.Error("password is required")),
			validation.RuneLength(0, 1024)),
		validation.Field(&in.Description,
			validation.Required.Error("description is required"),
			validation.RuneLength(3, 200).Error("description must be between 3 and 200 characters")),
		validation.Field(&in.Username, appValidation.UsernameRules(in.Username)...),
		validation.Field(&in.URL, appValidation.AbsoluteURL),
		validation.Field(&in.Category, validation.RuneLength(0, 30)),
		validation.Field(&in.Tags,
			validation.Length(0, MaxTags).Error("at most 10 tags are allowed"),
			validation.Each(validation.RuneLength(1, MaxTagLength))),
	)
	return appValidation.WrapValidationError(err)
}

// ParseTags splits a comma separated list, trimming blanks.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Validate checks the shape of a stored entry, e.g. one read from a backup.
// It implements validation.Validatable, so slices of entries are checked
// element by element.
func (e PasswordEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Nickname, validation.Required, validation.RuneLength(1, MaxNicknameLength)),
		validation.Field(&e.Value, validation.Required),
		validation.Field(&e.CreatedAt, validation.Required),
	)
}
