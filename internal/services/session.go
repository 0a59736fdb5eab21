package services

import (
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/models"
)

// Session is the state of an unlocked vault: the stored profile and the
// encryptor verified against it. It is passed explicitly to every operation
// that needs the key.
//
// The profile and encryptor are replaced together, and only after the
// matching records were committed.
type Session struct {
	profile models.UserProfile
	enc     *cryptox.Encryptor
	broken  []string
}

func NewSession(profile models.UserProfile, enc *cryptox.Encryptor) *Session {
	return &Session{profile: profile, enc: enc}
}

// Profile returns a copy of the profile the session was verified against.
func (s *Session) Profile() models.UserProfile {
	return s.profile
}

func (s *Session) Encryptor() *cryptox.Encryptor {
	return s.enc
}

func (s *Session) UserName() string {
	return s.profile.Name
}

// IntegrityIssues lists nicknames of entries the session key cannot open,
// as found by the last integrity check.
func (s *Session) IntegrityIssues() []string {
	return s.broken
}

func (s *Session) swap(profile models.UserProfile, enc *cryptox.Encryptor) {
	s.profile = profile
	s.enc = enc
}

func (s *Session) setProfile(profile models.UserProfile) {
	s.profile = profile
}

func (s *Session) setIntegrityIssues(nicknames []string) {
	s.broken = nicknames
}
