package models

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() EntryInput {
	return EntryInput{
		Nickname:    "email",
		Password:    "hunter2",
		Description: "personal mailbox",
		Username:    "me@example.com",
		URL:         "https://mail.example.com",
		Category:    "General",
		Tags:        []string{"mail", "personal"},
	}
}

func TestEntryInput_Validate(t *testing.T) {
	tests := []struct {
		name             string
		mutate           func(in *EntryInput)
		passwordRequired bool
		wantErr          bool
	}{
		{"valid", func(in *EntryInput) {}, true, false},
		{"nickname too short", func(in *EntryInput) { in.Nickname = "e" }, true, true},
		{"nickname too long", func(in *EntryInput) { in.Nickname = strings.Repeat("n", 51) }, true, true},
		{"missing password on create", func(in *EntryInput) { in.Password = "" }, true, true},
		{"missing password on update keeps secret", func(in *EntryInput) { in.Password = "" }, false, false},
		{"description too short", func(in *EntryInput) { in.Description = "ab" }, true, true},
		{"description missing", func(in *EntryInput) { in.Description = "" }, true, true},
		{"plain username", func(in *EntryInput) { in.Username = "alice" }, true, false},
		{"broken email username", func(in *EntryInput) { in.Username = "alice@" }, true, true},
		{"url without scheme", func(in *EntryInput) { in.URL = "mail.example.com" }, true, true},
		{"empty optional fields", func(in *EntryInput) { in.URL, in.Username, in.Category, in.Tags = "", "", "", nil }, true, false},
		{"category too long", func(in *EntryInput) { in.Category = strings.Repeat("c", 31) }, true, true},
		{"too many tags", func(in *EntryInput) { in.Tags = strings.Split("a,b,c,d,e,f,g,h,i,j,k", ",") }, true, true},
		{"tag too long", func(in *EntryInput) { in.Tags = []string{strings.Repeat("t", 21)} }, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate(tt.passwordRequired)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEntryInput_Normalize(t *testing.T) {
	in := EntryInput{Nickname: "  bank ", Description: " savings  ", Tags: []string{" a ", "", "  "}}
	in.Normalize()

	assert.Equal(t, "bank", in.Nickname)
	assert.Equal(t, "savings", in.Description)
	assert.Equal(t, []string{"a"}, in.Tags)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"work", "mail"}, ParseTags(" work, ,mail ,"))
	assert.Nil(t, ParseTags(""))
}

func TestNicknameKey(t *testing.T) {
	assert.Equal(t, NicknameKey("Email"), NicknameKey(" email "))
	assert.NotEqual(t, NicknameKey("email"), NicknameKey("e-mail"))
}

func TestPasswordEntry_Matches(t *testing.T) {
	e := PasswordEntry{Nickname: "Bank", Description: "Savings account", URL: "https://bank.example", Tags: []string{"Finance"}}

	assert.True(t, e.Matches("bank"))
	assert.True(t, e.Matches("SAVINGS"))
	assert.True(t, e.Matches("finance"))
	assert.True(t, e.Matches(""))
	assert.False(t, e.Matches("mail"))
}

func TestSortEntries(t *testing.T) {
	entries := []PasswordEntry{
		{Nickname: "zeta"},
		{Nickname: "Alpha"},
		{Nickname: "mid", Favorite: true},
	}
	SortEntries(entries)

	got := []string{entries[0].Nickname, entries[1].Nickname, entries[2].Nickname}
	assert.Equal(t, []string{"mid", "Alpha", "zeta"}, got)
}

func TestValidateUserName(t *testing.T) {
	require.NoError(t, ValidateUserName("Alice"))
	require.ErrorIs(t, ValidateUserName("A"), common.ErrValidation)
	require.ErrorIs(t, ValidateUserName("12345"), common.ErrValidation)
	require.ErrorIs(t, ValidateUserName("   "), common.ErrValidation)
	require.ErrorIs(t, ValidateUserName(strings.Repeat("x", 51)), common.ErrValidation)
}

func TestValidateMasterCode(t *testing.T) {
	require.NoError(t, ValidateMasterCode("newer-pass-123", 8))
	require.ErrorIs(t, ValidateMasterCode("short", 8), common.ErrValidation)
	require.ErrorIs(t, ValidateMasterCode(" padded-code ", 8), common.ErrValidation)
	require.ErrorIs(t, ValidateMasterCode(strings.Repeat("x", MaxMasterCodeLength+1), 8), common.ErrValidation)
	require.NoError(t, ValidateMasterCode("sixsix", 6))
}

func TestUserProfile_Validate(t *testing.T) {
	p := UserProfile{
		Name:               "Alice",
		KDF:                cryptox.KDFParams{Algorithm: cryptox.KDFPBKDF2, Salt: []byte("s"), Iterations: 10},
		MasterCodeVerifier: "v",
		CreatedAt:          time.Now(),
	}
	require.NoError(t, p.Validate())

	broken := p
	broken.MasterCodeVerifier = ""
	require.ErrorIs(t, broken.Validate(), common.ErrValidation)

	broken = p
	broken.KDF.Salt = nil
	require.ErrorIs(t, broken.Validate(), common.ErrValidation)
}

func testBackup() *Backup {
	now := time.Now().UTC()
	return &Backup{
		Version:    BackupVersion,
		ExportDate: now,
		UserData:   BackupUser{Name: "Alice", CreatedAt: now},
		KDF:        cryptox.KDFParams{Algorithm: cryptox.KDFPBKDF2, Salt: []byte("salt"), Iterations: 10},
		Passwords: []PasswordEntry{
			{ID: "1", Nickname: "email", Value: "env1", Description: "mail", CreatedAt: now, UpdatedAt: now},
		},
	}
}

func TestBackup_SealAndValidate(t *testing.T) {
	b := testBackup()
	require.NoError(t, b.Seal())
	require.Len(t, b.Checksum, 64)
	require.NoError(t, b.Validate())
}

func TestBackup_EmptyPasswordsSeal(t *testing.T) {
	b := testBackup()
	b.Passwords = nil
	require.NoError(t, b.Seal())
	require.NotNil(t, b.Passwords)
	require.NoError(t, b.Validate())
}

func TestBackup_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Backup)
		want   error
	}{
		{"tampered entry", func(b *Backup) { b.Passwords[0].Nickname = "evil" }, common.ErrChecksumMismatch},
		{"tampered checksum", func(b *Backup) { b.Checksum = strings.Repeat("0", 64) }, common.ErrChecksumMismatch},
		{"wrong version", func(b *Backup) { b.Version = "9" }, common.ErrBackupFormat},
		{"missing passwords", func(b *Backup) { b.Passwords = nil }, common.ErrBackupFormat},
		{"entry without value", func(b *Backup) { b.Passwords[0].Value = "" }, common.ErrBackupFormat},
		{"missing kdf salt", func(b *Backup) { b.KDF.Salt = nil }, common.ErrBackupFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBackup()
			require.NoError(t, b.Seal())
			tt.mutate(b)
			require.ErrorIs(t, b.Validate(), tt.want)
		})
	}
}

func TestSealedBackup_Validate(t *testing.T) {
	s := SealedBackup{
		Format:  SealedBackupFormat,
		Version: BackupVersion,
		KDF:     cryptox.KDFParams{Algorithm: cryptox.KDFPBKDF2, Salt: []byte("salt"), Iterations: 10},
		Payload: "abc",
	}
	require.NoError(t, s.Validate())

	s.Format = "other"
	require.ErrorIs(t, s.Validate(), common.ErrBackupFormat)
}
