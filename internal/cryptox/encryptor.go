package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher names the AEAD used to seal new envelopes.
type Cipher string

const (
	CipherAESGCM           Cipher = "aes-gcm"
	CipherChaCha20Poly1305 Cipher = "chacha20-poly1305"
)

const envelopeVersion byte = 1

var cipherIDs = map[Cipher]byte{
	CipherAESGCM:           1,
	CipherChaCha20Poly1305: 2,
}

// ParseCipher validates a cipher name coming from configuration or a backup.
func ParseCipher(s string) (Cipher, error) {
	c := Cipher(s)
	if _, ok := cipherIDs[c]; !ok {
		return "", fmt.Errorf("unknown cipher %q", s)
	}
	return c, nil
}

// Encryptor seals and opens envelopes with a single derived key.
//
// New envelopes are sealed with the configured cipher. Opening accepts any
// supported cipher, since the cipher id travels inside the envelope.
type Encryptor struct {
	cipher      Cipher
	aeads       map[byte]cipher.AEAD
	fingerprint string
}

// NewEncryptor builds an Encryptor for key. The key is not retained; callers
// may wipe it once this returns.
func NewEncryptor(key []byte, c Cipher) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d, want %d", len(key), KeySize)
	}
	if _, ok := cipherIDs[c]; !ok {
		return nil, fmt.Errorf("unknown cipher %q", c)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	chacha, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("passvault key fingerprint"))

	return &Encryptor{
		cipher: c,
		aeads: map[byte]cipher.AEAD{
			cipherIDs[CipherAESGCM]:           gcm,
			cipherIDs[CipherChaCha20Poly1305]: chacha,
		},
		fingerprint: hex.EncodeToString(mac.Sum(nil)[:4]),
	}, nil
}

// Open derives a key from masterCode and p and returns an Encryptor for it.
// The derived key is wiped before returning.
func Open(masterCode []byte, p KDFParams, c Cipher) (*Encryptor, error) {
	key, err := DeriveKey(masterCode, p)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	return NewEncryptor(key, c)
}

// Cipher returns the cipher used for new envelopes.
func (e *Encryptor) Cipher() Cipher {
	return e.cipher
}

// Fingerprint is a short non-secret identifier of the key, for logs only.
func (e *Encryptor) Fingerprint() string {
	return e.fingerprint
}

// Encrypt seals plaintext into a base64 envelope:
//
//	version(1) | cipher id(1) | nonce | ciphertext+tag
//
// A fresh random nonce is used for each call, so equal plaintexts produce
// different envelopes.
func (e *Encryptor) Encrypt(plaintext []byte) (string, error) {
	id := cipherIDs[e.cipher]
	aead := e.aeads[id]

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	header := []byte{envelopeVersion, id}
	out := make([]byte, 0, len(header)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, header)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens an envelope produced by Encrypt. Every failure, including a
// wrong key, wraps common.ErrDecryption.
func (e *Encryptor) Decrypt(envelope string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed envelope: %v", common.ErrDecryption, err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: envelope too short", common.ErrDecryption)
	}
	if raw[0] != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", common.ErrDecryption, raw[0])
	}

	aead, ok := e.aeads[raw[1]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown cipher id %d", common.ErrDecryption, raw[1])
	}

	header, body := raw[:2], raw[2:]
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: envelope too short", common.ErrDecryption)
	}
	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return plaintext, nil
}
