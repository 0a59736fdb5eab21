package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

var verifierMarker = []byte("passvault:master-code-verifier:v1")

// MakeVerifier encrypts a fixed marker under e. Only a key that can open the
// result and recover the marker is accepted by CheckVerifier.
func MakeVerifier(e *Encryptor) (string, error) {
	return e.Encrypt(verifierMarker)
}

// CheckVerifier reports whether e opens verifier to the expected marker.
func CheckVerifier(e *Encryptor, verifier string) bool {
	pt, err := e.Decrypt(verifier)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(pt, verifierMarker) == 1
}

// Checksum returns the hex encoded SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
