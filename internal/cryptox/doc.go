// Package cryptox implements the vault's key handling: password-based key
// derivation (argon2id or PBKDF2-SHA256), an AEAD envelope used for every
// secret value (AES-GCM or ChaCha20-Poly1305) and the master-code verifier.
//
// Typical use:
//
//	params := cryptox.DefaultKDFParams()
//	enc, err := cryptox.Open(masterCode, params, cryptox.CipherAESGCM)
//	if err != nil {
//	    return err
//	}
//	envelope, err := enc.Encrypt([]byte("hunter2"))
//
// The master code itself is never stored. Its correctness is proven by
// opening the verifier produced by MakeVerifier.
package cryptox
