// Package vault encrypts ledger exports with a password.
//
// An encrypted export is a JSON envelope:
//
//	{"type":"smallbatch-encrypted","v":1,"alg":"AES-GCM","kdf":"PBKDF2-SHA256",
//	 "iter":150000,"salt":"...","iv":"...","data":"..."}
//
// The key is derived with PBKDF2-SHA256 from the password and a random 16
// bytes salt, the plaintext is sealed with AES-256-GCM under a random 12 bytes
// nonce. salt, iv and data are standard base64.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Type tags envelopes written by this package.
	Type = "smallbatch-encrypted"
	// LegacyType tags envelopes written by older releases, still readable.
	LegacyType = "cakepop-encrypted"

	Version    = 1
	Iterations = 150000
	// MaxIterations bounds the key derivation cost an envelope can ask for.
	MaxIterations = 1000000

	keyLen  = 32
	saltLen = 16
	ivLen   = 12
)

var (
	// ErrInvalidEnvelope is returned when the input is not an encrypted export.
	ErrInvalidEnvelope = errors.New("invalid encrypted file")
	// ErrWrongPassword is returned when the envelope cannot be opened with the password.
	ErrWrongPassword = errors.New("wrong password or corrupted file")
)

// Envelope is the serialized form of an encrypted export.
type Envelope struct {
	Type string `json:"type"`
	V    int    `json:"v"`
	Alg  string `json:"alg"`
	KDF  string `json:"kdf"`
	Iter int    `json:"iter"`
	Salt string `json:"salt"`
	IV   string `json:"iv"`
	Data string `json:"data"`
}

// IsEncrypted reports whether data looks like an encrypted envelope.
func IsEncrypted(data []byte) bool {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return env.Type == Type || env.Type == LegacyType
}

func newGCM(password string, salt []byte, iter int) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, iter, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with password and returns the indented JSON envelope.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	iv := make([]byte, ivLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("cannot generate salt: %w", err)
	}
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("cannot generate iv: %w", err)
	}
	gcm, err := newGCM(password, salt, Iterations)
	if err != nil {
		return nil, fmt.Errorf("cannot create cipher: %w", err)
	}
	env := Envelope{
		Type: Type,
		V:    Version,
		Alg:  "AES-GCM",
		KDF:  "PBKDF2-SHA256",
		Iter: Iterations,
		Salt: base64.StdEncoding.EncodeToString(salt),
		IV:   base64.StdEncoding.EncodeToString(iv),
		Data: base64.StdEncoding.EncodeToString(gcm.Seal(nil, iv, plaintext, nil)),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Decrypt opens an envelope produced by Encrypt, or by an older release.
func Decrypt(data []byte, password string) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.Type != Type && env.Type != LegacyType {
		return nil, ErrInvalidEnvelope
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidEnvelope, err)
	}
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil || len(iv) != ivLen {
		return nil, fmt.Errorf("%w: bad iv", ErrInvalidEnvelope)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidEnvelope, err)
	}
	iter := env.Iter
	if iter <= 0 {
		iter = Iterations
	}
	if iter > MaxIterations {
		return nil, fmt.Errorf("%w: %d iterations, at most %d", ErrInvalidEnvelope, iter, MaxIterations)
	}
	gcm, err := newGCM(password, salt, iter)
	if err != nil {
		return nil, fmt.Errorf("cannot create cipher: %w", err)
	}
	plain, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plain, nil
}
