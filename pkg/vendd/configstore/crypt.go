package configstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyIterations = 4096
	keyLen        = 32
)

// keySalt is fixed so that independently constructed codecs derive the same
// key from the same passphrase
var keySalt = []byte("vendd.configstore.v1")

var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Codec encrypts and decrypts configuration values at rest
//
// The key is derived from an operator passphrase via PBKDF2; values are
// sealed with AES-256-GCM and stored base64 encoded.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a codec for the given passphrase
func NewCodec(passphrase string) (*Codec, error) {
	key := pbkdf2.Key([]byte(passphrase), keySalt, keyIterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// Encrypt seals the given plaintext value
func (c *Codec) Encrypt(value string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value sealed by Encrypt
func (c *Codec) Decrypt(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	if len(raw) < c.aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
