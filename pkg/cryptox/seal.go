// Package cryptox seals locally persisted session state at rest. The
// persisted identity blob is encrypted under a key derived from a
// machine-local secret, so the state file alone does not leak the token.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for key derivation. The secret has full entropy when
// generated by us, so the cost mainly matters for user-supplied secrets.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	keyLen     = 32 // AES-256
)

// kdfSalt is a fixed context string, not a per-value salt: the derived key
// is a long-lived KEK for one secret, not a password hash.
var kdfSalt = []byte("vres-client-state-v1")

const nonceSize = 12

var (
	secretOnce sync.Once
	sealKey    []byte
	secretErr  error
	secretPath string
)

// SetSecretPath configures where the machine secret lives. Must be called
// before the first Seal/Open. If the file does not exist it is created with
// a fresh random secret.
func SetSecretPath(path string) {
	secretPath = path
}

// loadSecret resolves the machine secret:
//  1. file at the configured secret path (created on first use)
//  2. VRES_STATE_KEY environment variable
//  3. an ephemeral random secret (sessions will not survive restart)
func loadSecret() ([]byte, error) {
	if secretPath != "" {
		data, err := os.ReadFile(secretPath)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read state secret: %w", err)
		}

		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate state secret: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(secretPath), 0o700); err != nil {
			return nil, fmt.Errorf("create state secret dir: %w", err)
		}
		if err := os.WriteFile(secretPath, secret, 0o600); err != nil {
			return nil, fmt.Errorf("write state secret: %w", err)
		}
		return secret, nil
	}

	if env := os.Getenv("VRES_STATE_KEY"); env != "" {
		return []byte(env), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate ephemeral state secret: %w", err)
	}
	return secret, nil
}

func getSealKey() ([]byte, error) {
	secretOnce.Do(func() {
		var secret []byte
		secret, secretErr = loadSecret()
		if secretErr != nil {
			return
		}
		sealKey = argon2.IDKey(secret, kdfSalt, kdfTime, kdfMemory, kdfThreads, keyLen)
	})
	if secretErr != nil {
		return nil, secretErr
	}
	return sealKey, nil
}

// Seal encrypts plain with AES-256-GCM under the derived machine key.
// Output format: [12-byte nonce][ciphertext+tag].
func Seal(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plain, nil), nil
}

// Open decrypts data produced by Seal. Tampered or truncated input returns
// an error; callers treat that the same as absent state.
func Open(sealed []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("sealed data too short")
	}

	plain, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed data: %w", err)
	}
	return plain, nil
}

func newGCM() (cipher.AEAD, error) {
	key, err := getSealKey()
	if err != nil {
		return nil, fmt.Errorf("load seal key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	return cipher.NewGCM(block)
}
