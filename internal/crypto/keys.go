package crypto

import (
	"crypto/rand"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for storage-key derivation.
const (
	Argon2Time    = 1
	Argon2Memory  = 64 * 1024 // KB
	Argon2Threads = 4
	Argon2KeyLen  = 32
	// SaltSize is the salt length in bytes.
	SaltSize = 32
	// seedSize is the random seed length in bytes.
	seedSize = 32
)

// LoadOrCreateStorageKey returns the 32-byte key used to encrypt credentials
// at rest. The key is derived with Argon2id from a random seed+salt pair
// persisted at path with 0600 permissions; the seed is created on first use,
// so the key is stable across restarts of the same installation.
func LoadOrCreateStorageKey(path string) ([]byte, error) {
	material, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		material, err = createKeyMaterial(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load key material: %w", err)
	}

	if len(material) != seedSize+SaltSize {
		return nil, fmt.Errorf("key material must be %d bytes, got %d", seedSize+SaltSize, len(material))
	}

	seed := material[:seedSize]
	salt := material[seedSize:]

	key := argon2.IDKey(seed, salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)
	return key, nil
}

// createKeyMaterial generates and persists a fresh seed+salt pair.
func createKeyMaterial(path string) ([]byte, error) {
	material := make([]byte, seedSize+SaltSize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate seed: %w", err)
	}

	if err := os.WriteFile(path, material, 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist key material: %w", err)
	}

	return material, nil
}
