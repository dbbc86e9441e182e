package storage

import "context"

// Credentials is the stored credential pair.
// IMPORTANT: this struct crosses two layers with different token states:
// in memory (business logic) the tokens are plaintext; in the bolt store
// they are ciphertext (base64-encoded AES-GCM output). Encryption and
// decryption happen in the auth.Service layer, never here.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthStorage is the lowest persistence layer for identity state. It works
// with raw values as given and performs no crypto itself. All operations are
// idempotent; Save overwrites any prior value atomically.
type AuthStorage interface {
	// SaveCredentials stores the credential pair as-is
	SaveCredentials(ctx context.Context, creds *Credentials) error

	// GetCredentials retrieves the stored credential pair as-is
	// Returns ErrCredentialsNotFound if none exists
	GetCredentials(ctx context.Context) (*Credentials, error)

	// DeleteCredentials removes the stored credential pair (logout/reset)
	DeleteCredentials(ctx context.Context) error

	// SaveDeviceID stores the installation identity
	SaveDeviceID(ctx context.Context, deviceID string) error

	// GetDeviceID retrieves the installation identity
	// Returns ErrDeviceIDNotFound if none exists
	GetDeviceID(ctx context.Context) (string, error)
}
