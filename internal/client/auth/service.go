package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/crypto"
)

// Service is the credential store: it owns the device identity and the
// credential pair, encrypting tokens before they reach the underlying
// storage and decrypting them on the way out. All mutating operations on
// one Service instance are serialized by its mutex, so the lazy device
// identity races at most within a single process and resolves to one write.
type Service struct {
	storage storage.AuthStorage
	key     []byte // 32-byte at-rest encryption key
	mu      sync.Mutex
}

// NewService creates a credential store over the given storage.
// key must be exactly 32 bytes (see crypto.LoadOrCreateStorageKey).
func NewService(authStorage storage.AuthStorage, key []byte) *Service {
	return &Service{
		storage: authStorage,
		key:     key,
	}
}

// DeviceID returns the stable installation identity, generating and
// persisting it on first access. The identity is never regenerated once
// stored.
func (s *Service) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deviceID, err := s.storage.GetDeviceID(ctx)
	if err == nil {
		return deviceID, nil
	}
	if !errors.Is(err, storage.ErrDeviceIDNotFound) {
		return "", fmt.Errorf("failed to get device id: %w", err)
	}

	deviceID = uuid.New().String()
	if err := s.storage.SaveDeviceID(ctx, deviceID); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}

	return deviceID, nil
}

// SaveCredentials encrypts and persists a credential pair, replacing any
// prior pair wholesale.
func (s *Service) SaveCredentials(ctx context.Context, creds *storage.Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	encryptedAccess, err := s.encrypt(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	encryptedRefresh, err := s.encrypt(creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	stored := storage.Credentials{
		AccessToken:  encryptedAccess,
		RefreshToken: encryptedRefresh,
	}

	return s.storage.SaveCredentials(ctx, &stored)
}

// Credentials retrieves and decrypts the stored credential pair.
// Returns storage.ErrCredentialsNotFound if none is stored.
func (s *Service) Credentials(ctx context.Context) (*storage.Credentials, error) {
	stored, err := s.storage.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.decrypt(stored.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	refreshToken, err := s.decrypt(stored.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &storage.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ClearCredentials removes the stored credential pair (logout/reset). The
// device identity is kept; the installation stays the same.
func (s *Service) ClearCredentials(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.DeleteCredentials(ctx)
}

// ValidAccessToken returns the stored access token if one exists and its
// expiry claim is still in the future; ok is false otherwise.
func (s *Service) ValidAccessToken(ctx context.Context) (token string, ok bool) {
	creds, err := s.Credentials(ctx)
	if err != nil {
		return "", false
	}
	if !IsTokenValid(creds.AccessToken) {
		return "", false
	}
	return creds.AccessToken, true
}

func (s *Service) encrypt(value string) (string, error) {
	sealed, err := crypto.Encrypt([]byte(value), s.key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Service) decrypt(value string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored token: %w", err)
	}
	plain, err := crypto.Decrypt(sealed, s.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
