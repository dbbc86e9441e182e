package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalog/vitalog/internal/client/auth"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/models"
)

func (c *Cli) RunStatus(ctx context.Context) error {
	deviceID, err := c.auth.DeviceID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device identity: %w", err)
	}

	c.io.Println("=== Vitalog Status ===")
	c.io.Printf("Device:  %s\n", deviceID)
	c.io.Printf("Token:   %s\n", c.tokenLine(ctx))

	for _, recordType := range []models.RecordType{models.RecordTypeMeal, models.RecordTypeWater} {
		unsynced, err := c.records.ListUnsynced(ctx, recordType)
		if err != nil {
			return fmt.Errorf("failed to count pending records: %w", err)
		}
		c.io.Printf("Pending %s uploads: %d\n", recordType, len(unsynced))
	}
	return nil
}

func (c *Cli) tokenLine(ctx context.Context) string {
	creds, err := c.auth.Credentials(ctx)
	if errors.Is(err, storage.ErrCredentialsNotFound) {
		return "none (will be issued on first request)"
	}
	if err != nil {
		return fmt.Sprintf("unreadable (%v)", err)
	}

	info := auth.InspectToken(creds.AccessToken)
	switch info.Status {
	case auth.TokenValid:
		if info.ExpiresAt.After(time.Now()) {
			return fmt.Sprintf("valid until %s", info.ExpiresAt.Format(time.RFC3339))
		}
		return fmt.Sprintf("expired at %s (will be refreshed)", info.ExpiresAt.Format(time.RFC3339))
	case auth.TokenMissingExpiry:
		return "present but carries no expiry"
	default:
		return "malformed"
	}
}

func (c *Cli) RunLogout(ctx context.Context) error {
	if err := c.auth.ClearCredentials(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	c.io.Println("Tokens cleared. The device identity is kept.")
	return nil
}
