package cli

import (
	"context"
	"errors"
	"time"

	"github.com/vitalog/vitalog/internal/client/pending"
)

// awaitUndo keeps the process alive through the grace window so the
// deletion can either be taken back or confirmed before exit.
func (c *Cli) awaitUndo(ctx context.Context) error {
	c.io.Printf("Deleted. Press Enter within %s to undo...\n", c.grace)

	pressed := make(chan error, 1)
	go func() {
		_, err := c.io.ReadInput("")
		pressed <- err
	}()

	select {
	case err := <-pressed:
		if err != nil {
			// input is gone (piped stdin closed); wait out the window
			time.Sleep(c.grace + 100*time.Millisecond)
			c.io.Println("Deletion confirmed.")
			return nil
		}
		return c.RunUndo(ctx)
	case <-time.After(c.grace + 100*time.Millisecond):
		c.io.Println("Deletion confirmed.")
		return nil
	}
}

func (c *Cli) RunUndo(ctx context.Context) error {
	record, err := c.data.Undo(ctx)
	if errors.Is(err, pending.ErrNothingToUndo) {
		c.io.Println("Nothing to undo.")
		return nil
	}
	if err != nil {
		return err
	}

	c.io.Printf("Restored %s %s\n", record.Type, record.ID)
	return nil
}
