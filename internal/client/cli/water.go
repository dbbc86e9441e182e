package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/vitalog/vitalog/pkg/api"
)

func (c *Cli) RunAddWater(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-water", flag.ContinueOnError)
	milliliters := fs.Int("ml", 0, "Amount in milliliters")
	date := fs.String("date", today(), "Day in YYYY-MM-DD form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *milliliters <= 0 {
		return fmt.Errorf("-ml must be positive")
	}

	entry := &api.WaterLog{Date: *date, Milliliters: *milliliters}
	if err := c.data.AddWater(ctx, entry); err != nil {
		return err
	}

	c.io.Printf("Logged %d ml on %s\n", entry.Milliliters, entry.Date)
	c.io.Printf("ID: %s\n", entry.ID)
	return nil
}

func (c *Cli) RunWater(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("water", flag.ContinueOnError)
	date := fs.String("date", today(), "Day in YYYY-MM-DD form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logs, err := c.data.Water(ctx, *date)
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		c.io.Printf("No water logged on %s.\n", *date)
		return nil
	}

	c.io.Printf("Water on %s:\n", *date)
	var total int
	for i, entry := range logs {
		total += entry.Milliliters
		c.io.Printf("%d. %d ml  (ID: %s)\n", i+1, entry.Milliliters, entry.ID)
	}
	c.io.Printf("Total: %d ml\n", total)
	return nil
}

func (c *Cli) RunDeleteWater(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing entry id. Usage: vitalog delete-water <id>")
	}

	if err := c.data.DeleteWater(ctx, args[0]); err != nil {
		return err
	}
	return c.awaitUndo(ctx)
}
