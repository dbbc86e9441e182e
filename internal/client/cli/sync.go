package cli

import (
	"context"
	"flag"
)

func (c *Cli) RunSync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	date := fs.String("date", today(), "Day in YYYY-MM-DD form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := c.syncer.Sync(ctx, *date)
	if err != nil {
		return err
	}

	c.io.Println("Sync completed:")
	c.io.Printf("  pushed:   %d\n", result.Pushed)
	c.io.Printf("  skipped:  %d\n", result.Skipped)
	c.io.Printf("  pulled:   %d\n", result.Pulled)
	c.io.Printf("  upserted: %d\n", result.Upserted)
	c.io.Printf("  deleted:  %d\n", result.Deleted)
	return nil
}
