package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/vitalog/vitalog/pkg/api"
)

func (c *Cli) RunStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	week := fs.String("week", "", "Week start day in YYYY-MM-DD form")
	month := fs.String("month", "", "Month in YYYY-MM form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		stats *api.StatsResponse
		err   error
	)
	switch {
	case *week != "" && *month != "":
		return fmt.Errorf("pass either -week or -month, not both")
	case *week != "":
		stats, err = c.data.WeeklyStats(ctx, *week)
	case *month != "":
		stats, err = c.data.MonthlyStats(ctx, *month)
	default:
		return fmt.Errorf("pass -week <start> or -month <YYYY-MM>")
	}
	if err != nil {
		return err
	}

	if len(stats.Days) == 0 {
		c.io.Println("No data for the requested period.")
		return nil
	}

	c.io.Println("Date        Meals  Calories  Water")
	for _, day := range stats.Days {
		c.io.Printf("%s  %5d  %8d  %5d ml\n", day.Date, day.Meals, day.Calories, day.Milliliters)
	}
	return nil
}
