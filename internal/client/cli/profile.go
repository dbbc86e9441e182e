package cli

import (
	"context"
	"flag"
	"fmt"
)

func (c *Cli) RunProfile(ctx context.Context) error {
	profile, err := c.data.Profile(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Profile ===")
	c.io.Printf("Name:               %s\n", profile.DisplayName)
	c.io.Printf("Daily calorie goal: %d kcal\n", profile.DailyCalorieGoal)
	c.io.Printf("Daily water goal:   %d ml\n", profile.DailyWaterGoalML)
	return nil
}

func (c *Cli) RunSetProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-profile", flag.ContinueOnError)
	name := fs.String("name", "", "Display name")
	calories := fs.Int("calories", 0, "Daily calorie goal")
	water := fs.Int("water", 0, "Daily water goal in milliliters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" && *calories == 0 && *water == 0 {
		return fmt.Errorf("nothing to update: pass -name, -calories or -water")
	}

	// read-modify-write so unset flags keep their current values
	profile, err := c.data.Profile(ctx)
	if err != nil {
		return err
	}
	if *name != "" {
		profile.DisplayName = *name
	}
	if *calories > 0 {
		profile.DailyCalorieGoal = *calories
	}
	if *water > 0 {
		profile.DailyWaterGoalML = *water
	}

	if err := c.data.UpdateProfile(ctx, profile); err != nil {
		return err
	}

	c.io.Println("Profile updated.")
	return nil
}
