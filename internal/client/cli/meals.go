package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitalog/vitalog/pkg/api"
)

func (c *Cli) RunAddMeal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-meal", flag.ContinueOnError)
	name := fs.String("name", "", "Meal name")
	calories := fs.Int("calories", 0, "Calories")
	date := fs.String("date", today(), "Day in YYYY-MM-DD form")
	protein := fs.Float64("protein", 0, "Protein in grams")
	carbs := fs.Float64("carbs", 0, "Carbohydrates in grams")
	fat := fs.Float64("fat", 0, "Fat in grams")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("missing -name")
	}
	if *calories <= 0 {
		return fmt.Errorf("-calories must be positive")
	}

	meal := &api.Meal{
		Name:     *name,
		Date:     *date,
		Calories: *calories,
		Protein:  *protein,
		Carbs:    *carbs,
		Fat:      *fat,
	}
	if err := c.data.AddMeal(ctx, meal); err != nil {
		return err
	}

	c.io.Printf("Logged %q (%d kcal) on %s\n", meal.Name, meal.Calories, meal.Date)
	c.io.Printf("ID: %s\n", meal.ID)
	return nil
}

func (c *Cli) RunMeals(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("meals", flag.ContinueOnError)
	date := fs.String("date", today(), "Day in YYYY-MM-DD form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	meals, err := c.data.Meals(ctx, *date)
	if err != nil {
		return err
	}

	if len(meals) == 0 {
		c.io.Printf("No meals logged on %s.\n", *date)
		return nil
	}

	c.io.Printf("Meals on %s:\n", *date)
	var total int
	for i, meal := range meals {
		total += meal.Calories
		c.io.Printf("%d. %s  %d kcal  (P %.1fg / C %.1fg / F %.1fg)\n",
			i+1, meal.Name, meal.Calories, meal.Protein, meal.Carbs, meal.Fat)
		c.io.Printf("   ID: %s\n", meal.ID)
		if meal.PhotoURL != "" {
			c.io.Printf("   Photo: %s\n", meal.PhotoURL)
		}
	}
	c.io.Printf("Total: %d kcal\n", total)
	return nil
}

func (c *Cli) RunDeleteMeal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing meal id. Usage: vitalog delete-meal <id>")
	}

	if err := c.data.DeleteMeal(ctx, args[0]); err != nil {
		return err
	}
	return c.awaitUndo(ctx)
}

func (c *Cli) RunPhoto(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: vitalog photo <meal-id> <file>")
	}

	content, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}

	url, err := c.data.UploadMealPhoto(ctx, args[0], args[1], content)
	if err != nil {
		return err
	}

	c.io.Printf("Photo attached: %s\n", url)
	return nil
}
