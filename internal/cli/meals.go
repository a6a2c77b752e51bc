package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vbonduro/mealcam/internal/photostore"
)

type AnalyzeCmd struct {
	File string `arg:"" type:"existingfile" help:"Photo of the meal (JPEG, PNG, GIF or WebP)."`
}

func (cmd *AnalyzeCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}
	mimeType, ok := photostore.DetectImageMIME(data)
	if !ok {
		return fmt.Errorf("%s is not a supported image", cmd.File)
	}

	entry, err := ctx.Service.Analyze(ctx.Ctx, data, mimeType)
	if err != nil {
		return err
	}

	ctx.printf("%s\n", okStyle.Render("✓ Meal logged"))
	ctx.printMeal(entry)
	return nil
}

type ListCmd struct {
	Date string `help:"Only meals on this day (YYYY-MM-DD), oldest first."`
	JSON bool   `name:"json" help:"Print the meals as JSON."`
}

func (cmd *ListCmd) Run(ctx *Context) error {
	meals := ctx.Service.ListMeals(ctx.Ctx)
	if cmd.Date != "" {
		day, err := ctx.day(cmd.Date)
		if err != nil {
			return err
		}
		meals = ctx.Service.MealsByDate(ctx.Ctx, day)
	}

	if cmd.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(meals)
	}

	if len(meals) == 0 {
		ctx.printf("No meals logged.\n")
		return nil
	}
	for _, m := range meals {
		ctx.printMeal(m)
	}
	return nil
}

type StatsCmd struct {
	Date string `help:"Day to summarize (YYYY-MM-DD). Defaults to today."`
}

func (cmd *StatsCmd) Run(ctx *Context) error {
	day, err := ctx.day(cmd.Date)
	if err != nil {
		return err
	}
	stats := ctx.Service.DailyStats(ctx.Ctx, day)

	ctx.printf("%s\n", headerStyle.Render("Итого за "+stats.Date))
	ctx.printf("Приемов пищи: %d\n", stats.Count)
	ctx.printf("Калории:      %d ккал\n", stats.Calories)
	ctx.printf("Белки:        %.1f г\n", stats.Proteins)
	ctx.printf("Жиры:         %.1f г\n", stats.Fats)
	ctx.printf("Углеводы:     %.1f г\n", stats.Carbs)
	return nil
}

type DeleteCmd struct {
	ID string `arg:"" help:"Meal ID to delete."`
}

func (cmd *DeleteCmd) Run(ctx *Context) error {
	removed, err := ctx.Service.DeleteMeal(ctx.Ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no meal with ID %s", cmd.ID)
	}
	ctx.printf("Deleted meal: %s\n", cmd.ID)
	return nil
}

type ClearCmd struct {
	Yes bool `help:"Confirm deleting the whole history."`
}

func (cmd *ClearCmd) Run(ctx *Context) error {
	if !cmd.Yes {
		return errors.New("refusing to clear the history without --yes")
	}
	if err := ctx.Service.ClearHistory(ctx.Ctx); err != nil {
		return err
	}
	ctx.printf("History cleared.\n")
	return nil
}
