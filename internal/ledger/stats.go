package ledger

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vbonduro/mealcam/internal/domain"
)

// DateLayout is the calendar-date form used in stats, queries and filenames.
const DateLayout = "2006-01-02"

// ParseDay parses a DateLayout date as midnight in loc. An empty value means
// the current day of now.
func ParseDay(value string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		return now.In(loc), nil
	}
	day, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD"}
	}
	return day, nil
}

// DailyStats aggregates the ledger for day's calendar date. It is recomputed
// from the stored ledger on every call.
func (l *Ledger) DailyStats(ctx context.Context, day time.Time) domain.DailyStats {
	return Aggregate(l.GetAll(ctx), day, l.loc)
}

// EntriesOn filters entries to day's calendar date in loc and sorts them
// oldest-first by timestamp.
func EntriesOn(entries []domain.MealEntry, day time.Time, loc *time.Location) []domain.MealEntry {
	out := make([]domain.MealEntry, 0)
	for _, e := range entries {
		if SameDay(e.Timestamp, day, loc) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.MealEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// Aggregate sums the entries that fall on day's calendar date in loc. A day
// without entries yields zero totals and a zero count.
func Aggregate(entries []domain.MealEntry, day time.Time, loc *time.Location) domain.DailyStats {
	var (
		calories int
		proteins = decimal.Zero
		fats     = decimal.Zero
		carbs    = decimal.Zero
		count    int
	)
	for _, e := range entries {
		if !SameDay(e.Timestamp, day, loc) {
			continue
		}
		calories += e.Calories
		proteins = proteins.Add(decimal.NewFromFloat(e.Proteins))
		fats = fats.Add(decimal.NewFromFloat(e.Fats))
		carbs = carbs.Add(decimal.NewFromFloat(e.Carbs))
		count++
	}

	return domain.DailyStats{
		Date:     day.In(loc).Format(DateLayout),
		Calories: calories,
		Proteins: proteins.Round(1).InexactFloat64(),
		Fats:     fats.Round(1).InexactFloat64(),
		Carbs:    carbs.Round(1).InexactFloat64(),
		Count:    count,
	}
}

// SameDay reports whether a and b share year, month and day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
