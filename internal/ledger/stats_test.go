package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/mealcam/internal/domain"
)

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil, at(15, 0, 0), msk)

	assert.Equal(t, domain.DailyStats{Date: "2026-10-15"}, stats)
}

func TestAggregate_OnlyMatchingDay(t *testing.T) {
	entries := []domain.MealEntry{
		{ID: "4", Calories: 1000, Proteins: 50, Timestamp: at(16, 9, 0)},
		{ID: "3", Calories: 300, Proteins: 0.2, Fats: 1.1, Carbs: 20.5, Timestamp: at(15, 19, 0)},
		{ID: "2", Calories: 500, Proteins: 0.1, Fats: 2.2, Carbs: 40, Timestamp: at(15, 12, 0)},
		{ID: "1", Calories: 700, Timestamp: at(14, 23, 59)},
	}

	stats := Aggregate(entries, at(15, 8, 0), msk)

	assert.Equal(t, domain.DailyStats{
		Date:     "2026-10-15",
		Calories: 800,
		Proteins: 0.3,
		Fats:     3.3,
		Carbs:    60.5,
		Count:    2,
	}, stats)
}

func TestEntriesOn_SortsOldestFirst(t *testing.T) {
	entries := []domain.MealEntry{
		{ID: "late", Timestamp: at(15, 20, 0)},
		{ID: "other-day", Timestamp: at(17, 10, 0)},
		{ID: "early", Timestamp: at(15, 7, 0)},
	}

	got := EntriesOn(entries, at(15, 0, 0), msk)

	assert.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)
}

func TestSameDay(t *testing.T) {
	utcLate := time.Date(2026, time.October, 15, 22, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(utcLate, at(16, 0, 0), msk))
	assert.False(t, SameDay(utcLate, at(16, 0, 0), time.UTC))
}

func TestParseDay(t *testing.T) {
	now := time.Date(2026, time.October, 15, 22, 30, 0, 0, time.UTC)

	day, err := ParseDay("2026-10-14", msk, now)
	require.NoError(t, err)
	assert.Equal(t, at(14, 0, 0), day)

	day, err = ParseDay("", msk, now)
	require.NoError(t, err)
	assert.True(t, SameDay(day, at(16, 0, 0), msk), "22:30 UTC is already the 16th in Moscow")

	_, err = ParseDay("15.10.2026", msk, now)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
