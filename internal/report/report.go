// Package report renders a day of the meal ledger as a plain-text document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vbonduro/mealcam/internal/domain"
)

// BOM is prepended to downloaded reports so text editors pick UTF-8.
const BOM = "\ufeff"

var (
	heavyRule = strings.Repeat("═", 39)
	lightRule = strings.Repeat("─", 40)
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var weekdays = [...]string{
	"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота",
}

// Formatter renders reports with dates and times shown in loc.
type Formatter struct {
	loc *time.Location
}

func New(loc *time.Location) *Formatter {
	return &Formatter{loc: loc}
}

// Filename names the report file for day.
func (f *Formatter) Filename(day time.Time) string {
	return "отчет_" + day.In(f.loc).Format("2006-01-02") + ".txt"
}

// Generate renders the entries of one day (oldest-first) and their totals.
func (f *Formatter) Generate(day time.Time, meals []domain.MealEntry, stats domain.DailyStats, generatedAt time.Time) string {
	dateStr := f.longDate(day)
	if len(meals) == 0 {
		return fmt.Sprintf("Отчет за %s\n\nНет данных за этот день.", dateStr)
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", heavyRule)
	line("   ОТЧЕТ О ПИТАНИИ")
	line("   %s", dateStr)
	line("%s", heavyRule)
	line("")

	line("ПРИЕМЫ ПИЩИ:")
	line("%s", lightRule)
	line("")

	for i, meal := range meals {
		line("%d. %s", i+1, meal.Name)
		line("   Время: %s", f.clock(meal.Timestamp))
		line("   Калории: %d ккал", meal.Calories)
		line("   Белки: %s г | Жиры: %s г | Углеводы: %s г", grams(meal.Proteins), grams(meal.Fats), grams(meal.Carbs))
		line("")
	}

	line("%s", lightRule)
	line("ИТОГО ЗА ДЕНЬ:")
	line("%s", lightRule)
	line("Всего приемов пищи: %d", stats.Count)
	line("Калории: %d ккал", stats.Calories)
	line("Белки: %s г", grams(stats.Proteins))
	line("Жиры: %s г", grams(stats.Fats))
	line("Углеводы: %s г", grams(stats.Carbs))
	line("")
	line("%s", heavyRule)
	line("Сгенерировано: %s", f.longDateTime(generatedAt))
	line("%s", heavyRule)

	return b.String()
}

// longDate renders e.g. "четверг, 15 октября 2026 г.".
func (f *Formatter) longDate(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%s, %d %s %d г.", weekdays[t.Weekday()], t.Day(), monthsGenitive[t.Month()-1], t.Year())
}

// longDateTime renders e.g. "15 октября 2026 г. в 12:05".
func (f *Formatter) longDateTime(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%d %s %d г. в %s", t.Day(), monthsGenitive[t.Month()-1], t.Year(), t.Format("15:04"))
}

func (f *Formatter) clock(t time.Time) string {
	return t.In(f.loc).Format("15:04")
}

func grams(v float64) string {
	return decimal.NewFromFloat(v).String()
}
