// Package cli holds the mealcam subcommands. Each command is a kong command
// struct whose Run method receives the shared *Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/ledger"
	"github.com/vbonduro/mealcam/internal/photostore"
	"github.com/vbonduro/mealcam/internal/service"
)

type Context struct {
	Ctx        context.Context
	Service    *service.MealService
	PhotoStore photostore.PhotoStore
	ListenAddr string
	Logger     *slog.Logger
	Out        io.Writer
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (c *Context) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, format, args...)
}

// day resolves an optional --date flag against the service clock.
func (c *Context) day(value string) (time.Time, error) {
	return ledger.ParseDay(value, c.Service.Location(), c.Service.Today())
}

func (c *Context) printMeal(m domain.MealEntry) {
	c.printf("%s  %s\n", headerStyle.Render(m.Name), dimStyle.Render(m.ID))
	c.printf("   %s  %d ккал | Б %.1f г | Ж %.1f г | У %.1f г\n",
		m.Timestamp.In(c.Service.Location()).Format("2006-01-02 15:04"),
		m.Calories, m.Proteins, m.Fats, m.Carbs)
}
