package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/vbonduro/mealcam/internal/report"
)

type ReportCmd struct {
	Date   string `help:"Day to report (YYYY-MM-DD). Defaults to today."`
	Output string `short:"o" help:"Output file, or - for stdout. Defaults to the report's own file name."`
}

func (cmd *ReportCmd) Run(ctx *Context) error {
	day, err := ctx.day(cmd.Date)
	if err != nil {
		return err
	}
	filename, body := ctx.Service.Report(ctx.Ctx, day)

	if cmd.Output == "-" {
		_, err := io.WriteString(ctx.Out, body+"\n")
		return err
	}

	path := cmd.Output
	if path == "" {
		path = filename
	}
	if err := os.WriteFile(path, []byte(report.BOM+body), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	ctx.printf("Report saved to %s\n", path)
	return nil
}
