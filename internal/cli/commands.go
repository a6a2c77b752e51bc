package cli

import "github.com/alecthomas/kong"

// CLI is the mealcam command tree.
type CLI struct {
	Version kong.VersionFlag `help:"Print the version and exit."`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Analyze AnalyzeCmd `cmd:"" help:"Recognize a meal photo and log it."`
	List    ListCmd    `cmd:"" help:"List logged meals, newest first."`
	Stats   StatsCmd   `cmd:"" help:"Show a day's nutrition totals."`
	Delete  DeleteCmd  `cmd:"" help:"Delete a meal."`
	Clear   ClearCmd   `cmd:"" help:"Delete the whole meal history."`
	Report  ReportCmd  `cmd:"" help:"Export a day's text report."`
	Key     KeyCmd     `cmd:"" help:"Manage the recognition API key."`
	Doctor  DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
}
