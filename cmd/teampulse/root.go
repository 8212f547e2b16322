package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Afrawles/teampulse/internal/config"
	"github.com/Afrawles/teampulse/internal/report"
	"github.com/Afrawles/teampulse/internal/store"
	"github.com/Afrawles/teampulse/internal/teampulse"
	"github.com/Afrawles/teampulse/internal/tui"
)

var (
	reportName string
	startDate  string
	endDate    string
	subjects   string
	output     string
	formats    string

	chatURL     string
	gerritURL   string
	trackerURL  string
	calendarURL string

	historyLimit int
)

var rootCmd = &cobra.Command{
	Use:   "teampulse",
	Short: "Generate team activity reports from chat, Gerrit, tracker and calendar backends",
	Long:  `Teampulse aggregates per-person activity metrics from several internal backends into sortable report tables.`,
	Run:   runReport,
}

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	Long:  `Opens a terminal dashboard with all reports: switch between them, sort by column, re-run fetches.`,
	Run:   runDashboard,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously generated report runs",
	Run:   runHistory,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(historyCmd)

	for _, cmd := range []*cobra.Command{rootCmd, dashCmd} {
		cmd.Flags().StringVarP(&reportName, "report", "r", "activity", "Report to run (activity, chat, reviews)")
		cmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (YYYY-MM-DD)")
		cmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (YYYY-MM-DD)")
		cmd.Flags().StringVarP(&subjects, "subjects", "u", "", "Comma-separated usernames to report on")

		cmd.Flags().StringVar(&chatURL, "chat-url", "", "Chat metrics endpoint")
		cmd.Flags().StringVar(&gerritURL, "gerrit-url", "", "Gerrit metrics endpoint")
		cmd.Flags().StringVar(&trackerURL, "tracker-url", "", "Issue tracker metrics endpoint")
		cmd.Flags().StringVar(&calendarURL, "calendar-url", "", "Calendar metrics endpoint")
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "reports", "Output directory")
	rootCmd.Flags().StringVar(&formats, "format", "", "Comma-separated export formats (json, csv, xlsx)")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	if chatURL != "" {
		cfg.Providers.ChatURL = chatURL
	}
	if gerritURL != "" {
		cfg.Providers.GerritURL = gerritURL
	}
	if trackerURL != "" {
		cfg.Providers.TrackerURL = trackerURL
	}
	if calendarURL != "" {
		cfg.Providers.CalendarURL = calendarURL
	}
	if subjects != "" {
		cfg.Subjects = parseCommaList(subjects)
	}
	if output != "" {
		cfg.Output.Directory = output
	}
	if formats != "" {
		cfg.Output.Format = parseCommaList(formats)
	}

	return cfg, cfg.Validate()
}

func buildQuery(cfg *config.Config) (report.Query, error) {
	q := report.Query{Subjects: cfg.Subjects}
	var err error

	if startDate == "" {
		q.Start = time.Now().AddDate(0, 0, -7)
	} else {
		q.Start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return q, fmt.Errorf("invalid start date: %w", err)
		}
	}

	if endDate == "" {
		q.End = time.Now()
	} else {
		q.End, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return q, fmt.Errorf("invalid end date: %w", err)
		}
	}

	return q, nil
}

func runReport(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	q, err := buildQuery(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Generating %s report for %d people (%s to %s)\n",
		reportName, len(q.Subjects), q.Start.Format("2006-01-02"), q.End.Format("2006-01-02"))

	app := teampulse.New(cfg)
	app.OpenHistory()
	defer app.Close()

	bar := newSpinner("Fetching metrics")
	view, snap, err := app.RunReport(context.Background(), reportName, q)
	finishBar(bar)

	if err != nil {
		fmt.Printf("\nError generating report: %v\n", err)
		os.Exit(1)
	}

	if view.Phase() == report.PhaseFailed {
		fmt.Printf("\nReport failed: %v\n", view.Err())
		os.Exit(1)
	}

	fmt.Println()
	printTable(view)
	fmt.Println(view.StatusLine())

	if len(snap.Rows) == 0 {
		return
	}

	if err := app.Export(view.Def, snap); err != nil {
		fmt.Printf("Failed to export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nReports saved to %s/\n", cfg.Output.Directory)
}

func runDashboard(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	q, err := buildQuery(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := teampulse.New(cfg)

	if err := tui.Run(tui.RunOpts{
		Client: app.Client,
		Names:  cfg.NameContext(),
		Query:  q,
		Logger: app.Logger,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		os.Exit(1)
	}
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No report runs recorded yet")
		return
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %-10s  %s -> %s  %d rows", run.CreatedAt.Format("2006-01-02 15:04"), run.Report, run.StartDate, run.EndDate, run.RowCount)
		if len(run.FailedProviders) > 0 {
			line += fmt.Sprintf("  (unavailable: %s)", strings.Join(run.FailedProviders, ", "))
		}
		fmt.Println(line)
	}
}

// printTable renders the view's sorted rows with plain column alignment.
func printTable(view *report.View) {
	rows := view.Rows()
	cols := view.Def.Columns

	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = len(col.Header)
	}
	for _, row := range rows {
		for i, col := range cols {
			if w := len(report.FormatValue(row[col.Key])); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i, col := range cols {
		fmt.Printf("%-*s  ", widths[i], col.Header)
	}
	fmt.Println()
	for i := range cols {
		fmt.Printf("%s  ", strings.Repeat("-", widths[i]))
	}
	fmt.Println()

	for _, row := range rows {
		for i, col := range cols {
			fmt.Printf("%-*s  ", widths[i], report.FormatValue(row[col.Key]))
		}
		fmt.Println()
	}
}

func newSpinner(description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
