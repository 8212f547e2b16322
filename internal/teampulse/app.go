package teampulse

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Afrawles/teampulse/internal/config"
	"github.com/Afrawles/teampulse/internal/provider"
	"github.com/Afrawles/teampulse/internal/report"
	"github.com/Afrawles/teampulse/internal/store"
)

type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Client  *provider.Client
	History *store.Store
}

func New(cfg *config.Config) *Application {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	client := provider.NewClient(cfg.Endpoints())
	for kind := range cfg.Endpoints() {
		logger.Info("provider configured", "kind", string(kind))
	}

	return &Application{
		Config: cfg,
		Logger: logger,
		Client: client,
	}
}

// OpenHistory attaches the report-history store. Failure to open history is
// reported but never blocks report runs.
func (app *Application) OpenHistory() {
	st, err := store.Open(app.Config.History)
	if err != nil {
		app.Logger.Warn("history store unavailable", "path", app.Config.History, "error", err)
		return
	}
	app.History = st
}

func (app *Application) Close() {
	if app.History != nil {
		app.History.Close()
	}
}

// RunReport executes one full fetch cycle for the named report: build the
// provider call list, aggregate with partial-failure tolerance, and drive
// the view through its lifecycle. The returned view is Ready or Failed.
func (app *Application) RunReport(ctx context.Context, name string, q report.Query) (*report.View, report.Snapshot, error) {
	def, err := report.Lookup(name)
	if err != nil {
		return nil, report.Snapshot{}, err
	}

	view := report.NewView(def, app.Logger)
	seq, ok := view.SetQuery(q)
	if !ok {
		return nil, report.Snapshot{}, fmt.Errorf("report %s: %w", name, view.Preconditions(q))
	}

	calls := provider.Calls(def, app.Client, q, app.Config.NameContext())
	out := report.Aggregate(ctx, calls)
	view.Apply(seq, out)

	app.Logger.Info("report generated",
		"report", def.Name,
		"rows", len(out.Rows),
		"failed_providers", len(out.Failed),
		"phase", view.Phase().String(),
	)

	snap := report.NewSnapshot(def, q, out)

	if app.History != nil && view.Phase() == report.PhaseReady {
		if id, err := app.History.SaveRun(snap); err != nil {
			app.Logger.Warn("failed to save run history", "error", err)
		} else {
			app.Logger.Info("run saved", "run_id", id)
		}
	}

	return view, snap, nil
}

// Export writes the snapshot in every configured output format.
func (app *Application) Export(def report.Definition, snap report.Snapshot) error {
	if err := os.MkdirAll(app.Config.Output.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, format := range app.Config.Output.Format {
		switch format {
		case "json":
			exporter := report.NewExporter(app.Config.Output.Directory)
			filename := fmt.Sprintf("%s_%s.json", snap.Report, snap.GeneratedAt.Format("20060102_150405"))
			if err := exporter.ExportJSON(snap, filename); err != nil {
				app.Logger.Error("failed to export JSON", "error", err)
			} else {
				app.Logger.Info("report exported", "format", "json", "file", filename)
			}

		case "csv":
			exporter := report.NewCSVExporter(app.Config.Output.Directory)
			if err := exporter.Export(def, snap); err != nil {
				app.Logger.Error("failed to export CSV", "error", err)
			} else {
				app.Logger.Info("report exported", "format", "csv")
			}

		case "xlsx":
			exporter := report.NewExcelExporter(app.Config.Output.Directory)
			if err := exporter.Export(def, snap); err != nil {
				app.Logger.Error("failed to export Excel", "error", err)
			} else {
				app.Logger.Info("report exported", "format", "xlsx")
			}
		}
	}

	return nil
}
