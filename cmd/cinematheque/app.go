package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/controllers"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/services/backend"
	"github.com/amaumene/cinematheque/internal/services/tmdb"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/amaumene/cinematheque/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds every component wired for one command invocation
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *models.Database
	notices  *notify.Center
	notifier notify.Notifier
	metrics  *telemetry.Metrics
	backend  *backend.Client
	provider *tmdb.Client
	guard    *controllers.SessionGuard
	store    *controllers.MediaStore
	importer *controllers.Importer

	stopTracing func(context.Context) error
}

// consoleNotifier publishes to the notification center and echoes each message
type consoleNotifier struct {
	center *notify.Center
	out    io.Writer
}

func (n consoleNotifier) Notify(level notify.Level, message string) {
	n.center.Notify(level, message)
	fmt.Fprintf(n.out, "%s %s\n", levelMark(level), message)
}

func levelMark(level notify.Level) string {
	switch level {
	case notify.LevelSuccess:
		return "[ok]"
	case notify.LevelWarning:
		return "[warn]"
	case notify.LevelError:
		return "[error]"
	default:
		return "[info]"
	}
}

// newApp loads configuration and wires the components. With echo set, notifications
// are printed to out as they happen.
func newApp(ctx context.Context, out io.Writer, echo bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Debug("Configuration loaded")

	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		notices:     notify.NewCenter(cfg.NotificationTTL, logger),
		metrics:     telemetry.NewMetrics(),
		stopTracing: telemetry.SetupTracing(cfg.TraceSampleRatio, logger),
	}
	a.notifier = a.notices
	if echo {
		a.notifier = consoleNotifier{center: a.notices, out: out}
	}

	a.backend, err = backend.NewClient(cfg, logger, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend client: %w", err)
	}

	a.provider, err = tmdb.NewClient(cfg, logger, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metadata client: %w", err)
	}

	a.guard = controllers.NewSessionGuard(a.backend, db, a.notifier, logger)
	a.backend.UseTokenSource(a.guard)

	a.store = controllers.NewMediaStore(a.backend, a.guard, db, a.notifier, logger, a.metrics, cfg.RefreshDelay)
	if err := a.store.LoadCached(); err != nil {
		logger.WithError(err).Warn("Failed to load cached collection")
	}

	a.importer = controllers.NewImporter(a.provider, a.notifier, logger, a.metrics,
		controllers.ImportOptionsFromConfig(cfg))

	if a.guard.Restore(ctx) {
		logger.WithField("username", a.guard.Session().Username).Debug("Session restored")
	}

	return a, nil
}

// Close flushes spans
func (a *app) Close() {
	if err := a.stopTracing(context.Background()); err != nil {
		a.logger.WithError(err).Warn("Failed to stop tracing")
	}
}

// requireSession fails when nobody is logged in
func (a *app) requireSession() error {
	if !a.guard.Active() {
		return fmt.Errorf("%w: run `cinematheque login` first", models.ErrNoSession)
	}
	return nil
}

// findRecord refreshes the unfiltered collection and looks id up in it
func (a *app) findRecord(ctx context.Context, id string) (models.MediaRecord, error) {
	a.store.SetFilter(models.DefaultFilter())
	if _, err := a.store.List(ctx, false); err != nil {
		return models.MediaRecord{}, err
	}
	record, ok := a.store.Find(models.RecordID(id))
	if !ok {
		return models.MediaRecord{}, fmt.Errorf("%w: no media with id %s", models.ErrNotFound, id)
	}
	return record, nil
}

// withApp builds the app for cmd, runs fn and releases it
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
