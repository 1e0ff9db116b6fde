package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/cinematheque/internal/api"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/scheduler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Keep the collection cache fresh and serve status and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	a.logger.Info("Starting Cinematheque")
	if !a.guard.Active() {
		a.logger.Warn("No remembered session, background refresh starts after `cinematheque login --remember`")
	}

	go logNotifications(ctx, a.notices.Subscribe(16), a.logger)

	sched := scheduler.NewScheduler(a.cfg.RefreshSchedule, a.store, a.guard, a.logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	server := api.NewServer(a.cfg, a.store, a.guard, a.metrics, a.logger)

	a.logger.Info("Cinematheque is running")
	if err := server.Start(ctx); err != nil {
		return err
	}

	a.logger.Info("Cinematheque stopped")
	return nil
}

// logNotifications mirrors user notifications into the log until ctx is done
func logNotifications(ctx context.Context, notices <-chan notify.Notification, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notices:
			entry := logger.WithField("notification", n.Message)
			switch n.Level {
			case notify.LevelError:
				entry.Error("Notification")
			case notify.LevelWarning:
				entry.Warn("Notification")
			default:
				entry.Info("Notification")
			}
		}
	}
}
