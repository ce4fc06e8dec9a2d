package main

import (
	"context"
	"daily-rep/internal/dailyrep"
	"daily-rep/internal/schedule"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Run both batches in-process on their schedules",
	Long: `Run the daily assign and hourly auto-generate batches on the same timetable as the
deployed schedules, until interrupted. Useful where EventBridge is not available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		service, err := a.Service(ctx, true)
		if err != nil {
			return err
		}

		s, err := newCronScheduler(ctx, logger, service)
		if err != nil {
			return err
		}
		s.Start()
		logger.Info("Scheduler started")

		<-ctx.Done()
		logger.Info("Shutting down scheduler")
		return s.Shutdown()
	},
}

type batchRunner interface {
	AssignDaily(ctx context.Context) (*dailyrep.BatchReport, error)
	AutoGenerate(ctx context.Context) (*dailyrep.BatchReport, error)
}

// newCronScheduler registers both batches. Runs of the same batch never overlap.
func newCronScheduler(ctx context.Context, logger *logrus.Entry, runner batchRunner) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	jobs := []struct {
		name    string
		crontab string
		run     func(context.Context) (*dailyrep.BatchReport, error)
	}{
		{schedule.AssignName, schedule.AssignCron, runner.AssignDaily},
		{schedule.AutogenName, schedule.AutogenCron, runner.AutoGenerate},
	}
	for _, job := range jobs {
		_, err := s.NewJob(
			gocron.CronJob(job.crontab, false),
			gocron.NewTask(runJob, ctx, logger.WithField("job", job.name), job.run),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("failed to register %s: %w", job.name, err)
		}
	}
	return s, nil
}

func runJob(ctx context.Context, logger *logrus.Entry, run func(context.Context) (*dailyrep.BatchReport, error)) {
	report, err := run(ctx)
	if err != nil {
		logger.WithError(err).Error("Batch failed")
		return
	}
	logger.WithFields(logrus.Fields{
		"date":          report.Date,
		"totalUsers":    report.TotalUsers,
		"assignedCount": report.AssignedCount,
	}).Info("Batch complete")
}
