package cron

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/marketdesk/support-chat/internal/jobs"
)

// jobTimeout bounds a single batch-job run.
const jobTimeout = 5 * time.Minute

// StartCronJobs schedules the daily batch jobs and starts the scheduler in
// the background.
func StartCronJobs(secban *jobs.SecbanJob, saas *jobs.SaasJob, log *zap.SugaredLogger) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	_, _ = s.Every(1).Day().At("09:00").Do(func() { runSecban(secban, log) })
	_, _ = s.Every(1).Day().At("06:30").Do(func() { runSaas(saas, log) })

	s.StartAsync()
	return s
}

func runSecban(j *jobs.SecbanJob, log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ok := j.Run(ctx)
	log.Infow("secban job finished", "notified", ok)
}

func runSaas(j *jobs.SaasJob, log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	sent := j.Run(ctx)
	log.Infow("saas job finished", "sent", sent)
}
