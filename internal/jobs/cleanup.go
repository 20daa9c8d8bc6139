package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const cleanupTimeout = 30 * time.Second

// CleanupTask deletes expired rows and returns how many went away.
type CleanupTask struct {
	Name string
	Run  func(context.Context) (int64, error)
}

// CleanupJob runs its tasks once at start and then on every tick until
// stopped.
type CleanupJob struct {
	tasks    []CleanupTask
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewCleanupJob(interval time.Duration, tasks ...CleanupTask) *CleanupJob {
	return &CleanupJob{
		tasks:    tasks,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Int("tasks", len(j.tasks)).Msg("cleanup job started")
}

// Stop waits for a sweep in progress to finish. It is safe to call more
// than once.
func (j *CleanupJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
		<-j.stopped
		log.Info().Msg("cleanup job stopped")
	})
}

func (j *CleanupJob) run() {
	defer close(j.stopped)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	for _, task := range j.tasks {
		j.runCleanup(ctx, task.Name, task.Run)
	}
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
