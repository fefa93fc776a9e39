package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ErrQueueStopped is returned by Submit after Stop, and is the failure
// recorded on jobs still queued when Stop runs.
var ErrQueueStopped = errors.New("job queue is stopped")

type QueueConfig struct {
	Workers int
	MaxSize int
	JobTTL  time.Duration
}

// Queue runs conversions in the background for the HTTP API. Each job runs
// its own independent Convert call.
type Queue struct {
	conv  Converter
	jobs  *JobStore
	queue chan *Job
	cfg   QueueConfig
	log   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu orders Submit's send against Stop's close.
	mu      sync.Mutex
	stopped bool
}

func NewQueue(conv Converter, cfg QueueConfig, log *slog.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		conv:  conv,
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxSize),
		cfg:   cfg,
		log:   log,
	}
}

// Start launches worker goroutines.
func (q *Queue) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for range q.cfg.Workers {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-q.queue:
					if !ok {
						return
					}
					q.process(workerCtx, job)
				}
			}
		}()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				q.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels running conversions, waits for the workers, and fails any job
// still queued. It is safe to call more than once.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.queue)
	q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()

	for job := range q.queue {
		job.Finish(nil, ErrQueueStopped)
		q.log.Warn("job dropped at shutdown", "job_id", job.ID, "filename", job.Filename)
		q.removeUpload(job)
	}
}

// Submit queues a job for conversion.
func (q *Queue) Submit(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}

	q.jobs.Put(job)
	select {
	case q.queue <- job:
		return nil
	default:
		job.Finish(nil, fmt.Errorf("job queue is full (%d)", q.cfg.MaxSize))
		return fmt.Errorf("job queue is full (%d)", q.cfg.MaxSize)
	}
}

// GetJob returns a job by ID.
func (q *Queue) GetJob(id string) *Job {
	return q.jobs.Get(id)
}

// Depth returns current queue depth.
func (q *Queue) Depth() int {
	return len(q.queue)
}

func (q *Queue) process(ctx context.Context, job *Job) {
	log := q.log.With("job_id", job.ID, "filename", job.Filename)
	job.SetStatus(JobConverting)

	res, err := q.conv.Convert(ctx, job.sourcePath, job.PreferRemote)
	job.Finish(res, err)
	if err != nil {
		log.Error("job failed", "error", err)
	} else {
		log.Info("job complete", "conversion_id", res.ID, "strategy", res.Strategy)
	}

	q.removeUpload(job)
}

func (q *Queue) removeUpload(job *Job) {
	if !job.removeSource {
		return
	}
	if err := os.Remove(job.sourcePath); err != nil && !os.IsNotExist(err) {
		q.log.Warn("remove upload failed", "job_id", job.ID, "error", err)
	}
}
