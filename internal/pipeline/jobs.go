package pipeline

import (
	"errors"
	"sync"
	"time"
)

// JobStatus represents the state of an asynchronous conversion job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobConverting JobStatus = "converting"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job tracks one conversion submitted through the queue.
type Job struct {
	mu sync.Mutex

	ID           string    `json:"job_id"`
	Filename     string    `json:"filename"`
	Status       JobStatus `json:"status"`
	PreferRemote bool      `json:"prefer_remote"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Internal: not serialized.
	sourcePath   string
	removeSource bool
	result       *Result
	failure      *Failure
}

// NewJob creates a queued job for a file already on disk. When removeSource
// is set the file is deleted once the conversion finishes.
func NewJob(id, filename, sourcePath string, preferRemote, removeSource bool) *Job {
	now := time.Now()
	return &Job{
		ID:           id,
		Filename:     filename,
		Status:       JobQueued,
		PreferRemote: preferRemote,
		CreatedAt:    now,
		UpdatedAt:    now,
		sourcePath:   sourcePath,
		removeSource: removeSource,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Finish records the conversion outcome and the matching terminal status.
func (j *Job) Finish(res *Result, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.Status = JobCompleted
	if err != nil {
		j.Status = JobFailed
		var f *Failure
		if !errors.As(err, &f) {
			f = newFailure("convert", err)
		}
		j.failure = f
	}
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string      `json:"job_id"`
	Filename    string      `json:"filename"`
	Status      JobStatus   `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Result      *Result     `json:"result,omitempty"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:        j.ID,
		Filename:  j.Filename,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Result:    j.result,
	}
	if j.failure != nil {
		snap.FailureKind = j.failure.Kind
		snap.Error = j.failure.Error()
	}
	return snap
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
