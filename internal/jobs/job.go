package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

type Mode string

const (
	ModeNearest Mode = "nearest"
	ModeRadius  Mode = "radius"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNearest, "":
		return ModeNearest, nil
	case ModeRadius:
		return ModeRadius, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
}

type Result struct {
	Mode     Mode   `json:"mode"`
	Rows     int    `json:"rows"`
	Origins  int    `json:"origins"`
	Bins     int    `json:"bins"`
	Sheet    string `json:"sheet"`
	Output   string `json:"-"`
	Filename string `json:"filename"`
}

// Job is a batch distance computation. All fields are guarded by mu.
type Job struct {
	ID        string
	Mode      Mode
	CreatedAt time.Time

	mu       sync.RWMutex
	status   Status
	logs     []string
	progress int
	result   *Result
	err      string
	cancel   context.CancelFunc
	done     chan struct{}
	now      func() time.Time
}

// View is a point-in-time copy of a job for serialization.
type View struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Logs      []string  `json:"logs,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newJob(mode Mode, cancel context.CancelFunc) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Mode:      mode,
		CreatedAt: time.Now(),
		status:    StatusRunning,
		logs:      []string{},
		cancel:    cancel,
		done:      make(chan struct{}),
		now:       time.Now,
	}
}

func (j *Job) Log(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.appendLog(msg)
}

func (j *Job) appendLog(msg string) {
	ts := j.now().Format("15:04:05")
	j.logs = append(j.logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (j *Job) SetProgress(current, total int, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if total > 0 {
		j.progress = int(float64(current) / float64(total) * 100)
	}
	if msg != "" {
		j.appendLog(msg)
	}
}

func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Result is nil until the job is done.
func (j *Job) Result() *Result {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.result == nil {
		return nil
	}
	r := *j.result
	return &r
}

// Snapshot copies the job state. Logs are included when withLogs is set.
func (j *Job) Snapshot(withLogs bool) View {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v := View{
		ID:        j.ID,
		Mode:      j.Mode,
		Status:    j.status,
		Progress:  j.progress,
		Error:     j.err,
		CreatedAt: j.CreatedAt,
	}
	if withLogs {
		v.Logs = append([]string(nil), j.logs...)
	}
	if j.result != nil {
		r := *j.result
		v.Result = &r
	}
	return v
}

// Cancel stops a running job. It reports whether the job was still running.
func (j *Job) Cancel() bool {
	j.mu.Lock()
	running := j.status == StatusRunning
	if running {
		j.appendLog("Cancellation requested")
	}
	j.mu.Unlock()

	if running && j.cancel != nil {
		j.cancel()
	}
	return running
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) finish(status Status, result *Result, errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.result = result
	j.err = errMsg
	switch status {
	case StatusDone:
		j.progress = 100
		j.appendLog("Job completed")
	case StatusCancelled:
		j.appendLog("Job cancelled")
	default:
		j.logs = append(j.logs, "[ERROR] "+errMsg)
	}
}
