// Package jobs runs batch nearest-bin and radius computations over uploaded
// workbooks.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bin-finder/internal/cache"
	"bin-finder/internal/calculator"
	"bin-finder/internal/excel"
	"bin-finder/internal/metrics"
	"bin-finder/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// OriginsSheet is read first; the workbook's first sheet is used when it is missing.
	OriginsSheet = "Origins"
	// BinsSheet, when present, replaces the loaded dataset for that job.
	BinsSheet   = "Bins"
	ResultSheet = "Results"
)

var (
	ErrInvalidRequest = errors.New("invalid job request")
	ErrNotFound       = errors.New("job not found")
)

// BinSource returns the bins a job runs against when the workbook has none.
type BinSource func() []models.Bin

type Options struct {
	UploadDir string
	OutputDir string
	Workers   int
	MaxJobs   int
}

// Request describes one batch run.
type Request struct {
	InputPath string
	Mode      Mode
	Meters    float64
}

// Manager owns the bounded job table. The oldest job is evicted, and
// cancelled if still running, when the table is full.
type Manager struct {
	opts   Options
	bins   BinSource
	logger zerolog.Logger
	jobs   *cache.FIFO[string, *Job]
	wg     sync.WaitGroup
}

func NewManager(opts Options, bins BinSource, logger zerolog.Logger) *Manager {
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = 100
	}
	m := &Manager{
		opts:   opts,
		bins:   bins,
		logger: logger.With().Str("component", "jobs").Logger(),
		jobs:   cache.NewFIFO[string, *Job](opts.MaxJobs),
	}
	m.jobs.OnEvict = func(_ string, j *Job) { j.Cancel() }
	return m
}

// UploadPath returns a unique destination for an uploaded file.
func (m *Manager) UploadPath(filename string) (string, error) {
	if err := os.MkdirAll(m.opts.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename))
	return filepath.Join(m.opts.UploadDir, name), nil
}

// Submit validates req and starts processing in the background.
func (m *Manager) Submit(req Request) (*Job, error) {
	if req.InputPath == "" {
		return nil, fmt.Errorf("%w: input path is required", ErrInvalidRequest)
	}
	if req.Mode == ModeRadius && (req.Meters <= 0 || math.IsNaN(req.Meters) || math.IsInf(req.Meters, 0)) {
		return nil, fmt.Errorf("%w: radius mode needs a positive distance", ErrInvalidRequest)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := newJob(req.Mode, cancel)
	m.jobs.Put(job.ID, job)

	m.wg.Add(1)
	metrics.JobsRunning.Inc()
	go func() {
		defer m.wg.Done()
		defer metrics.JobsRunning.Dec()
		defer cancel()
		m.process(ctx, job, req)
	}()

	m.logger.Info().Str("job_id", job.ID).Str("mode", string(req.Mode)).Msg("job submitted")
	return job, nil
}

func (m *Manager) Get(id string) (*Job, error) {
	if j, ok := m.jobs.Get(id); ok {
		return j, nil
	}
	return nil, ErrNotFound
}

// Wait blocks until every submitted job has returned.
func (m *Manager) Wait() { m.wg.Wait() }

// Shutdown cancels running jobs and waits for them.
func (m *Manager) Shutdown() {
	for _, id := range m.jobs.Keys() {
		if j, ok := m.jobs.Get(id); ok {
			j.Cancel()
		}
	}
	m.wg.Wait()
}

func (m *Manager) process(ctx context.Context, job *Job, req Request) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			m.fail(job, fmt.Sprintf("panic: %v", r))
		}
	}()

	result, err := m.run(ctx, job, req)
	switch {
	case errors.Is(err, context.Canceled):
		job.finish(StatusCancelled, nil, "")
		metrics.JobsTotal.WithLabelValues(string(job.Mode), string(StatusCancelled)).Inc()
		m.logger.Info().Str("job_id", job.ID).Msg("job cancelled")
	case err != nil:
		m.fail(job, err.Error())
	default:
		job.finish(StatusDone, result, "")
		metrics.JobsTotal.WithLabelValues(string(job.Mode), string(StatusDone)).Inc()
		m.logger.Info().Str("job_id", job.ID).Int("rows", result.Rows).Msg("job done")
	}
}

func (m *Manager) fail(job *Job, msg string) {
	job.finish(StatusError, nil, msg)
	metrics.JobsTotal.WithLabelValues(string(job.Mode), string(StatusError)).Inc()
	m.logger.Error().Str("job_id", job.ID).Str("error", msg).Msg("job failed")
}

func (m *Manager) run(ctx context.Context, job *Job, req Request) (*Result, error) {
	job.Log(fmt.Sprintf("Processing file: %s", filepath.Base(req.InputPath)))

	f, err := excel.OpenFile(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	originSheet := ""
	if idx, _ := f.GetSheetIndex(OriginsSheet); idx >= 0 {
		originSheet = OriginsSheet
	}
	origins, err := excel.ReadOrigins(f, originSheet)
	if err != nil {
		return nil, fmt.Errorf("read origins: %w", err)
	}
	job.Log(fmt.Sprintf("Read %d origins", len(origins)))

	var bins []models.Bin
	if idx, _ := f.GetSheetIndex(BinsSheet); idx >= 0 {
		if bins, err = excel.ReadBins(f, BinsSheet); err != nil {
			return nil, fmt.Errorf("read bins: %w", err)
		}
		job.Log(fmt.Sprintf("Read %d bins from the workbook", len(bins)))
	} else if m.bins != nil {
		bins = m.bins()
		job.Log(fmt.Sprintf("Using %d bins from the loaded dataset", len(bins)))
	}

	progress := func(current, total int, msg string) { job.SetProgress(current, total, msg) }

	start := time.Now()
	var rows []models.ResultRow
	if req.Mode == ModeRadius {
		job.Log(fmt.Sprintf("Computing bins within %.0fm", req.Meters))
		rows, err = calculator.ComputeRadius(ctx, origins, bins, req.Meters, m.opts.Workers, progress, job.Log)
	} else {
		job.Log("Computing nearest bin per origin")
		rows, err = calculator.ComputeNearest(ctx, origins, bins, m.opts.Workers, progress, job.Log)
	}
	if err != nil {
		return nil, err
	}
	job.Log(fmt.Sprintf("Calculation finished in %s", time.Since(start).Round(time.Millisecond)))

	if err := os.MkdirAll(m.opts.OutputDir, 0o755); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(req.InputPath), filepath.Ext(req.InputPath))
	outputPath := filepath.Join(m.opts.OutputDir, fmt.Sprintf("%s_%s.xlsx", base, req.Mode))

	job.Log("Writing result workbook")
	if err := excel.WriteResult(outputPath, rows, ResultSheet); err != nil {
		return nil, fmt.Errorf("write result: %w", err)
	}

	return &Result{
		Mode:     req.Mode,
		Rows:     len(rows),
		Origins:  len(origins),
		Bins:     len(bins),
		Sheet:    ResultSheet,
		Output:   outputPath,
		Filename: filepath.Base(outputPath),
	}, nil
}
