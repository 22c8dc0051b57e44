package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
	"flightsched-service/pkg/clock"
	"flightsched-service/pkg/logger"
	"flightsched-service/pkg/metrics"
	"flightsched-service/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrInvalidRequest is returned for malformed collection requests and queries
var ErrInvalidRequest = errors.New("invalid request")

// errorDetail recorded on runs stopped through CancelRun or shutdown
const cancelledDetail = "cancelled"

// RunOrchestrationError is a failure outside per-window handling. It marks the run failed.
type RunOrchestrationError struct {
	RunID string
	Err   error
}

func (e *RunOrchestrationError) Error() string {
	return fmt.Sprintf("collection run %s failed: %v", e.RunID, e.Err)
}

func (e *RunOrchestrationError) Unwrap() error {
	return e.Err
}

// PipelineConfig tunes the ingestion pipeline
type PipelineConfig struct {
	ChunkSize    time.Duration
	ChunkDelay   time.Duration
	MaxBatchSize int
	MaxRangeDays int
	Clock        clock.Clock
}

// IngestionPipeline runs collection requests: it walks the requested range
// window by window, one upstream call at a time, and stores relevant schedules.
type IngestionPipeline struct {
	provider   repository.FlightDataProvider
	requests   repository.CollectionRequestRepository
	store      *ShardedStore
	normalizer *ScheduleNormalizer
	filter     *RelevanceFilter
	airports   *AirportDirectory
	airlines   repository.AirlineRepository
	cache      *QueryCache
	limiter    *rate.Limiter
	clock      clock.Clock
	cfg        PipelineConfig
	logger     logger.Logger
	metrics    *metrics.Metrics

	baseCtx context.Context
	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewIngestionPipeline creates a pipeline. Background runs derive from ctx.
// airlines and cache may be nil.
func NewIngestionPipeline(
	ctx context.Context,
	provider repository.FlightDataProvider,
	requests repository.CollectionRequestRepository,
	store *ShardedStore,
	normalizer *ScheduleNormalizer,
	filter *RelevanceFilter,
	airports *AirportDirectory,
	airlines repository.AirlineRepository,
	cache *QueryCache,
	logger logger.Logger,
	m *metrics.Metrics,
	cfg PipelineConfig,
) *IngestionPipeline {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > MaxChunk {
		cfg.ChunkSize = MaxChunk
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 500
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 31
	}

	// one token per upstream call; the burst of 1 lets the first call through
	limit := rate.Inf
	if cfg.ChunkDelay > 0 {
		limit = rate.Every(cfg.ChunkDelay)
	}

	return &IngestionPipeline{
		provider:   provider,
		requests:   requests,
		store:      store,
		normalizer: normalizer,
		filter:     filter,
		airports:   airports,
		airlines:   airlines,
		cache:      cache,
		limiter:    rate.NewLimiter(limit, 1),
		clock:      cfg.Clock,
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		baseCtx:    ctx,
		running:    make(map[string]context.CancelFunc),
	}
}

// RequestCollection validates and records a run, then executes it in the
// background. It returns the run id immediately.
func (p *IngestionPipeline) RequestCollection(ctx context.Context, airportCode, startDate, endDate string) (string, error) {
	iata := strings.ToUpper(strings.TrimSpace(airportCode))
	if len(iata) != 3 {
		return "", fmt.Errorf("%w: airport code %q", ErrInvalidRequest, airportCode)
	}

	req := &entity.CollectionRequest{
		ID:               uuid.NewString(),
		DepartureAirport: p.airports.Name(ctx, iata),
		DepartureIata:    iata,
		StartDate:        startDate,
		EndDate:          endDate,
		Status:           entity.RunPending,
	}

	if _, err := p.rangeOf(ctx, req); err != nil {
		return "", err
	}

	if err := p.requests.Create(ctx, req); err != nil {
		return "", err
	}

	p.logger.Info("Collection requested",
		"runID", req.ID,
		"airport", iata,
		"startDate", startDate,
		"endDate", endDate)

	p.start(req)
	return req.ID, nil
}

func (p *IngestionPipeline) start(req *entity.CollectionRequest) {
	runCtx, cancel := context.WithCancel(p.baseCtx)

	p.mu.Lock()
	p.running[req.ID] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.running, req.ID)
			p.mu.Unlock()
			cancel()
		}()

		if err := p.Run(runCtx, req); err != nil {
			p.logger.Error("Collection run ended with error", "runID", req.ID, "error", err)
		}
	}()
}

// CancelRun stops an in-flight run before its next window. It reports whether the run was active.
func (p *IngestionPipeline) CancelRun(runID string) bool {
	p.mu.Lock()
	cancel, ok := p.running[runID]
	p.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Close cancels every active run and waits for them to record their final status
func (p *IngestionPipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	for _, cancel := range p.running {
		cancel()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetRunStatus returns the stored progress record of a run
func (p *IngestionPipeline) GetRunStatus(ctx context.Context, runID string) (*entity.CollectionRequest, error) {
	return p.requests.FindByID(ctx, runID)
}

// rangeOf converts the inclusive date range into [first midnight, midnight after the last day)
// in the airport's local time.
func (p *IngestionPipeline) rangeOf(ctx context.Context, req *entity.CollectionRequest) (Window, error) {
	loc := p.airports.Location(ctx, req.DepartureIata)

	start, err := time.ParseInLocation(utils.DATE_LAYOUT, req.StartDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start date %q", ErrInvalidRequest, req.StartDate)
	}
	end, err := time.ParseInLocation(utils.DATE_LAYOUT, req.EndDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end date %q", ErrInvalidRequest, req.EndDate)
	}
	end = end.AddDate(0, 0, 1)

	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: end date before start date", ErrInvalidRequest)
	}
	if end.Sub(start) > time.Duration(p.cfg.MaxRangeDays)*24*time.Hour {
		return Window{}, fmt.Errorf("%w: range exceeds %d days", ErrInvalidRequest, p.cfg.MaxRangeDays)
	}

	return Window{Start: start, End: end}, nil
}

// Run executes one collection run synchronously. A window that fails is
// logged and counted; the run still completes. Anything else fails the run.
func (p *IngestionPipeline) Run(ctx context.Context, req *entity.CollectionRequest) (err error) {
	log := p.logger.With("runID", req.ID, "airport", req.DepartureIata)
	// progress writes must land even after the run context is cancelled
	bookkeeping := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = p.fail(bookkeeping, req, &RunOrchestrationError{RunID: req.ID, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if err := p.requests.UpdateStatus(bookkeeping, req.ID, entity.RunInProgress, ""); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return err
		}
		return p.fail(bookkeeping, req, &RunOrchestrationError{RunID: req.ID, Err: err})
	}
	log.Info("Collection run started", "startDate", req.StartDate, "endDate", req.EndDate)

	span, err := p.rangeOf(ctx, req)
	if err != nil {
		return p.fail(bookkeeping, req, &RunOrchestrationError{RunID: req.ID, Err: err})
	}

	windows := SplitIntoChunks(span.Start, span.End, p.cfg.ChunkSize)
	progress := entity.RunProgress{TotalWindows: len(windows)}
	if err := p.requests.UpdateProgress(bookkeeping, req.ID, progress); err != nil {
		return p.fail(bookkeeping, req, &RunOrchestrationError{RunID: req.ID, Err: err})
	}

	monitored := MonitoredAirport{Iata: req.DepartureIata, Name: req.DepartureAirport}
	airlineNames := make(map[string]string)

	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return p.cancelled(bookkeeping, req, log, err)
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return p.cancelled(bookkeeping, req, log, err)
		}

		log.Info("Fetching window",
			"window", i+1,
			"of", len(windows),
			"from", w.Start.Format(time.RFC3339),
			"to", w.End.Format(time.RFC3339))

		relevant, put, werr := p.processWindow(ctx, monitored, w, airlineNames)
		progress.TotalFlights += relevant
		progress.CollectedFlights += put.Written + put.Skipped
		progress.SkippedFlights += put.Skipped

		if werr != nil {
			if ctx.Err() != nil {
				p.requests.UpdateProgress(bookkeeping, req.ID, progress)
				return p.cancelled(bookkeeping, req, log, ctx.Err())
			}
			progress.FailedWindows++
			p.metrics.WindowsFailed.Inc()
			p.metrics.ErrorsCount.WithLabelValues("window").Inc()
			log.Error("Window failed, continuing with next window",
				"window", i+1,
				"from", w.Start.Format(time.RFC3339),
				"error", werr)
		} else {
			progress.CompletedWindows++
			p.metrics.WindowsFetched.Inc()
			log.Info("Window processed",
				"window", i+1,
				"relevant", relevant,
				"written", put.Written,
				"skipped", put.Skipped,
				"rejected", put.Rejected)
		}

		if err := p.requests.UpdateProgress(bookkeeping, req.ID, progress); err != nil {
			return p.fail(bookkeeping, req, &RunOrchestrationError{RunID: req.ID, Err: err})
		}
	}

	if err := p.requests.UpdateStatus(bookkeeping, req.ID, entity.RunCompleted, ""); err != nil {
		return p.fail(bookkeeping, req, &RunOrchestrationError{RunID: req.ID, Err: err})
	}
	p.metrics.RunsByStatus.WithLabelValues(entity.RunCompleted).Inc()

	log.Info("Collection run completed",
		"totalFlights", progress.TotalFlights,
		"collectedFlights", progress.CollectedFlights,
		"failedWindows", progress.FailedWindows)

	return nil
}

// processWindow fetches, filters, normalizes and stores one window
func (p *IngestionPipeline) processWindow(ctx context.Context, monitored MonitoredAirport, w Window, airlineNames map[string]string) (int, PutResult, error) {
	offset, duration := OffsetAndDuration(w, p.clock.Now().Truncate(time.Minute))

	raw, err := p.provider.FetchWindow(ctx, monitored.Iata, offset, duration)
	if err != nil {
		return 0, PutResult{}, fmt.Errorf("failed to fetch window: %w", err)
	}

	departures := p.filter.KeepRelevant(raw.Departures, entity.Departure)
	arrivals := p.filter.KeepRelevant(raw.Arrivals, entity.Arrival)

	schedules := p.normalizer.Normalize(departures, entity.Departure, monitored)
	schedules = append(schedules, p.normalizer.Normalize(arrivals, entity.Arrival, monitored)...)
	p.enrichAirlines(ctx, schedules, airlineNames)

	put, err := p.store.BatchPut(ctx, schedules, p.cfg.MaxBatchSize)
	if p.cache != nil && len(put.WrittenKeys) > 0 {
		p.cache.Invalidate(put.WrittenKeys)
	}

	return len(schedules), put, err
}

// enrichAirlines fills missing airline names from reference data; names holds
// lookups already done during this run.
func (p *IngestionPipeline) enrichAirlines(ctx context.Context, schedules []*entity.FlightSchedule, names map[string]string) {
	if p.airlines == nil {
		return
	}

	for _, s := range schedules {
		if s.Airline != "" || s.AirlineCode == "" {
			continue
		}

		name, ok := names[s.AirlineCode]
		if !ok {
			if airline, err := p.airlines.GetByCode(ctx, s.AirlineCode); err == nil {
				name = airline.Name
			} else if !errors.Is(err, entity.ErrNotFound) {
				p.logger.Warn("Airline lookup failed", "code", s.AirlineCode, "error", err)
				continue
			}
			names[s.AirlineCode] = name
		}
		s.Airline = name
	}
}

func (p *IngestionPipeline) fail(ctx context.Context, req *entity.CollectionRequest, cause error) error {
	if err := p.requests.UpdateStatus(ctx, req.ID, entity.RunFailed, cause.Error()); err != nil {
		p.logger.Error("Failed to mark run as failed", "runID", req.ID, "error", err)
	}
	p.metrics.RunsByStatus.WithLabelValues(entity.RunFailed).Inc()
	p.logger.Error("Collection run failed", "runID", req.ID, "error", cause)
	return cause
}

func (p *IngestionPipeline) cancelled(ctx context.Context, req *entity.CollectionRequest, log logger.Logger, cause error) error {
	if err := p.requests.UpdateStatus(ctx, req.ID, entity.RunFailed, cancelledDetail); err != nil {
		log.Error("Failed to mark run as cancelled", "error", err)
	}
	p.metrics.RunsByStatus.WithLabelValues(entity.RunFailed).Inc()
	log.Warn("Collection run cancelled", "cause", cause)
	return cause
}
