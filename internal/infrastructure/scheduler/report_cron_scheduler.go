package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pinshop/backend/internal/domain/report"
	"github.com/pinshop/backend/internal/infrastructure/config"
)

// cronTickerInterval is the interval at which the warmer checks for execution
const cronTickerInterval = 1 * time.Minute

const (
	defaultCronHour   = 0
	defaultCronMinute = 30
)

// ReportWarmer builds one report period so that it lands in the cache
type ReportWarmer interface {
	WarmReport(ctx context.Context, req report.PeriodRequest) error
}

// ReportCacheWarmerConfig holds configuration for the daily cache warmup
type ReportCacheWarmerConfig struct {
	Enabled bool
	// CronHour and CronMinute are read in the shop's location
	CronHour   int
	CronMinute int
	// JobTimeout bounds one whole warmup run
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// Periods are the report periods built on each run
	Periods []report.PeriodFilter
}

// DefaultReportCacheWarmerConfig runs at 00:30 and warms the current month
// and the last seven days.
func DefaultReportCacheWarmerConfig() ReportCacheWarmerConfig {
	return ReportCacheWarmerConfig{
		Enabled:       true,
		CronHour:      defaultCronHour,
		CronMinute:    defaultCronMinute,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    10 * time.Second,
		Periods:       []report.PeriodFilter{report.PeriodMonth, report.Period7Days},
	}
}

// ConfigFrom maps the scheduler section of the application config
func ConfigFrom(cfg config.SchedulerConfig) (ReportCacheWarmerConfig, error) {
	out := DefaultReportCacheWarmerConfig()
	out.Enabled = cfg.Enabled

	hour, minute, err := ParseCronSchedule(cfg.WarmCronSchedule)
	if err != nil {
		return out, err
	}
	out.CronHour, out.CronMinute = hour, minute

	if cfg.JobTimeout > 0 {
		out.JobTimeout = cfg.JobTimeout
	}
	if cfg.RetryAttempts > 0 {
		out.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		out.RetryDelay = cfg.RetryDelay
	}
	return out, nil
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract
// hour and minute. An empty expression yields the 00:30 default.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = defaultCronHour, defaultCronMinute

	parts := strings.Fields(cronExpr)
	if len(parts) == 0 {
		return hour, minute, nil
	}
	if len(parts) != 5 {
		return hour, minute, fmt.Errorf("%w: expected 5 fields in %q", ErrInvalidConfig, cronExpr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return hour, minute, fmt.Errorf("%w: only daily schedules are supported, got %q", ErrInvalidConfig, cronExpr)
		}
	}

	if minute, err = parseIntOrDefault(parts[0], defaultCronMinute); err != nil {
		return defaultCronHour, defaultCronMinute, err
	}
	if hour, err = parseIntOrDefault(parts[1], defaultCronHour); err != nil {
		return defaultCronHour, defaultCronMinute, err
	}

	if minute < 0 || minute > 59 {
		return defaultCronHour, defaultCronMinute, fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, minute)
	}
	if hour < 0 || hour > 23 {
		return defaultCronHour, defaultCronMinute, fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, hour)
	}
	return hour, minute, nil
}

func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, fmt.Errorf("%w: %q is not a number", ErrInvalidConfig, s)
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// WarmupResult records the outcome of one period in the last run
type WarmupResult struct {
	Period   report.PeriodFilter `json:"period"`
	Success  bool                `json:"success"`
	Attempts int                 `json:"attempts"`
	Error    string              `json:"error,omitempty"`
}

// Status is a snapshot of the warmer for the admin endpoint
type Status struct {
	Enabled    bool           `json:"enabled"`
	IsRunning  bool           `json:"is_running"`
	InProgress bool           `json:"in_progress"`
	CronHour   int            `json:"cron_hour"`
	CronMinute int            `json:"cron_minute"`
	Location   string         `json:"location"`
	Periods    []string       `json:"periods"`
	LastRunAt  *time.Time     `json:"last_run_at,omitempty"`
	NextRunAt  *time.Time     `json:"next_run_at,omitempty"`
	LastResult []WarmupResult `json:"last_result,omitempty"`
}

// ReportCacheWarmer rebuilds the common report periods once a day so the
// first request of the morning is served from the cache.
type ReportCacheWarmer struct {
	config ReportCacheWarmerConfig
	warmer ReportWarmer
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
	inProgress bool

	lastRunAt  *time.Time
	nextRunAt  *time.Time
	lastResult []WarmupResult
	// lastSlot prevents a second run inside the same scheduled minute
	lastSlot time.Time
}

// NewReportCacheWarmer creates a warmer. A nil location means time.Local.
func NewReportCacheWarmer(cfg ReportCacheWarmerConfig, warmer ReportWarmer, loc *time.Location, logger *zap.Logger) *ReportCacheWarmer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Periods) == 0 {
		cfg.Periods = DefaultReportCacheWarmerConfig().Periods
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	return &ReportCacheWarmer{
		config: cfg,
		warmer: warmer,
		loc:    loc,
		logger: logger.Named("report_cache_warmer"),
		now:    time.Now,
	}
}

// Start launches the cron loop. Starting a disabled or running warmer is a no-op.
func (s *ReportCacheWarmer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Report cache warmer disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Report cache warmer started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.String("location", s.loc.String()),
		zap.Timep("next_run_at", s.GetNextRunAt()),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx
func (s *ReportCacheWarmer) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Report cache warmer stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Report cache warmer stop timed out")
		return ctx.Err()
	}
}

func (s *ReportCacheWarmer) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			if s.shouldRun(now) {
				s.runWarmup(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun matches the wall clock in the shop's location, once per slot
func (s *ReportCacheWarmer) shouldRun(now time.Time) bool {
	local := now.In(s.loc)
	if local.Hour() != s.config.CronHour || local.Minute() != s.config.CronMinute {
		return false
	}
	slot := local.Truncate(time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.Equal(s.lastSlot) {
		return false
	}
	s.lastSlot = slot
	return true
}

func (s *ReportCacheWarmer) calculateNextRunTime() {
	now := s.now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, s.loc)
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, s.config.CronHour, s.config.CronMinute, 0, 0, s.loc)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runWarmup builds every configured period. A failing period is retried and
// then recorded; it never stops the remaining periods.
func (s *ReportCacheWarmer) runWarmup(ctx context.Context) []WarmupResult {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		s.logger.Warn("Skipping report warmup, previous run still in progress")
		return nil
	}
	s.inProgress = true
	now := s.now()
	s.lastRunAt = &now
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProgress = false
		s.mu.Unlock()
	}()

	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	s.logger.Info("Starting report cache warmup", zap.Int("periods", len(s.config.Periods)))

	results := make([]WarmupResult, 0, len(s.config.Periods))
	for _, period := range s.config.Periods {
		results = append(results, s.warmPeriod(ctx, period))
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.logger.Info("Report cache warmup finished",
		zap.Int("periods", len(results)),
		zap.Int("failed", failed),
		zap.Duration("duration", s.now().Sub(now)),
	)

	s.mu.Lock()
	s.lastResult = results
	s.mu.Unlock()
	return results
}

func (s *ReportCacheWarmer) warmPeriod(ctx context.Context, period report.PeriodFilter) WarmupResult {
	result := WarmupResult{Period: period}
	req := report.PeriodRequest{Filter: period}

	var err error
	for attempt := 1; attempt <= s.config.RetryAttempts; attempt++ {
		result.Attempts = attempt
		if err = s.warmer.WarmReport(ctx, req); err == nil {
			result.Success = true
			s.logger.Debug("Report period warmed",
				zap.String("period", period.String()),
				zap.Int("attempt", attempt))
			return result
		}

		s.logger.Warn("Report warmup attempt failed",
			zap.String("period", period.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == s.config.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			result.Error = ctx.Err().Error()
			return result
		case <-time.After(s.config.RetryDelay):
		}
	}

	result.Error = err.Error()
	s.logger.Error("Report warmup failed",
		zap.String("period", period.String()),
		zap.Int("attempts", result.Attempts),
		zap.Error(err))
	return result
}

// TriggerManualRun starts a warmup in the background.
// The run is detached from ctx so it outlives the HTTP request that asked for it.
func (s *ReportCacheWarmer) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if s.inProgress {
		s.mu.Unlock()
		return ErrWarmupInProgress
	}
	// registered under the lock so a concurrent Stop waits for this run
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.runWarmup(context.WithoutCancel(ctx))
	}()
	return nil
}

// GetStatus returns the current status of the warmer
func (s *ReportCacheWarmer) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	periods := make([]string, len(s.config.Periods))
	for i, p := range s.config.Periods {
		periods[i] = p.String()
	}
	return Status{
		Enabled:    s.config.Enabled,
		IsRunning:  s.isRunning,
		InProgress: s.inProgress,
		CronHour:   s.config.CronHour,
		CronMinute: s.config.CronMinute,
		Location:   s.loc.String(),
		Periods:    periods,
		LastRunAt:  s.lastRunAt,
		NextRunAt:  s.nextRunAt,
		LastResult: append([]WarmupResult(nil), s.lastResult...),
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *ReportCacheWarmer) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// GetLastRunAt returns when the last run started
func (s *ReportCacheWarmer) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
