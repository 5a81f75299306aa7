package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped warmer
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrWarmupInProgress is returned when a manual run overlaps a running one
	ErrWarmupInProgress = errors.New("report warmup already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
