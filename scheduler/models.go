package scheduler

import (
	"context"
	"time"

	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/types"
)

// Job names the engine knows how to run. Installing any other name fails.
const (
	JobPenaltySweep = "penalty_sweep"
	JobLimitGrant   = "limit_grant"
	JobDueNotice    = "due_notice"
)

// KnownJob reports whether name is a runnable job.
func KnownJob(name string) bool {
	switch name {
	case JobPenaltySweep, JobLimitGrant, JobDueNotice:
		return true
	}
	return false
}

// Schedule is an installed recurring job. Name is unique; reinstalling an
// existing schedule updates its interval in place.
type Schedule struct {
	types.Entity

	ID       id.JobID      `json:"id"`
	Name     string        `json:"name"`
	Every    time.Duration `json:"every"`
	Enabled  bool          `json:"enabled"`
	LastRun  *time.Time    `json:"last_run,omitempty"`
	LastErr  string        `json:"last_err,omitempty"`
	RunCount int64         `json:"run_count"`
}

// Due reports whether the schedule should fire at now.
func (s *Schedule) Due(now time.Time) bool {
	if !s.Enabled || s.Every <= 0 {
		return false
	}
	if s.LastRun == nil {
		return true
	}
	return now.Sub(*s.LastRun) >= s.Every
}

// Store persists schedules. The unified store implements it.
type Store interface {
	InstallSchedule(ctx context.Context, s *Schedule) error
	RemoveSchedule(ctx context.Context, name string) error
	GetSchedule(ctx context.Context, name string) (*Schedule, error)
	ListSchedules(ctx context.Context) ([]*Schedule, error)
	UpdateSchedule(ctx context.Context, s *Schedule) error
}
