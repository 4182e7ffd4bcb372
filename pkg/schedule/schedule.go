// Package schedule tracks when schedule-triggered workflows are next due.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is the due-time record for one schedule-triggered workflow.
type Schedule struct {
	WorkflowID string    `json:"workflow_id"`
	CronExpr   string    `json:"cron_expr"`
	Timezone   string    `json:"timezone,omitempty"`
	NextDueAt  time.Time `json:"next_due_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// New validates the cron expression and timezone and computes the first due
// time.
func New(workflowID, cronExpr, timezone string) (*Schedule, error) {
	s := &Schedule{
		WorkflowID: workflowID,
		CronExpr:   cronExpr,
		Timezone:   timezone,
	}

	due, err := s.nextAfter(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.NextDueAt = due
	s.UpdatedAt = time.Now().UTC()

	return s, nil
}

// Advance moves NextDueAt to the next occurrence after now.
func (s *Schedule) Advance(now time.Time) error {
	due, err := s.nextAfter(now)
	if err != nil {
		return err
	}

	s.NextDueAt = due
	s.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *Schedule) nextAfter(now time.Time) (time.Time, error) {
	spec, err := cronParser.Parse(s.CronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", s.CronExpr, err)
	}

	location := time.UTC

	if s.Timezone != "" {
		location, err = time.LoadLocation(s.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}

	return spec.Next(now.In(location)).UTC(), nil
}
