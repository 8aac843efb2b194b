package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// ParseSchedule accepts either "@every <duration>" or a 5-field cron expression.
func ParseSchedule(expr string) (Schedule, error) {
	expr = strings.TrimSpace(expr)
	if rest, ok := strings.CutPrefix(expr, "@every "); ok {
		d, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", rest, err)
		}
		if d < time.Minute {
			return nil, fmt.Errorf("interval %s is shorter than one minute", d)
		}
		return NewIntervalSchedule(d), nil
	}

	ce, err := ParseCronExpression(expr)
	if err != nil {
		return nil, err
	}
	return ce, nil
}

// IntervalSchedule runs a job every Interval, counted from the end of the previous run.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// Next returns t plus the interval, truncated to whole seconds.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval).Truncate(time.Second)
}

// String returns the schedule in the form ParseSchedule accepts.
func (s *IntervalSchedule) String() string {
	return "@every " + s.Interval.String()
}
