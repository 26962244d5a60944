package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse parses a schedule such as "@every 2s" or "0 * * * * *".
func Parse(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "parse schedule %q", spec)
	}
	return s, nil
}

// CronTicker delivers the activation times of a schedule until ctx is
// done. The channel holds at most one pending tick; ticks that find it
// full are dropped.
func CronTicker(ctx context.Context, spec string) (<-chan time.Time, error) {
	sched, err := Parse(spec)
	if err != nil {
		return nil, err
	}

	ch := make(chan time.Time, 1)
	go func() {
		for {
			next := sched.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case t := <-timer.C:
				select {
				case ch <- t:
				default:
					logrus.WithField("schedule", spec).Trace("tick dropped, previous one still pending")
				}
			}
		}
	}()
	return ch, nil
}

// Interval returns the nominal period of a schedule: the fixed delay of an
// @every schedule, else the gap between its next two activations.
func Interval(spec string) (time.Duration, error) {
	sched, err := Parse(spec)
	if err != nil {
		return 0, err
	}
	if every, ok := sched.(cron.ConstantDelaySchedule); ok {
		return every.Delay, nil
	}
	next := sched.Next(time.Now())
	return sched.Next(next).Sub(next), nil
}
