package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	for _, spec := range []string{"@every 2s", "@every 10m", "0 * * * * *", "*/5 * * * *"} {
		schedule, err := Parse(spec)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", spec, err)
		}
		now := time.Now()
		next1 := schedule.Next(now)
		next2 := schedule.Next(next1)
		if !next2.After(next1) {
			t.Fatalf("%q: expected next2 to be after next1, got next1=%v next2=%v", spec, next1, next2)
		}
	}

	if _, err := Parse("every two seconds"); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestCronTicker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := CronTicker(ctx, "@every 1s")
	if err != nil {
		t.Fatalf("CronTicker returned error: %v", err)
	}

	select {
	case tick := <-ch:
		if tick.IsZero() {
			t.Fatalf("expected a tick time")
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no tick within 3s")
	}

	if _, err := CronTicker(ctx, "bogus"); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		spec string
		want time.Duration
	}{
		{"@every 2s", 2 * time.Second},
		{"@every 10s", 10 * time.Second},
		{"0 * * * * *", time.Minute},
		{"*/5 * * * * *", 5 * time.Second},
	}
	for _, tt := range tests {
		got, err := Interval(tt.spec)
		if err != nil {
			t.Fatalf("Interval(%q) returned error: %v", tt.spec, err)
		}
		if got != tt.want {
			t.Fatalf("Interval(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}
