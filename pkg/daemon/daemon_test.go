package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusbar/dwmstatus/pkg/scheduler"
	"github.com/statusbar/dwmstatus/pkg/sources"
)

const fallbackLine = " interface not found | Vol: [off] | 2024.03.05 09:07 | no battery found "

func fallbackDeps(s *FakeSink) *Deps {
	return &Deps{
		Sink:     s,
		Battery:  FakeBatteries{},
		NetBytes: &FakeNetBytes{Err: sources.ErrIO},
		Volume:   FakeVolume{Volume: sources.Volume{On: false}},
		Clock:    sources.FixedClock(time.Date(2024, 3, 5, 9, 7, 0, 0, time.Local)),
	}
}

func TestEndToEndFallbacks(t *testing.T) {
	s := &FakeSink{}
	d, err := New(testConfig(t), fallbackDeps(s))
	require.NoError(t, err)

	status := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, map[scheduler.Kind]<-chan time.Time{scheduler.StatusTick: status})
	}()

	require.Eventually(t, func() bool {
		return s.Last() == fallbackLine
	}, 2*time.Second, time.Millisecond)

	// Nothing changed, so further status ticks write nothing.
	n := len(s.Lines())
	for i := 0; i < 3; i++ {
		status <- time.Now()
	}
	require.Eventually(t, func() bool {
		return d.composer.Stats().Suppressed >= 3
	}, 2*time.Second, time.Millisecond)
	assert.Len(t, s.Lines(), n)

	st := d.Status()
	assert.Equal(t, fallbackLine, st.Line)
	require.Len(t, st.Fields, 4)
	assert.True(t, st.Fields[0].Stale)
	assert.NotEmpty(t, st.Fields[0].Error)
	assert.False(t, st.Fields[1].Stale)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestOnce(t *testing.T) {
	d, err := New(testConfig(t), fallbackDeps(nil))
	require.NoError(t, err)
	assert.Equal(t, fallbackLine, d.Once())
}

func TestOnceCustomFormat(t *testing.T) {
	t.Setenv("DWMSTATUS_FORMAT_ORDER", "date,volume")
	t.Setenv("DWMSTATUS_FORMAT_SEPARATOR", " / ")

	d, err := New(testConfig(t), fallbackDeps(nil))
	require.NoError(t, err)
	assert.Equal(t, " 2024.03.05 09:07 / Vol: [off] ", d.Once())
}

func TestReloadRefreshesEverything(t *testing.T) {
	s := &FakeSink{}
	deps := fallbackDeps(s)
	deps.Volume = FakeVolume{Volume: sources.Volume{On: true, Percent: 30}}
	d, err := New(testConfig(t), deps)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = d.Run(ctx, map[scheduler.Kind]<-chan time.Time{scheduler.StatusTick: make(chan time.Time)})
	}()

	want := " interface not found | Vol: 30% | 2024.03.05 09:07 | no battery found "
	require.Eventually(t, func() bool { return s.Last() == want }, 2*time.Second, time.Millisecond)
	before := len(s.Lines())

	d.Reload()
	require.Eventually(t, func() bool {
		return d.composer.Stats().Suppressed > 0
	}, 2*time.Second, time.Millisecond)
	assert.Len(t, s.Lines(), before)
	assert.Equal(t, want, s.Last())
}

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Setenv("DWMSTATUS_SCHEDULE_NETWORK", "sometimes")
	_, err := New(testConfig(t), fallbackDeps(nil))
	assert.Error(t, err)
}

func TestDepsClose(t *testing.T) {
	s := &FakeSink{}
	deps := fallbackDeps(s)
	deps.Close()
	assert.True(t, s.closed)
}
