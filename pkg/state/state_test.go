package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory(" Battery ")
	require.NoError(t, err)
	assert.Equal(t, Battery, got)

	_, err = ParseCategory("cpu")
	assert.Error(t, err)
}

func TestApplyKeepsLastGoodValue(t *testing.T) {
	c := NewCache()
	t0 := time.Unix(1700000000, 0)

	c.Apply(Update{Category: Network, Text: "rx: 1 kB/s tx: 2 kB/s", At: t0})
	e := c.Snapshot().Get(Network)
	assert.False(t, e.Stale)
	assert.Equal(t, "rx: 1 kB/s tx: 2 kB/s", e.Display())

	boom := errors.New("boom")
	c.Apply(Update{Category: Network, Err: boom, Fallback: "interface not found", At: t0.Add(time.Second)})
	e = c.Snapshot().Get(Network)
	assert.True(t, e.Stale)
	assert.Equal(t, "rx: 1 kB/s tx: 2 kB/s", e.Text)
	assert.Equal(t, "interface not found", e.Display())
	assert.ErrorIs(t, e.Err, boom)
	assert.Equal(t, t0, e.Updated)

	c.Apply(Update{Category: Network, Text: "rx: 3 kB/s tx: 4 kB/s", At: t0.Add(2 * time.Second)})
	e = c.Snapshot().Get(Network)
	assert.False(t, e.Stale)
	assert.NoError(t, e.Err)
	assert.Equal(t, "rx: 3 kB/s tx: 4 kB/s", e.Display())
}

func TestFilled(t *testing.T) {
	c := NewCache()
	assert.False(t, c.Snapshot().Get(Date).Filled())

	c.Apply(Update{Category: Date, Err: errors.New("x"), Fallback: "?", At: time.Now()})
	assert.True(t, c.Snapshot().Get(Date).Filled())
}

func TestApplyIgnoresUnknownCategory(t *testing.T) {
	c := NewCache()
	c.Apply(Update{Category: Category(42), Text: "x", At: time.Now()})
	assert.Equal(t, Snapshot{}, c.Snapshot())
	assert.Equal(t, Entry{}, c.Snapshot().Get(Category(42)))
}

// Batches are applied atomically: concurrent readers never see network and
// date from different batches.
func TestApplyAllNoTornReads(t *testing.T) {
	c := NewCache()
	const generations = 2000

	var wg sync.WaitGroup
	stop := make(chan struct{})
	torn := make(chan string, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s := c.Snapshot()
				if n, d := s.Get(Network).Text, s.Get(Date).Text; n != d {
					select {
					case torn <- fmt.Sprintf("network=%q date=%q", n, d):
					default:
					}
					return
				}
			}
		}()
	}

	for g := 0; g < generations; g++ {
		text := fmt.Sprintf("gen-%d", g)
		now := time.Now()
		c.ApplyAll([]Update{
			{Category: Network, Text: text, At: now},
			{Category: Date, Text: text, At: now},
		})
	}
	close(stop)
	wg.Wait()

	select {
	case msg := <-torn:
		t.Fatalf("torn read: %s", msg)
	default:
	}
}
