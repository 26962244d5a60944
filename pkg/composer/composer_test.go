package composer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusbar/dwmstatus/pkg/state"
)

type fakeWriter struct {
	lines []string
	err   error
}

func (w *fakeWriter) Write(text string) error {
	if w.err != nil {
		return w.err
	}
	w.lines = append(w.lines, text)
	return nil
}

func snapshot(updates ...state.Update) state.Snapshot {
	c := state.NewCache()
	c.ApplyAll(updates)
	return c.Snapshot()
}

func TestCompose(t *testing.T) {
	now := time.Now()
	snap := snapshot(
		state.Update{Category: state.Network, Err: errors.New("io"), Fallback: "interface not found", At: now},
		state.Update{Category: state.Volume, Text: "Vol: [off]", At: now},
		state.Update{Category: state.Date, Text: "2024.03.05 09:07", At: now},
		state.Update{Category: state.Battery, Text: "no battery found", At: now},
	)

	got := DefaultFormat().Compose(snap)
	assert.Equal(t, " interface not found | Vol: [off] | 2024.03.05 09:07 | no battery found ", got)

	f := Format{Order: []state.Category{state.Date, state.Battery}, Separator: " :: "}
	assert.Equal(t, "2024.03.05 09:07 :: no battery found", f.Compose(snap))
}

func TestComposePlaceholder(t *testing.T) {
	snap := snapshot(state.Update{Category: state.Date, Text: "2024.03.05 09:07", At: time.Now()})
	assert.Equal(t, " - | - | 2024.03.05 09:07 | - ", DefaultFormat().Compose(snap))
}

func TestEmitDebounce(t *testing.T) {
	w := &fakeWriter{}
	c := New(w, DefaultFormat())
	snap := snapshot(state.Update{Category: state.Date, Text: "2024.03.05 09:07", At: time.Now()})

	written, err := c.Emit(snap)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = c.Emit(snap)
	require.NoError(t, err)
	assert.False(t, written)

	assert.Len(t, w.lines, 1)

	snap2 := snapshot(state.Update{Category: state.Date, Text: "2024.03.05 09:08", At: time.Now()})
	written, err = c.Emit(snap2)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, []string{" - | - | 2024.03.05 09:07 | - ", " - | - | 2024.03.05 09:08 | - "}, w.lines)

	assert.Equal(t, Stats{Written: 2, Suppressed: 1}, c.Stats())
}

func TestEmitFirstLineAlwaysWritten(t *testing.T) {
	w := &fakeWriter{}
	c := New(w, Format{})

	_, ok := c.Last()
	assert.False(t, ok)

	// An empty format composes the empty string; it is still the first line.
	written, err := c.Emit(state.Snapshot{})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, []string{""}, w.lines)

	last, ok := c.Last()
	assert.True(t, ok)
	assert.Equal(t, "", last)
}

func TestEmitRetriesAfterFailedWrite(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection closed")}
	c := New(w, DefaultFormat())
	snap := snapshot(state.Update{Category: state.Battery, Text: "charged", At: time.Now()})

	written, err := c.Emit(snap)
	assert.Error(t, err)
	assert.False(t, written)

	w.err = nil
	written, err = c.Emit(snap)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, []string{" - | - | - | charged "}, w.lines)
	assert.Equal(t, Stats{Written: 1, Failed: 1}, c.Stats())
}

func TestSetFormat(t *testing.T) {
	w := &fakeWriter{}
	c := New(w, DefaultFormat())
	snap := snapshot(state.Update{Category: state.Battery, Text: "charged", At: time.Now()})

	_, err := c.Emit(snap)
	require.NoError(t, err)

	c.SetFormat(Format{Order: []state.Category{state.Battery}})
	written, err := c.Emit(snap)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "charged", w.lines[1])
}
