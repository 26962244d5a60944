package daemon

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/statusbar/dwmstatus/pkg/powerinfo"
	"github.com/statusbar/dwmstatus/pkg/rate"
	"github.com/statusbar/dwmstatus/pkg/sources"
)

// FakeSink records every line written.
type FakeSink struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (s *FakeSink) Write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
	return nil
}

func (s *FakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FakeSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *FakeSink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return ""
	}
	return s.lines[len(s.lines)-1]
}

// FakeBatteries serves readings by id; unknown ids are not found.
type FakeBatteries map[string]powerinfo.Reading

func (f FakeBatteries) FetchBattery(id string) (powerinfo.Reading, error) {
	r, ok := f[id]
	if !ok {
		return powerinfo.Reading{}, errors.Wrapf(sources.ErrNotFound, "battery %s", id)
	}
	return r, nil
}

// FakeNetBytes returns queued counter tables, repeating the last one.
type FakeNetBytes struct {
	mu     sync.Mutex
	Tables [][]sources.NetDev
	Err    error
}

func (f *FakeNetBytes) FetchCounters() ([]sources.NetDev, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Tables) == 0 {
		return nil, nil
	}
	t := f.Tables[0]
	if len(f.Tables) > 1 {
		f.Tables = f.Tables[1:]
	}
	return t, nil
}

func table(name string, rx, tx uint64) []sources.NetDev {
	return []sources.NetDev{
		{Name: "lo", Counters: rate.Counters{Rx: 1, Tx: 1}},
		{Name: name, Counters: rate.Counters{Rx: rx, Tx: tx}},
	}
}

type FakeDevices struct {
	Devs []sources.Device
	Err  error
}

func (f FakeDevices) Devices() ([]sources.Device, error) {
	return f.Devs, f.Err
}

type FakeVolume struct {
	Volume sources.Volume
	Err    error
}

func (f FakeVolume) FetchVolume(string, string) (sources.Volume, error) {
	return f.Volume, f.Err
}
