package sources

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/rate"
)

// DefaultNetDevPath is the kernel's per-interface counter table.
const DefaultNetDevPath = "/proc/net/dev"

// Canonical /proc/net/dev layout: 8 receive columns then 8 transmit columns.
const (
	netDevFields  = 16
	netDevRxBytes = 0
	netDevTxBytes = 8
)

// NetDev is one interface and its cumulative byte counters.
type NetDev struct {
	Name string
	rate.Counters
}

// NetBytesFetcher returns the cumulative counters of every interface, in
// the order the system reports them.
type NetBytesFetcher interface {
	FetchCounters() ([]NetDev, error)
}

// Lookup returns the counters of the named interface.
func Lookup(devs []NetDev, name string) (rate.Counters, bool) {
	for _, d := range devs {
		if d.Name == name {
			return d.Counters, true
		}
	}
	return rate.Counters{}, false
}

// FirstNonLoopback returns the first interface that is not lo.
func FirstNonLoopback(devs []NetDev) (NetDev, bool) {
	for _, d := range devs {
		if d.Name != "lo" {
			return d, true
		}
	}
	return NetDev{}, false
}

// ParseNetDev parses the /proc/net/dev table. Header lines are recognised
// by their column separators and skipped.
func ParseNetDev(r io.Reader) ([]NetDev, error) {
	var devs []NetDev
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.Contains(line, "|") {
			continue
		}

		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Wrapf(ErrParse, "net dev row %q: missing interface name", line)
		}
		fields := strings.Fields(rest)
		if len(fields) < netDevFields {
			return nil, errors.Wrapf(ErrParse, "net dev row %q: %d fields, want %d", line, len(fields), netDevFields)
		}
		rx, err := strconv.ParseUint(fields[netDevRxBytes], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "net dev %s rx bytes %q", name, fields[netDevRxBytes])
		}
		tx, err := strconv.ParseUint(fields[netDevTxBytes], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "net dev %s tx bytes %q", name, fields[netDevTxBytes])
		}

		devs = append(devs, NetDev{
			Name:     strings.TrimSpace(name),
			Counters: rate.Counters{Rx: rx, Tx: tx},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrIO, "net dev: %v", err)
	}
	return devs, nil
}

// ProcNetDev reads counters from /proc/net/dev.
type ProcNetDev struct {
	Path string
}

// NewProcNetDev returns a reader of path, DefaultNetDevPath when empty.
func NewProcNetDev(path string) *ProcNetDev {
	if path == "" {
		path = DefaultNetDevPath
	}
	return &ProcNetDev{Path: path}
}

// FetchCounters reads and parses the table.
func (p *ProcNetDev) FetchCounters() ([]NetDev, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open %s: %v", p.Path, err)
	}
	defer f.Close()

	devs, err := ParseNetDev(f)
	if err != nil {
		return nil, err
	}
	logrus.WithField("interfaces", len(devs)).Trace("read net dev")
	return devs, nil
}

// Gopsutil reads counters through gopsutil.
type Gopsutil struct {
	ioCounters func(pernic bool) ([]net.IOCountersStat, error)
}

// NewGopsutil returns a gopsutil-backed counter reader.
func NewGopsutil() *Gopsutil {
	return &Gopsutil{ioCounters: net.IOCounters}
}

// FetchCounters returns per-interface counters.
func (g *Gopsutil) FetchCounters() ([]NetDev, error) {
	stats, err := g.ioCounters(true)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "io counters: %v", err)
	}
	devs := make([]NetDev, 0, len(stats))
	for _, s := range stats {
		devs = append(devs, NetDev{
			Name:     s.Name,
			Counters: rate.Counters{Rx: s.BytesRecv, Tx: s.BytesSent},
		})
	}
	return devs, nil
}
