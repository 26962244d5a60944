package daemon

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/statusbar/dwmstatus/pkg/config"
	"github.com/statusbar/dwmstatus/pkg/powerinfo"
	ratecounter "github.com/statusbar/dwmstatus/pkg/rate"
	"github.com/statusbar/dwmstatus/pkg/sources"
	"github.com/statusbar/dwmstatus/pkg/state"
)

// Texts shown while a category is failing.
const (
	networkFallback = "interface not found"
	volumeFallback  = "Vol: [err]"
	volumeOff       = "Vol: [off]"
	batteryFallback = "no battery found"
)

// staleLog reports a category going stale and recovering. Repeated
// failures in between are rate limited.
type staleLog struct {
	name    string
	stale   bool
	limiter *rate.Limiter
}

func newStaleLog(name string) *staleLog {
	return &staleLog{
		name:    name,
		limiter: rate.NewLimiter(rate.Every(time.Minute), 1),
	}
}

func (l *staleLog) observe(err error) {
	entry := logrus.WithField("source", l.name)
	if err == nil {
		if l.stale {
			entry.Info("source recovered")
		}
		l.stale = false
		return
	}

	entry = entry.WithError(err)
	switch {
	case !l.stale:
		l.stale = true
		// Spend the token so the next failure is not reported right away.
		l.limiter.Allow()
		entry.Warn("source failed, showing fallback")
	case l.limiter.Allow():
		entry.Warn("source still failing")
	default:
		entry.Trace("source still failing")
	}
}

// networkSource renders throughput of the active interface.
type networkSource struct {
	conf    config.Config
	bytes   sources.NetBytesFetcher
	devices sources.DeviceLister

	counter *ratecounter.Counter
	iface   string
	// last is the rate shown between ticks.
	last   ratecounter.Sample
	log    *staleLog
	devLog *staleLog
}

func newNetworkSource(conf config.Config, bytes sources.NetBytesFetcher, devices sources.DeviceLister, interval time.Duration) *networkSource {
	return &networkSource{
		conf:    conf,
		bytes:   bytes,
		devices: devices,
		counter: ratecounter.NewCounter(interval),
		log:     newStaleLog("network"),
		devLog:  newStaleLog("network devices"),
	}
}

func (n *networkSource) Name() string { return "network" }

func (n *networkSource) Refresh(now time.Time) state.Update {
	return n.refresh(now, true)
}

// RefreshOnDemand re-resolves the interface and connection names but keeps
// the last rate. A sample taken between ticks would be divided by the full
// interval and skew this rate and the next one.
func (n *networkSource) RefreshOnDemand(now time.Time) state.Update {
	return n.refresh(now, false)
}

func (n *networkSource) refresh(now time.Time, observe bool) state.Update {
	u := state.Update{Category: state.Network, At: now}
	text, err := n.fetch(now, observe)
	n.log.observe(err)
	if err != nil {
		u.Err = err
		u.Fallback = networkFallback
		return u
	}
	u.Text = text
	return u
}

func (n *networkSource) fetch(now time.Time, observe bool) (string, error) {
	devs, err := n.bytes.FetchCounters()
	if err != nil {
		return "", err
	}

	iface := n.conf.NetworkInterface()
	var conn, vpn string
	if n.devices != nil {
		list, err := n.devices.Devices()
		n.devLog.observe(err)
		if err == nil {
			primary, v, ok := sources.ActiveConnection(list)
			if ok && iface == "" {
				iface = primary.Interface
			}
			if ok && primary.Interface == iface {
				conn = primary.Connection
			}
			vpn = v.Connection
			if vpn == "" {
				vpn = v.Interface
			}
		}
	}

	if iface == "" {
		d, ok := sources.FirstNonLoopback(devs)
		if !ok {
			return "", errors.Wrap(sources.ErrNotFound, "no network interface")
		}
		iface = d.Name
	}
	c, ok := sources.Lookup(devs, iface)
	if !ok {
		return "", errors.Wrapf(sources.ErrNotFound, "interface %s", iface)
	}

	if iface != n.iface {
		logrus.WithFields(logrus.Fields{
			"from": n.iface,
			"to":   iface,
		}).Debug("network interface changed")
		n.counter.Reset()
		n.iface = iface
		n.last = ratecounter.Sample{}
	}
	if observe {
		n.counter.MaxGap = n.conf.NetworkMaxGap()
		// The first sample of an interface is a baseline and shows as zero.
		n.last, _ = n.counter.Observe(c, now)
	}

	return networkText(conn, vpn, n.last), nil
}

// networkText renders e.g. "home-wifi rx: 12 kB/s tx: 3 kB/s [vpn: work]".
func networkText(conn, vpn string, s ratecounter.Sample) string {
	var b strings.Builder
	if conn != "" {
		b.WriteString(conn)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "rx: %.0f kB/s tx: %.0f kB/s", ratecounter.KB(s.Rx), ratecounter.KB(s.Tx))
	if vpn != "" {
		fmt.Fprintf(&b, " [vpn: %s]", vpn)
	}
	return b.String()
}

type volumeSource struct {
	conf    config.Config
	fetcher sources.VolumeFetcher
	log     *staleLog
}

func newVolumeSource(conf config.Config, fetcher sources.VolumeFetcher) *volumeSource {
	return &volumeSource{conf: conf, fetcher: fetcher, log: newStaleLog("volume")}
}

func (v *volumeSource) Name() string { return "volume" }

func (v *volumeSource) Refresh(now time.Time) state.Update {
	u := state.Update{Category: state.Volume, At: now}
	vol, err := v.fetcher.FetchVolume(v.conf.AudioCard(), v.conf.AudioControl())
	v.log.observe(err)
	if err != nil {
		u.Err = err
		u.Fallback = volumeFallback
		return u
	}
	u.Text = volumeText(vol)
	return u
}

func volumeText(v sources.Volume) string {
	if !v.On {
		return volumeOff
	}
	return fmt.Sprintf("Vol: %d%%", v.Percent)
}

type dateSource struct {
	conf  config.Config
	clock sources.Clock
}

func (d *dateSource) Name() string { return "date" }

func (d *dateSource) Refresh(now time.Time) state.Update {
	return state.Update{
		Category: state.Date,
		Text:     d.clock.Now().Format(d.conf.DateFormat()),
		At:       now,
	}
}

type batterySource struct {
	conf    config.Config
	fetcher sources.BatteryFetcher
	log     *staleLog
}

func newBatterySource(conf config.Config, fetcher sources.BatteryFetcher) *batterySource {
	return &batterySource{conf: conf, fetcher: fetcher, log: newStaleLog("battery")}
}

func (b *batterySource) Name() string { return "battery" }

func (b *batterySource) Refresh(now time.Time) state.Update {
	u := state.Update{Category: state.Battery, At: now}
	ids := b.conf.Batteries()
	c := powerinfo.Aggregate(ids, b.fetcher)

	var err error
	if c.Count == 0 {
		err = errors.Wrapf(sources.ErrNotFound, "no readable battery among %v", ids)
	}
	b.log.observe(err)
	if err != nil {
		u.Err = err
		u.Fallback = batteryFallback
		return u
	}

	logrus.WithFields(logrus.Fields{
		"batteries": c.Count,
		"status":    c.Status,
	}).Trace("batteries combined")
	u.Text = c.Text()
	return u
}
