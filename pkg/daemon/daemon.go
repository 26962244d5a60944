package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/composer"
	"github.com/statusbar/dwmstatus/pkg/config"
	"github.com/statusbar/dwmstatus/pkg/scheduler"
	"github.com/statusbar/dwmstatus/pkg/sink"
	"github.com/statusbar/dwmstatus/pkg/sources"
	"github.com/statusbar/dwmstatus/pkg/state"
)

// scheduleNames maps tick kinds to their schedule config keys.
var scheduleNames = map[scheduler.Kind]string{
	scheduler.NetworkTick: "network",
	scheduler.DateTick:    "date",
	scheduler.BatteryTick: "battery",
	scheduler.StatusTick:  "status",
}

// Deps are the adapters the daemon reads from and writes to.
type Deps struct {
	Sink     sink.Sink
	Battery  sources.BatteryFetcher
	NetBytes sources.NetBytesFetcher
	// Devices is optional.
	Devices sources.DeviceLister
	Volume  sources.VolumeFetcher
	Clock   sources.Clock

	closers []io.Closer
}

// Close releases the sink and any bus connections.
func (d *Deps) Close() {
	if d.Sink != nil {
		d.closers = append(d.closers, d.Sink)
	}
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close")
		}
	}
	d.closers = nil
}

// NewSources builds the source adapters selected by conf. The sink is
// left unset.
func NewSources(conf config.Config) *Deps {
	d := &Deps{
		Volume: sources.NewAmixer(),
		Clock:  sources.SystemClock{},
	}

	switch conf.BatteryBackend() {
	case config.BackendDistatus:
		d.Battery = sources.NewDistatus()
	default:
		d.Battery = sources.NewSysfs("")
	}

	switch conf.NetworkBackend() {
	case config.BackendGopsutil:
		d.NetBytes = sources.NewGopsutil()
	default:
		d.NetBytes = sources.NewProcNetDev("")
	}

	if conf.NetworkDevices() {
		nm, err := sources.NewNetworkManager()
		if err != nil {
			logrus.WithError(err).Warn("NetworkManager unavailable, connection names disabled")
		} else {
			d.Devices = nm
			d.closers = append(d.closers, nm)
		}
	}

	return d
}

// Daemon ties the sources, scheduler and composer together.
type Daemon struct {
	conf     config.Config
	deps     *Deps
	cache    *state.Cache
	composer *composer.Composer
	sched    *scheduler.Scheduler
	registry *prometheus.Registry
	metrics  *metrics
	sources  []scheduler.Source
	started  time.Time
}

// New wires a daemon. Only the scheduler goroutines started by Run touch
// the sources.
func New(conf config.Config, deps *Deps) (*Daemon, error) {
	d := &Daemon{
		conf:     conf,
		deps:     deps,
		cache:    state.NewCache(),
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}
	d.metrics = newMetrics(d.registry)
	d.composer = composer.New(deps.Sink, formatFrom(conf))
	d.sched = scheduler.New(d.cache, d.render,
		scheduler.WithRefreshOnStart(),
		scheduler.WithObserver(d.metrics),
	)

	interval, err := scheduler.Interval(conf.Schedule(scheduleNames[scheduler.NetworkTick]))
	if err != nil {
		return nil, err
	}

	register := func(kind scheduler.Kind, src scheduler.Source) {
		d.sched.Register(kind, src)
		d.sources = append(d.sources, src)
	}
	register(scheduler.NetworkTick, newNetworkSource(conf, deps.NetBytes, deps.Devices, interval))
	register(scheduler.DateTick, &dateSource{conf: conf, clock: deps.Clock})
	register(scheduler.BatteryTick, newBatterySource(conf, deps.Battery))
	register(scheduler.StatusTick, newVolumeSource(conf, deps.Volume))

	return d, nil
}

// formatFrom builds the line layout. Unknown category names are skipped;
// the config rejects them on load.
func formatFrom(conf config.Config) composer.Format {
	f := composer.Format{
		Separator: conf.FormatSeparator(),
		Padding:   conf.FormatPadding(),
	}
	for _, name := range conf.FormatOrder() {
		c, err := state.ParseCategory(name)
		if err != nil {
			logrus.WithError(err).Warn("skipping unknown category")
			continue
		}
		f.Order = append(f.Order, c)
	}
	return f
}

func (d *Daemon) render(snap state.Snapshot) {
	written, err := d.composer.Emit(snap)
	d.metrics.emitted(written, err)
	if err != nil {
		logrus.WithError(err).Error("failed to write status line")
	}
}

// Ticks builds the tick streams from the configured schedules.
func Ticks(ctx context.Context, conf config.Config) (map[scheduler.Kind]<-chan time.Time, error) {
	ticks := make(map[scheduler.Kind]<-chan time.Time, len(scheduleNames))
	for _, kind := range scheduler.Kinds {
		spec := conf.Schedule(scheduleNames[kind])
		ch, err := scheduler.CronTicker(ctx, spec)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "%s schedule", kind)
		}
		ticks[kind] = ch
	}
	return ticks, nil
}

// Run drives the scheduler until ctx is done.
func (d *Daemon) Run(ctx context.Context, ticks map[scheduler.Kind]<-chan time.Time) error {
	return d.sched.Run(ctx, ticks)
}

// Reload applies a changed configuration and refreshes every category.
// Sources read the config on every fetch; only the layout is cached.
func (d *Daemon) Reload() {
	d.composer.SetFormat(formatFrom(d.conf))
	d.sched.Refresh(scheduler.Kinds...)
}

// Once fetches every source a single time and composes the line without
// writing it anywhere.
func (d *Daemon) Once() string {
	now := d.deps.Clock.Now()
	updates := make([]state.Update, 0, len(d.sources))
	for _, src := range d.sources {
		updates = append(updates, src.Refresh(now))
	}
	d.cache.ApplyAll(updates)
	return formatFrom(d.conf).Compose(d.cache.Snapshot())
}

// Serve runs the daemon: it attaches to the display, serves the status API
// on the unix socket and updates the status line until SIGINT or SIGTERM.
// Failing to open the display is the only fatal error.
func Serve(ctx context.Context, conf *config.File) error {
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := NewSources(conf)
	defer deps.Close()

	var err error
	deps.Sink, err = sink.Open(conf.Console(), conf.Display())
	if err != nil {
		return pkgerrors.Wrap(err, "failed to open display")
	}

	d, err := New(conf, deps)
	if err != nil {
		return err
	}

	ticks, err := Ticks(ctx, conf)
	if err != nil {
		return err
	}

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		defer signal.Stop(sigc)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigc:
				if err := conf.Load(); err != nil {
					logrus.Errorf("failed to reload config: %v", err)
					continue
				}
				d.Reload()
				logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
			}
		}
	}()

	// The socket is bound once; reloads do not move it.
	socket := conf.Socket()
	srv := d.serveAPI(socket)

	err = d.Run(ctx, ticks)
	logrus.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("failed to shutdown http server: %v", err)
		}
		cancel()
		_ = os.Remove(socket)
	}

	logrus.Info("exiting")
	return err
}

// serveAPI starts the HTTP API. The status line works without it, so
// failures are logged and nil is returned.
func (d *Daemon) serveAPI(socketPath string) *http.Server {
	if socketPath == "" {
		return nil
	}

	// A socket left behind by a crashed daemon blocks Listen.
	if _, err := os.Stat(socketPath); err == nil {
		if conn, err := net.Dial("unix", socketPath); err == nil {
			conn.Close()
			logrus.Errorf("another daemon is listening on %s, http api disabled", socketPath)
			return nil
		}
		_ = os.Remove(socketPath)
	}

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		logrus.Errorf("failed to listen on %s, http api disabled: %v", socketPath, err)
		return nil
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		logrus.Warnf("failed to chmod %s: %v", socketPath, err)
	}

	srv := &http.Server{
		Handler:           d.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server stopped: %v", err)
		}
	}()
	return srv
}
