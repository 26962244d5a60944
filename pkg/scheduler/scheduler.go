// Package scheduler merges several periodic tick streams into one loop that
// owns the composite state.
//
// Every source runs in its own worker, so a slow fetch only delays its own
// category. Workers hand their results back to the loop, which is the only
// writer of the state cache.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/state"
)

// maxBatch bounds how many ready events the loop collects per wake-up.
const maxBatch = 64

// Source produces the next value of one category.
type Source interface {
	Name() string
	// Refresh fetches the latest value. Failures are reported in the
	// update, never by panicking or blocking forever.
	Refresh(now time.Time) state.Update
}

// OnDemandSource is implemented by sources whose forced fetches differ
// from scheduled ones, e.g. a rate that is only valid at tick boundaries.
type OnDemandSource interface {
	Source
	RefreshOnDemand(now time.Time) state.Update
}

// RenderFunc is called with a consistent snapshot after a status tick.
type RenderFunc func(snap state.Snapshot)

// Observer is notified of worker activity.
type Observer interface {
	Fetched(kind Kind, source string, err error, took time.Duration)
	Coalesced(kind Kind, source string)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRefreshOnStart makes every source fetch once as soon as Run starts.
func WithRefreshOnStart() Option {
	return func(s *Scheduler) {
		s.refreshOnStart = true
	}
}

// WithObserver sets the observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

type trigger struct {
	at     time.Time
	forced bool
	// round is the render round the trigger belongs to, zero for none.
	round uint64
}

type result struct {
	kind   Kind
	update state.Update
	round  uint64
}

// round is a render waiting for the fetches dispatched with it.
type round struct {
	id          uint64
	outstanding int
}

type worker struct {
	kind    Kind
	src     Source
	pending chan trigger
}

// Scheduler runs registered sources on their tick streams and renders the
// composite state after status ticks and forced refreshes.
type Scheduler struct {
	cache  *state.Cache
	render RenderFunc

	now            func() time.Time
	observer       Observer
	refreshOnStart bool

	workers [numKinds][]*worker
	results chan result
	forceCh chan Kind

	// Owned by the Run loop.
	lastRound uint64
	open      *round

	mu      sync.Mutex
	running bool
}

// New returns a scheduler that applies updates to cache and calls render
// on status ticks.
func New(cache *state.Cache, render RenderFunc, opts ...Option) *Scheduler {
	if cache == nil {
		panic("cache cannot be nil")
	}
	s := &Scheduler{
		cache:    cache,
		render:   render,
		now:      time.Now,
		observer: nopObserver{},
		forceCh:  make(chan Kind, 2*int(numKinds)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds a source refreshed by ticks of the given kind. Sources
// must be registered before Run.
func (s *Scheduler) Register(kind Kind, src Source) {
	if kind < 0 || kind >= numKinds {
		panic("invalid tick kind")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[kind] = append(s.workers[kind], &worker{
		kind:    kind,
		src:     src,
		pending: make(chan trigger, 1),
	})
}

// Refresh asks the sources of the given kinds to fetch now. The line is
// rendered once all of them are applied. It never blocks; when the
// scheduler is not running the request is dropped.
func (s *Scheduler) Refresh(kinds ...Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	for _, k := range kinds {
		select {
		case s.forceCh <- k:
		default:
		}
	}
}

// Run dispatches ticks until ctx is done. A kind missing from ticks is
// only refreshed on demand.
func (s *Scheduler) Run(ctx context.Context, ticks map[Kind]<-chan time.Time) error {
	if len(ticks) == 0 {
		return ErrNoTicks
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	count := 0
	for _, ws := range s.workers {
		count += len(ws)
	}
	s.results = make(chan result, count+1)
	s.open = nil
	// Drop requests left over from a previous run.
	for len(s.forceCh) > 0 {
		<-s.forceCh
	}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logrus.Debug("scheduler stopped")
	}()

	for _, ws := range s.workers {
		for _, w := range ws {
			wg.Add(1)
			go func(w *worker) {
				defer wg.Done()
				s.runWorker(ctx, w)
			}(w)
		}
	}
	logrus.WithField("sources", count).Debug("scheduler started")

	if s.refreshOnStart {
		var b batch
		for _, k := range Kinds {
			b.forced[k] = true
		}
		s.process(b)
	}

	for {
		b, ok := s.wait(ctx, ticks)
		if !ok {
			return nil
		}
		s.drain(ticks, &b)
		s.process(b)
	}
}

// batch is everything that became ready within one wake-up.
type batch struct {
	ticks   [numKinds]time.Time
	forced  [numKinds]bool
	results []result
	events  int
}

func (b *batch) add(kind Kind, at time.Time) {
	b.ticks[kind] = at
	b.events++
}

// wait blocks for the next event.
func (s *Scheduler) wait(ctx context.Context, ticks map[Kind]<-chan time.Time) (batch, bool) {
	var b batch
	select {
	case <-ctx.Done():
		return b, false
	case t := <-ticks[NetworkTick]:
		b.add(NetworkTick, t)
	case t := <-ticks[DateTick]:
		b.add(DateTick, t)
	case t := <-ticks[BatteryTick]:
		b.add(BatteryTick, t)
	case t := <-ticks[StatusTick]:
		b.add(StatusTick, t)
	case r := <-s.results:
		b.results = append(b.results, r)
		b.events++
	case k := <-s.forceCh:
		b.forced[k] = true
		b.events++
	}
	return b, true
}

// drain collects whatever else is ready without blocking.
func (s *Scheduler) drain(ticks map[Kind]<-chan time.Time, b *batch) {
	for b.events < maxBatch {
		select {
		case t := <-ticks[NetworkTick]:
			b.add(NetworkTick, t)
		case t := <-ticks[DateTick]:
			b.add(DateTick, t)
		case t := <-ticks[BatteryTick]:
			b.add(BatteryTick, t)
		case t := <-ticks[StatusTick]:
			b.add(StatusTick, t)
		case r := <-s.results:
			b.results = append(b.results, r)
			b.events++
		case k := <-s.forceCh:
			b.forced[k] = true
			b.events++
		default:
			return
		}
	}
}

// process applies results, dispatches ticks and renders, in that order.
//
// A batch holding a status tick or a forced refresh opens a render round.
// The round renders once every fetch it dispatched has been applied, so
// the line shows the values those ticks asked for. A round still waiting
// when the next one opens is rendered as is, which bounds the delay a slow
// source can add to one status period.
func (s *Scheduler) process(b batch) {
	renderNow := false

	if len(b.results) > 0 {
		sort.SliceStable(b.results, func(i, j int) bool {
			return b.results[i].kind < b.results[j].kind
		})
		updates := make([]state.Update, 0, len(b.results))
		for _, r := range b.results {
			updates = append(updates, r.update)
			if s.open != nil && r.round == s.open.id {
				s.open.outstanding--
			}
		}
		s.cache.ApplyAll(updates)
		if s.open != nil && s.open.outstanding <= 0 {
			s.open = nil
			renderNow = true
		}
	}

	wantsRender := !b.ticks[StatusTick].IsZero()
	for _, k := range Kinds {
		wantsRender = wantsRender || b.forced[k]
	}

	var id uint64
	if wantsRender {
		if s.open != nil {
			logrus.WithField("outstanding", s.open.outstanding).Trace("render round superseded")
			s.open = nil
			renderNow = true
		}
		s.lastRound++
		id = s.lastRound
	}

	now := s.now()
	queued := 0
	for _, k := range Kinds {
		if b.forced[k] {
			queued += s.dispatch(k, trigger{at: now, forced: true, round: id})
		}
		if !b.ticks[k].IsZero() {
			logrus.WithField("kind", k).Trace("tick")
			queued += s.dispatch(k, trigger{at: b.ticks[k], round: id})
		}
	}

	if wantsRender {
		if queued == 0 {
			renderNow = true
		} else {
			s.open = &round{id: id, outstanding: queued}
		}
	}

	if renderNow && s.render != nil {
		s.render(s.cache.Snapshot())
	}
}

// dispatch hands a trigger to every worker of kind k and returns how many
// took it. A worker that already has a pending trigger keeps it and the
// new one is dropped.
func (s *Scheduler) dispatch(k Kind, tr trigger) int {
	queued := 0
	for _, w := range s.workers[k] {
		select {
		case w.pending <- tr:
			queued++
		default:
			logrus.WithFields(logrus.Fields{
				"kind":   k,
				"source": w.src.Name(),
			}).Debug("source busy, tick coalesced")
			s.observer.Coalesced(k, w.src.Name())
		}
	}
	return queued
}

func (s *Scheduler) runWorker(ctx context.Context, w *worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case tr := <-w.pending:
			start := time.Now()
			var u state.Update
			if od, ok := w.src.(OnDemandSource); ok && tr.forced {
				u = od.RefreshOnDemand(tr.at)
			} else {
				u = w.src.Refresh(tr.at)
			}
			s.observer.Fetched(w.kind, w.src.Name(), u.Err, time.Since(start))

			select {
			case s.results <- result{kind: w.kind, update: u, round: tr.round}:
			case <-ctx.Done():
				return
			}
		}
	}
}

type nopObserver struct{}

func (nopObserver) Fetched(Kind, string, error, time.Duration) {}
func (nopObserver) Coalesced(Kind, string)                     {}
