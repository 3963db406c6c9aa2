package source

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Source is one remote sender
type Source struct {
	Address   string
	FirstSeen time.Time

	lastSeen      atomic.Time
	packets       atomic.Uint64
	parseErrors   atomic.Uint64
	keyPresses    atomic.Uint64
	lastTimestamp atomic.Uint64
}

// Info is a point-in-time copy of a Source for monitoring
type Info struct {
	Address       string    `json:"address"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	Packets       uint64    `json:"packets"`
	ParseErrors   uint64    `json:"parse_errors"`
	KeyPresses    uint64    `json:"key_presses"`
	LastTimestamp uint64    `json:"last_bundle_timestamp,omitempty"`
}

// Observation describes the outcome of one datagram from a source
type Observation struct {
	ParseError bool
	KeyPresses int
	Timestamp  uint64 // bundle time tag, zero if none
}

// Record updates the source counters with one observation
func (s *Source) Record(now time.Time, o Observation) {
	s.lastSeen.Store(now)
	s.packets.Inc()
	if o.ParseError {
		s.parseErrors.Inc()
	}
	if o.KeyPresses > 0 {
		s.keyPresses.Add(uint64(o.KeyPresses))
	}
	if o.Timestamp != 0 {
		s.lastTimestamp.Store(o.Timestamp)
	}
}

// Info returns a snapshot of the source
func (s *Source) Info() Info {
	return Info{
		Address:       s.Address,
		FirstSeen:     s.FirstSeen,
		LastSeen:      s.lastSeen.Load(),
		Packets:       s.packets.Load(),
		ParseErrors:   s.parseErrors.Load(),
		KeyPresses:    s.keyPresses.Load(),
		LastTimestamp: s.lastTimestamp.Load(),
	}
}

// Tracker holds all sources seen within the timeout
type Tracker struct {
	sources map[string]*Source
	mu      sync.RWMutex
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	// Cleanup management
	ctx     context.Context
	cancel  context.CancelFunc
	cleanup chan struct{}
}

// NewTracker creates a tracker and starts its cleanup routine.
// The routine checks for expired sources every interval.
func NewTracker(logger *slog.Logger, timeout, interval time.Duration) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())

	t := &Tracker{
		sources: make(map[string]*Source),
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		cleanup: make(chan struct{}),
	}

	go t.startCleanupRoutine(interval)

	return t
}

// Record finds or creates the source for addr and applies o to it
func (t *Tracker) Record(addr string, o Observation) *Source {
	now := t.now()

	t.mu.RLock()
	src, exists := t.sources[addr]
	t.mu.RUnlock()

	if !exists {
		t.mu.Lock()
		if src, exists = t.sources[addr]; !exists {
			src = &Source{Address: addr, FirstSeen: now}
			t.sources[addr] = src
		}
		t.mu.Unlock()

		if !exists {
			t.logger.Info("New OSC source", slog.String("address", addr))
		}
	}

	src.Record(now, o)
	return src
}

// Get retrieves a source by address
func (t *Tracker) Get(addr string) (*Source, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	src, exists := t.sources[addr]
	return src, exists
}

// Count returns the number of tracked sources
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sources)
}

// Snapshot returns info for every source, ordered by address
func (t *Tracker) Snapshot() []Info {
	t.mu.RLock()
	infos := make([]Info, 0, len(t.sources))
	for _, src := range t.sources {
		infos = append(infos, src.Info())
	}
	t.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Address < infos[j].Address })
	return infos
}

// Remove drops a source
func (t *Tracker) Remove(addr string) bool {
	t.mu.Lock()
	src, exists := t.sources[addr]
	if exists {
		delete(t.sources, addr)
	}
	t.mu.Unlock()

	if !exists {
		return false
	}

	info := src.Info()
	t.logger.Info("OSC source removed",
		slog.String("address", addr),
		slog.Duration("active_for", info.LastSeen.Sub(info.FirstSeen)),
		slog.Uint64("packets", info.Packets),
		slog.Uint64("parse_errors", info.ParseErrors),
		slog.Uint64("key_presses", info.KeyPresses),
	)
	return true
}

// Stop terminates the cleanup routine
func (t *Tracker) Stop() {
	t.cancel()
	<-t.cleanup

	t.logger.Info("Source tracker stopped", slog.Int("remaining_sources", t.Count()))
}

func (t *Tracker) startCleanupRoutine(interval time.Duration) {
	defer close(t.cleanup)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.cleanupExpired()
		}
	}
}

// cleanupExpired removes sources silent for longer than the timeout
func (t *Tracker) cleanupExpired() int {
	now := t.now()
	expired := make([]string, 0)

	t.mu.RLock()
	for addr, src := range t.sources {
		if now.Sub(src.lastSeen.Load()) > t.timeout {
			expired = append(expired, addr)
		}
	}
	t.mu.RUnlock()

	for _, addr := range expired {
		t.Remove(addr)
	}
	return len(expired)
}
