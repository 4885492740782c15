package reporter

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/statslite/go-statslite/internal/identity"
)

// Interval is the default time between submissions. The collection
// server expects one report per installation per window.
const Interval = 15 * time.Minute

// SettingsStore loads the persisted opt-out flag and installation id.
type SettingsStore interface {
	Reload() (identity.Settings, error)
}

// Submitter performs one complete report exchange.
type Submitter interface {
	Submit(guid string, ping bool) error
}

// Scheduler arms a repeating invocation of the reporter. The returned
// cancel function must not block; an invocation already in flight may
// complete its current attempt.
type Scheduler interface {
	ScheduleRepeating(interval time.Duration, fn func()) (cancel func())
}

// Reporter owns the submission life cycle: it arms periodic reporting
// on Start, re-checks the persisted settings on every Run so a user
// can opt out mid-session, and disarms on Stop. A mutex guards the
// state transitions so Start/Stop may be called from the host's life
// cycle thread while Run fires on the scheduler's goroutine.
type Reporter struct {
	store    SettingsStore
	sub      Submitter
	sched    Scheduler
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	ping    bool
	warned  bool
	cancel  func()
}

// New creates a stopped reporter. An interval of zero or less selects
// the default Interval.
func New(store SettingsStore, sub Submitter, sched Scheduler, interval time.Duration, logger zerolog.Logger) *Reporter {
	if interval <= 0 {
		interval = Interval
	}
	return &Reporter{
		store:    store,
		sub:      sub,
		sched:    sched,
		interval: interval,
		log:      logger,
	}
}

// Start arms periodic submission and returns true. It returns false
// when the reporter is already running, when the persisted settings
// cannot be read, or when the user has opted out; opting out is
// expected and not logged as an error.
func (r *Reporter) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return false
	}

	settings, err := r.store.Reload()
	if err != nil {
		r.log.Warn().Err(err).Msg("cannot read telemetry settings")
		return false
	}
	if settings.OptOut {
		return false
	}

	r.running = true
	r.ping = false
	r.warned = false
	r.cancel = r.sched.ScheduleRepeating(r.interval, r.Run)
	r.log.Info().Dur("interval", r.interval).Msg("telemetry reporting started")
	return true
}

// Run performs one reporting cycle. It is invoked solely by the
// schedule armed in Start. A settings read failure now likely means it
// will keep failing, so reporting is disabled rather than retried; a
// failed submission is retried on the next naturally scheduled cycle.
func (r *Reporter) Run() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}

	settings, err := r.store.Reload()
	if err != nil {
		r.log.Warn().Err(err).Msg("cannot read telemetry settings, disabling reporting")
		r.stopLocked()
		r.mu.Unlock()
		return
	}
	if settings.OptOut {
		r.stopLocked()
		r.mu.Unlock()
		return
	}
	ping := r.ping
	r.mu.Unlock()

	// The exchange happens outside the lock so Stop stays responsive
	// while a submission is in flight.
	err = r.sub.Submit(settings.UniqueID, ping)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		// Log loudly once per failure episode, then stay quiet until a
		// submission goes through again.
		if r.warned {
			r.log.Debug().Err(err).Msg("failed to submit report")
		} else {
			r.warned = true
			r.log.Warn().Err(err).Msg("failed to submit report")
		}
		return
	}
	if r.running {
		r.ping = true
	}
	r.warned = false
}

// Stop disarms the schedule and returns true; it returns false when
// the reporter is already stopped.
func (r *Reporter) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return false
	}
	r.stopLocked()
	r.log.Info().Msg("telemetry reporting stopped")
	return true
}

// Running reports whether submission is currently armed.
func (r *Reporter) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reporter) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.running = false
	r.ping = false
	r.warned = false
}
