package host

import "sync/atomic"

// Adapter supplies the host-process facts included in every
// submission. One implementation is provided per host platform.
type Adapter interface {
	ProcessName() string
	ProcessVersion() string
	HostVersion() string
	ActiveUserCount() int
	AuthenticatedMode() bool
}

// Static is a config-driven Adapter with a settable user-count gauge,
// for hosts whose identity does not change at runtime.
type Static struct {
	Name     string
	Version  string
	Host     string
	AuthMode bool

	users int64
}

func (s *Static) ProcessName() string     { return s.Name }
func (s *Static) ProcessVersion() string  { return s.Version }
func (s *Static) HostVersion() string     { return s.Host }
func (s *Static) AuthenticatedMode() bool { return s.AuthMode }

func (s *Static) ActiveUserCount() int { return int(atomic.LoadInt64(&s.users)) }

// SetActiveUserCount updates the gauge reported on the next
// submission. Safe to call from any goroutine.
func (s *Static) SetActiveUserCount(n int) { atomic.StoreInt64(&s.users, int64(n)) }
