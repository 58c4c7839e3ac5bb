package practice

import "time"

// Ticker delivers countdown ticks. It mirrors the parts of time.Ticker the
// session needs so tests can drive the clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// countdown is one running timer. The session holds a pointer to the current
// countdown; a tick is applied only while that pointer still matches.
type countdown struct {
	stop chan struct{}
}

func (s *Session) startCountdownLocked() {
	c := &countdown{stop: make(chan struct{})}
	s.timer = c
	go s.runCountdown(c, s.newTicker(time.Second))
}

func (s *Session) stopCountdownLocked() {
	if s.timer == nil {
		return
	}
	close(s.timer.stop)
	s.timer = nil
}

func (s *Session) runCountdown(c *countdown, t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C():
			if !s.countdownTick(c) {
				return
			}
		}
	}
}

// countdownTick applies one timer tick and reports whether the countdown is
// still the active one.
func (s *Session) countdownTick(c *countdown) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != c {
		return false
	}
	_ = s.tickLocked()
	return s.timer == c
}
