package wall

import (
	"fmt"

	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/log"
)

// CreatePlayer mounts the current video. It fails with ErrSessionActive while
// a session is live. A mount that fails synchronously is handled as a
// provider error after the retry delay.
func (r *Runtime) CreatePlayer() error {
	r.mu.Lock()
	defer r.unlock()
	return r.create(r.index)
}

// CleanupPlayer destroys the live session. It is safe to call repeatedly.
func (r *Runtime) CleanupPlayer() {
	r.mu.Lock()
	defer r.unlock()
	r.destroy()
}

// LoadNextVideo advances to the next video, wrapping at the end of the playlist.
func (r *Runtime) LoadNextVideo() error {
	r.mu.Lock()
	defer r.unlock()
	return r.advance()
}

// GoBackInHistory switches to the previously played video. It reports
// false and does nothing when the history is empty.
func (r *Runtime) GoBackInHistory() (bool, error) {
	r.mu.Lock()
	defer r.unlock()
	return r.retreat()
}

// AddToHistory records index as a position to go back to.
func (r *Runtime) AddToHistory(index int) error {
	r.mu.Lock()
	defer r.unlock()

	if err := r.checkIndex(index); err != nil {
		return err
	}
	r.history.Push(index)
	return nil
}

// LoadRandomVideo switches to a random video other than the current one.
func (r *Runtime) LoadRandomVideo() error {
	r.mu.Lock()
	defer r.unlock()

	if r.closed {
		return ErrClosed
	}

	next := r.index
	if n := r.videos.Len(); n > 1 {
		next = r.intn(n - 1)
		if next >= r.index {
			next++
		}
	}
	return r.switchTo(next, true, false)
}

// TogglePlayPause pauses or resumes the live embed.
func (r *Runtime) TogglePlayPause() error {
	r.mu.Lock()
	defer r.unlock()

	s := r.live()
	if s == nil || s.handle == nil {
		return ErrNoSession
	}
	return togglePause(s.handle)
}

// HandleVideoError feeds a provider error of the live session to the policy.
func (r *Runtime) HandleVideoError(err error) {
	r.mu.Lock()
	defer r.unlock()

	if s := r.live(); s != nil {
		r.fail(s, ProviderError, err)
	}
}

// HandleLoadTimeout feeds a load timeout of the live session to the policy.
func (r *Runtime) HandleLoadTimeout() {
	r.mu.Lock()
	defer r.unlock()

	if s := r.live(); s != nil {
		r.fail(s, LoadTimeout, ErrLoadTimeout)
	}
}

// StartWatchdog starts sampling the live session. It is a no-op if the
// watchdog already runs.
func (r *Runtime) StartWatchdog() {
	r.mu.Lock()
	defer r.unlock()

	if s := r.live(); s != nil {
		r.startWatchdog(s)
	}
}

// StopWatchdog stops sampling the live session.
func (r *Runtime) StopWatchdog() {
	r.mu.Lock()
	defer r.unlock()

	if s := r.live(); s != nil {
		s.stopWatchdog()
	}
}

// CheckVideoProgress takes one watchdog sample immediately.
func (r *Runtime) CheckVideoProgress() Verdict {
	r.mu.Lock()
	defer r.unlock()

	s := r.live()
	if s == nil {
		return VerdictIdle
	}
	return r.check(s)
}

// The methods below must be called with r.mu held.

func (r *Runtime) checkIndex(index int) error {
	if index < 0 || index >= r.videos.Len() {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, r.videos.Len())
	}
	return nil
}

func (r *Runtime) create(index int) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.checkIndex(index); err != nil {
		return err
	}
	if r.live() != nil {
		return ErrSessionActive
	}

	r.generation++
	gen := r.generation
	now := r.clock.Now()

	s := &Session{
		Video:                     r.videos.At(index),
		Index:                     index,
		Generation:                gen,
		MountedAt:                 now,
		LastProgressAt:            now,
		State:                     Creating,
		VideosPlayedSinceRecreate: r.playedSinceRecreate,
		watchdog:                  NewWatchdog(r.cfg.StallThreshold, r.cfg.MaxZeroTimeChecks),
	}
	r.session = s
	r.index = index
	r.stats.Created++

	logger := log.With(log.Fields{"index": index, "video": s.Video.String(), "generation": gen})

	handle, err := mount(r.adapter, s.Video, r.listener(gen))
	if err != nil {
		s.State = Errored
		r.stats.MountErrors++
		logger.Warnf("mount failed: %v", err)

		s.retryTimer = r.clock.AfterFunc(r.cfg.RetryDelay, func() { r.onMountFailure(gen, err) })
		r.queue(Notification{Kind: EventCreated})
		return nil
	}

	s.handle = handle
	s.loadTimer = r.clock.AfterFunc(r.cfg.VideoLoadTimeout, func() { r.onLoadTimeout(gen) })
	r.startWatchdog(s)

	logger.Info("session created")
	r.queue(Notification{Kind: EventCreated})
	return nil
}

func (r *Runtime) destroy() {
	s := r.live()
	if s == nil {
		return
	}

	s.stopTimers()
	if s.handle != nil {
		if err := unmount(r.adapter, s.handle); err != nil {
			log.Warnf("unmount %s: %v", s.Video, err)
		}
	}
	s.State = Destroyed
	r.stats.Destroyed++
	r.queue(Notification{Kind: EventDestroyed})
}

// switchTo replaces the session with one for index. Every switch counts
// towards the scheduled recreation, which runs after the old session is gone
// and before the new one is mounted.
func (r *Runtime) switchTo(index int, remember bool, forced bool) error {
	if r.closed {
		return ErrClosed
	}
	// before destroy: a bad index must keep the current session
	if err := r.checkIndex(index); err != nil {
		return err
	}

	if remember {
		r.history.Push(r.index)
	}
	r.destroy()

	r.playedSinceRecreate++
	switch {
	case forced:
		r.recreate(RecreationForced)
	case r.playedSinceRecreate >= r.cfg.MaxVideosBeforeRecreate:
		r.recreate(RecreationScheduled)
	}

	return r.create(index)
}

func (r *Runtime) advance() error {
	return r.switchTo(r.videos.Next(r.index), true, false)
}

func (r *Runtime) retreat() (bool, error) {
	if r.closed {
		return false, ErrClosed
	}

	for {
		index, ok := r.history.Pop()
		if !ok {
			return false, nil
		}
		if err := r.checkIndex(index); err != nil {
			log.Warnf("dropping history entry: %v", err)
			continue
		}
		return true, r.switchTo(index, false, false)
	}
}

// recreate must only run while no session is live.
func (r *Runtime) recreate(reason RecreationReason) {
	if err := recreate(r.adapter); err != nil {
		log.Warnf("recreate embed backend (%s): %v", reason, err)
	}

	log.With(log.Fields{"reason": reason.String(), "after": r.playedSinceRecreate}).Info("embed backend recreated")

	r.playedSinceRecreate = 0
	r.stats.Recreations++
	if reason == RecreationForced {
		r.stats.ForcedRecreations++
	}
	r.queue(Notification{Kind: EventRecreated, Reason: reason})
}

// fail applies the policy to a failure of s. Each session fails at most once.
func (r *Runtime) fail(s *Session, kind FailureKind, cause error) {
	if s.failed {
		return
	}
	s.failed = true

	if kind == Stall {
		s.State = Stalled
	} else {
		s.State = Errored
	}

	r.failures++
	r.countFailure(kind)

	failure := &Failure{Kind: kind, Index: s.Index, Generation: s.Generation, Err: cause}
	action := r.policy.Decide(kind, r.failures)

	log.With(log.Fields{
		"video":    s.Video.String(),
		"failures": r.failures,
		"action":   action.String(),
	}).Warn(failure.Error())

	r.queue(Notification{Kind: EventFailure, Failure: failure, Action: action})

	var err error
	switch action {
	case Retry:
		r.stats.Retries++
		r.destroy()
		err = r.create(s.Index)
	case Skip:
		r.stats.Skips++
		r.failures = 0
		err = r.switchTo(r.videos.Next(s.Index), true, true)
	}

	if err != nil {
		log.Errorf("handling %s: %v", failure, err)
	}
}

func (r *Runtime) listener(gen uint64) embed.Listener {
	return func(event embed.Event) {
		r.mu.Lock()
		defer r.unlock()

		s := r.current(gen)
		if s == nil {
			return
		}

		switch event.Kind {
		case embed.Ready:
			r.onReady(s)
		case embed.Ended:
			r.onEnded(s)
		case embed.Error:
			cause := event.Err
			if cause == nil {
				cause = fmt.Errorf("%s reported an error", s.Video)
			}
			r.fail(s, ProviderError, cause)
		}
	}
}

func (r *Runtime) onReady(s *Session) {
	if s.State != Creating {
		return
	}

	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}

	// READY is transient: embeds autoplay once loaded.
	now := r.clock.Now()
	s.State = Playing
	s.LastProgressAt = now
	s.watchdog.Reset(now)

	r.failures = 0
	r.stats.Playing++

	log.With(log.Fields{"video": s.Video.String(), "generation": s.Generation}).Info("playing")
	r.queue(Notification{Kind: EventPlaying})
}

func (r *Runtime) onEnded(s *Session) {
	if s.failed {
		return
	}

	s.State = Ended
	r.stats.Ended++
	r.queue(Notification{Kind: EventEnded})

	if err := r.advance(); err != nil {
		log.Errorf("advance after %s ended: %v", s.Video, err)
	}
}

func (r *Runtime) onLoadTimeout(gen uint64) {
	r.mu.Lock()
	defer r.unlock()

	s := r.current(gen)
	if s == nil || s.State != Creating {
		return
	}
	r.fail(s, LoadTimeout, ErrLoadTimeout)
}

func (r *Runtime) onMountFailure(gen uint64, cause error) {
	r.mu.Lock()
	defer r.unlock()

	s := r.current(gen)
	if s == nil {
		return
	}
	r.fail(s, ProviderError, cause)
}

func (r *Runtime) startWatchdog(s *Session) {
	if s.ticker != nil {
		return
	}

	gen := s.Generation
	s.ticker = newTicker(r.clock, r.cfg.WatchdogCheckInterval, func() { r.onTick(gen) })
}

func (r *Runtime) onTick(gen uint64) {
	r.mu.Lock()
	defer r.unlock()

	if s := r.current(gen); s != nil {
		r.check(s)
	}
}

// check samples a playing session and hands a stall to the policy.
func (r *Runtime) check(s *Session) Verdict {
	r.stats.WatchdogChecks++

	verdict := VerdictIdle
	if s.State == Playing && s.handle != nil {
		now := r.clock.Now()
		verdict = s.watchdog.Observe(status(s.handle), now)
		s.LastProgressAt = s.watchdog.LastProgressAt()
	}

	r.queue(Notification{Kind: EventChecked, Verdict: verdict})

	if verdict == VerdictStalled {
		r.fail(s, Stall, fmt.Errorf("%w: no progress since %s", ErrStalled, s.LastProgressAt.Format("15:04:05")))
	}
	return verdict
}
