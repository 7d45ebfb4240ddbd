package embed

import (
	"fmt"
	"sync"

	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/player"
	"github.com/videowall/videowall/playlist"
)

const opQueueSize = 64

// MPVOptions configures the mpv adapter.
type MPVOptions struct {
	Player     player.Options
	YtdlFormat string
}

// MPV mounts videos into a long-lived mpv process.
// All process operations run in order on a single worker goroutine, so
// Mount and Unmount never wait on IPC. Recreate quits the process; the
// next mount starts a fresh one.
type MPV struct {
	opts      MPVOptions
	newPlayer func() player.Player

	mu     sync.Mutex
	active *mpvHandle
	closed bool

	ops  chan func()
	done chan struct{}

	// owned by the worker goroutine
	proc player.Player
}

// NewMPV returns an adapter. The mpv process is started by the first Mount.
func NewMPV(opts MPVOptions) *MPV {
	return newMPV(opts, func() player.Player { return player.NewMPV(opts.Player) })
}

func newMPV(opts MPVOptions, newPlayer func() player.Player) *MPV {
	a := &MPV{
		opts:      opts,
		newPlayer: newPlayer,
		ops:       make(chan func(), opQueueSize),
		done:      make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *MPV) run() {
	defer close(a.done)
	for op := range a.ops {
		a.do(op)
	}
}

func (a *MPV) do(op func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("mpv adapter: %v", recovered(r))
		}
	}()
	op()
}

func (a *MPV) Mount(video playlist.Video, listener Listener) (Handle, error) {
	source, err := SourceFor(video.Provider)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	if a.active != nil {
		return nil, ErrHandleMounted
	}

	h := &mpvHandle{adapter: a, video: video, listener: listener}
	a.active = h
	a.ops <- func() { a.load(h, source) }

	return h, nil
}

func (a *MPV) Unmount(handle Handle) error {
	h, ok := handle.(*mpvHandle)
	if !ok || h == nil {
		return fmt.Errorf("embed: foreign handle %T", handle)
	}
	if !h.markClosed() {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == h {
		a.active = nil
	}
	if a.closed {
		return nil
	}
	a.ops <- func() { a.unload(h) }
	return nil
}

func (a *MPV) Recreate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.active != nil {
		return ErrHandleMounted
	}
	a.ops <- a.quit
	return nil
}

// Close unmounts the active handle, quits mpv and stops the worker.
func (a *MPV) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	h := a.active
	a.active = nil
	a.ops <- func() {
		if h != nil {
			a.unload(h)
		}
		a.quit()
	}
	close(a.ops)
	a.mu.Unlock()

	if h != nil {
		h.markClosed()
	}
	<-a.done
	return nil
}

// ensureProcess starts mpv unless a live process exists.
func (a *MPV) ensureProcess() error {
	if a.proc != nil {
		select {
		case <-a.proc.Wait():
			log.Warn("mpv exited unexpectedly, restarting")
			a.proc = nil
		default:
			return nil
		}
	}

	proc := a.newPlayer()
	if err := proc.Start(); err != nil {
		return err
	}
	a.proc = proc
	go a.watch(proc)
	return nil
}

// watch reports a crash to the handle mounted on proc.
func (a *MPV) watch(proc player.Player) {
	<-proc.Wait()

	a.mu.Lock()
	h := a.active
	a.mu.Unlock()

	if h != nil && h.runsOn(proc) {
		h.fail(ErrProcessExited)
	}
}

func (a *MPV) load(h *mpvHandle, source Source) {
	if h.isClosed() {
		return
	}

	if err := a.ensureProcess(); err != nil {
		h.fail(fmt.Errorf("%w: %v", ErrLoadFailed, err))
		return
	}
	h.attach(a.proc)

	sub, err := a.proc.Listen(h.onEvent)
	if err != nil {
		h.fail(fmt.Errorf("%w: %v", ErrLoadFailed, err))
		return
	}
	h.sub = sub

	target := source.URL(h.video.ID)
	log.With(log.Fields{"video": h.video.String(), "url": target}).Info("loading video")

	if err := a.proc.Load(target, h.video.Label(), source.Properties(a.opts.YtdlFormat)); err != nil {
		h.fail(fmt.Errorf("%w: %v", ErrLoadFailed, err))
	}
}

func (a *MPV) unload(h *mpvHandle) {
	if h.sub != nil {
		h.sub.Stop()
		h.sub = nil
	}

	if !h.runsOn(a.proc) {
		return
	}
	if err := a.proc.Stop(); err != nil {
		log.Warnf("mpv stop %s: %v", h.video, err)
	}
}

func (a *MPV) quit() {
	if a.proc == nil {
		return
	}
	if err := a.proc.Close(); err != nil {
		log.Warnf("mpv close: %v", err)
	}
	a.proc = nil
}

type mpvHandle struct {
	adapter  *MPV
	video    playlist.Video
	listener Listener

	// owned by the worker goroutine
	sub player.Subscription

	mu       sync.Mutex
	proc     player.Player
	status   Status
	closed   bool
	finished bool
}

func (h *mpvHandle) Video() playlist.Video { return h.video }

func (h *mpvHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *mpvHandle) TogglePause() error {
	if h.isClosed() {
		return ErrClosed
	}

	a := h.adapter
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	a.ops <- func() {
		if h.isClosed() || !h.runsOn(a.proc) {
			return
		}
		if err := a.proc.TogglePause(); err != nil {
			log.Warnf("mpv toggle pause: %v", err)
		}
	}
	return nil
}

func (h *mpvHandle) attach(proc player.Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proc = proc
}

func (h *mpvHandle) runsOn(proc player.Player) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return proc != nil && h.proc == proc
}

func (h *mpvHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// markClosed reports whether the handle was open.
func (h *mpvHandle) markClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.closed = true
	h.status.Playing = false
	return true
}

func (h *mpvHandle) fail(err error) {
	h.emit(func(*Status) (Event, bool) {
		return Event{Kind: Error, Err: err}, true
	})
}

// emit applies update to the cached status and forwards the resulting event.
// Nothing is forwarded after the handle is closed or has finished.
func (h *mpvHandle) emit(update func(*Status) (Event, bool)) {
	h.mu.Lock()
	if h.closed || h.finished {
		h.mu.Unlock()
		return
	}
	event, ok := update(&h.status)
	if ok && event.Kind != Ready {
		h.finished = true
		h.status.Playing = false
	}
	h.mu.Unlock()

	if ok && h.listener != nil {
		h.listener(event)
	}
}

func (h *mpvHandle) onEvent(e player.Event) {
	h.emit(func(s *Status) (Event, bool) {
		return translate(s, e)
	})
}

// translate folds an mpv event into status and maps it to an adapter event.
func translate(s *Status, e player.Event) (Event, bool) {
	switch e.Kind {
	case player.EventPropertyChange:
		switch e.Property {
		case "time-pos":
			s.CurrentTime, _ = e.Data.(float64)
		case "duration":
			s.Duration, _ = e.Data.(float64)
		case "pause":
			s.Paused, _ = e.Data.(bool)
		case "eof-reached":
			if eof, _ := e.Data.(bool); eof {
				s.Playing = false
				return Event{}, false
			}
		}
		s.Playing = s.Ready && !s.Paused
		return Event{}, false

	case player.EventFileLoaded:
		if s.Ready {
			return Event{}, false
		}
		s.Ready = true
		s.Playing = !s.Paused
		return Event{Kind: Ready}, true

	case player.EventEndFile:
		switch e.Reason {
		case player.EndReasonEOF:
			return Event{Kind: Ended}, true
		case player.EndReasonError:
			return Event{Kind: Error, Err: fmt.Errorf("%w: %s", ErrLoadFailed, e.FileError)}, true
		}
	}

	return Event{}, false
}
