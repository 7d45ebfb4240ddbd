// Package player drives an external mpv process through its JSON-IPC interface.
// A single long-lived process plays one file at a time; files are swapped in
// and out over IPC and the process itself is only restarted on demand.
package player

// Player encapsulates the capabilities the embed layer needs from a media backend process.
type Player interface {
	// Start launches the backend process and waits until its IPC channel accepts connections.
	Start() error

	// Load replaces the current file with target after applying the given properties.
	Load(target string, title string, properties map[string]string) error

	// Stop unloads the current file while keeping the process alive.
	Stop() error

	// TogglePause inverts the current playback suspension state.
	TogglePause() error

	// Listen subscribes to property changes and playback events.
	Listen(callback EventCallback) (Subscription, error)

	// IsRunning validates the liveness of the underlying playback process.
	IsRunning() bool

	// Pid returns the process id, or 0 when no process is running.
	Pid() int

	// Close terminates the process and releases all associated system resources.
	Close() error

	// Wait returns a channel that is closed when the process terminates.
	Wait() <-chan struct{}
}

// Subscription is an active event subscription.
type Subscription interface {
	// Stop ends the subscription. No callback runs after it returns.
	Stop()
}
