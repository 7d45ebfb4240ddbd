package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/videowall/videowall/log"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitGracePeriod   = 3 * time.Second
)

// ErrNotRunning is returned by IPC operations when no mpv process is alive.
var ErrNotRunning = errors.New("mpv is not running")

// Options configures how the mpv process is launched.
type Options struct {
	// Binary is the mpv executable, resolved through PATH.
	Binary string
	// SocketDir holds the IPC socket.
	SocketDir string
	Fullscreen bool
	// ExtraArgs are appended verbatim before the process starts.
	ExtraArgs []string
}

// MPV implements the Player interface using mpv's JSON-IPC protocol.
type MPV struct {
	opts       Options
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	mu         sync.Mutex    // Protects socket writes
	procMu     sync.Mutex    // Protects cmd / exited / socketPath
}

// NewMPV creates a new MPV player instance (does not start the process).
func NewMPV(opts Options) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.SocketDir == "" {
		opts.SocketDir = os.TempDir()
	}

	exited := make(chan struct{})
	close(exited)

	return &MPV{opts: opts, exited: exited}
}

// buildArgs assembles the command line of an idle mpv instance controlled over IPC.
func buildArgs(opts Options, socketPath string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=no",
		"--ytdl=yes",
	}

	if opts.Fullscreen {
		args = append(args, "--fullscreen")
	}

	return append(args, opts.ExtraArgs...)
}

// Start launches an idle mpv process and waits for its IPC socket.
func (m *MPV) Start() error {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	select {
	case <-m.exited:
	default:
		return nil
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(m.opts.SocketDir, fmt.Sprintf("mpv-%x.sock", randomBytes))

	cmd := exec.Command(m.opts.Binary, buildArgs(m.opts, socketPath)...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	m.cmd = cmd
	m.exited = exited
	m.socketPath = socketPath

	if err := waitForSocket(socketPath, exited); err != nil {
		log.Warnf("killing mpv: socket never became ready")
		_ = killProcess(cmd)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.With(log.Fields{"pid": cmd.Process.Pid, "socket": socketPath}).Info("mpv started")
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// Load applies the given properties and replaces the current file with target.
func (m *MPV) Load(target string, title string, properties map[string]string) error {
	safeTarget, err := sanitizeMediaTarget(target)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	props := map[string]string{"force-media-title": sanitizeTitle(title)}
	for k, v := range properties {
		props[k] = v
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.Set(name, props[name]); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}

	_, err = m.sendCommand([]interface{}{"loadfile", safeTarget, "replace"})
	return err
}

// Stop unloads the current file; the process stays idle.
func (m *MPV) Stop() error {
	_, err := m.sendCommand([]interface{}{"stop"})
	return err
}

// TogglePause toggles the pause state.
func (m *MPV) TogglePause() error {
	_, err := m.sendCommand([]interface{}{"cycle", "pause"})
	return err
}

// Set a property.
func (m *MPV) Set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// Listen subscribes a new event listener to the running process.
func (m *MPV) Listen(callback EventCallback) (Subscription, error) {
	socket := m.Socket()
	if socket == "" || !m.alive() {
		return nil, ErrNotRunning
	}

	el := NewEventListener(socket, callback)
	if err := el.Start(); err != nil {
		return nil, err
	}
	return el, nil
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if !m.alive() {
		return false
	}
	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

func (m *MPV) alive() bool {
	select {
	case <-m.Wait():
		return false
	default:
		return true
	}
}

// Pid returns the process id of the running mpv, or 0.
func (m *MPV) Pid() int {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.cmd == nil || m.cmd.Process == nil {
		return 0
	}
	select {
	case <-m.exited:
		return 0
	default:
		return m.cmd.Process.Pid
	}
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	m.procMu.Lock()
	defer m.procMu.Unlock()
	return m.exited
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	m.procMu.Lock()
	defer m.procMu.Unlock()
	return m.socketPath
}

// Close shuts down the mpv process and cleans up resources. It is safe to call repeatedly.
func (m *MPV) Close() error {
	if !m.alive() {
		return nil
	}

	_, _ = m.sendCommand([]interface{}{"quit"})

	m.procMu.Lock()
	cmd, exited, socket := m.cmd, m.exited, m.socketPath
	m.procMu.Unlock()

	select {
	case <-exited:
	case <-time.After(quitGracePeriod):
		_ = killProcess(cmd)
		<-exited
	}

	_ = os.Remove(socket)
	log.Infof("mpv stopped (socket %s)", socket)
	return nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	if strings.ContainsAny(link, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}

	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", errors.New("url must not start with '-' (looks like a flag)")
	}

	u, err := url.Parse(l)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l, nil
	default:
		return "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
