package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/videowall/videowall/log"
)

// Event kinds forwarded by the listener.
const (
	EventPropertyChange  = "property-change"
	EventFileLoaded      = "file-loaded"
	EventEndFile         = "end-file"
	EventPlaybackRestart = "playback-restart"
)

// Reasons mpv reports with end-file.
const (
	EndReasonEOF   = "eof"
	EndReasonStop  = "stop"
	EndReasonQuit  = "quit"
	EndReasonError = "error"
)

// ObservedProperties are subscribed to on every listener connection.
var ObservedProperties = []string{"time-pos", "pause", "duration", "eof-reached"}

// Event is a single notification received from mpv.
type Event struct {
	Kind string
	// Property and Data are set for property-change events.
	Property string
	Data     interface{}
	// Reason and FileError are set for end-file events.
	Reason    string
	FileError string
}

// EventCallback is the function signature for mpv event notifications.
type EventCallback func(Event)

// EventListener provides real-time mpv event monitoring via observe_property.
// Observers are bound to the connection that registered them, so registration
// and the read loop share a single connection.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		done:       make(chan struct{}),
	}
}

// Start subscribes to the observed properties and starts a dedicated read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range ObservedProperties {
		if err := writeCommand(conn, requestSeq.Add(1), []interface{}{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop(conn)

	log.Debugf("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop terminates the event listener and waits for its read loop to exit.
// No callback runs after Stop returns.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	conn := el.conn
	el.mu.Unlock()

	conn.Close()
	<-el.done
}

// Done is closed once the read loop has exited.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

// readLoop reads newline-delimited events until the connection is closed.
func (el *EventListener) readLoop(conn net.Conn) {
	defer close(el.done)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		event, ok := parseEvent(scanner.Bytes())
		if !ok || el.callback == nil {
			continue
		}
		el.callback(event)
	}

	el.mu.Lock()
	stopped := !el.listening
	el.listening = false
	el.mu.Unlock()

	if !stopped {
		log.Warnf("event listener on %s closed: %v", el.socketPath, scanner.Err())
	}
}

// parseEvent decodes a single line. Command replies and unknown events are ignored.
func parseEvent(line []byte) (Event, bool) {
	var raw struct {
		Event     string      `json:"event"`
		Name      string      `json:"name"`
		Data      interface{} `json:"data"`
		Reason    string      `json:"reason"`
		FileError string      `json:"file_error"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, false
	}

	switch raw.Event {
	case EventPropertyChange:
		if raw.Name == "" {
			return Event{}, false
		}
		return Event{Kind: raw.Event, Property: raw.Name, Data: raw.Data}, true
	case EventEndFile:
		return Event{Kind: raw.Event, Reason: raw.Reason, FileError: raw.FileError}, true
	case EventFileLoaded, EventPlaybackRestart:
		return Event{Kind: raw.Event}, true
	default:
		return Event{}, false
	}
}
