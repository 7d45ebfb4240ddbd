package player

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeMPV speaks just enough of the mpv JSON-IPC protocol for the tests.
type fakeMPV struct {
	t        *testing.T
	ln       net.Listener
	socket   string
	mu       sync.Mutex
	commands [][]interface{}
	conns    []net.Conn
	observed chan string
	replies  map[string]interface{}
	failures map[string]string
	wg       sync.WaitGroup
}

func newFakeMPV(t *testing.T) *fakeMPV {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	socket := filepath.Join(dir, "s.sock")

	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeMPV{
		t:        t,
		ln:       ln,
		socket:   socket,
		observed: make(chan string, 16),
		replies:  map[string]interface{}{},
		failures: map[string]string{},
	}

	f.wg.Add(1)
	go f.accept()

	t.Cleanup(func() {
		f.close()
		_ = os.RemoveAll(dir)
	})
	return f
}

func (f *fakeMPV) accept() {
	defer f.wg.Done()
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()

		f.wg.Add(1)
		go f.serve(conn)
	}
}

func (f *fakeMPV) serve(conn net.Conn) {
	defer f.wg.Done()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			continue
		}

		name, _ := cmd.Command[0].(string)

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		data := f.replies[name]
		failure := f.failures[name]
		f.mu.Unlock()

		// mpv broadcasts events to every client; commands must skip them.
		_, _ = conn.Write([]byte(`{"event":"audio-reconfig"}` + "\n"))

		reply := map[string]interface{}{"request_id": cmd.RequestID, "error": "success", "data": data}
		if failure != "" {
			reply["error"] = failure
		}
		payload, _ := json.Marshal(reply)
		_, _ = conn.Write(append(payload, '\n'))

		if name == "observe_property" {
			f.observed <- cmd.Command[2].(string)
		}
	}
}

// push broadcasts a raw line to every open connection.
func (f *fakeMPV) push(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		_, _ = conn.Write([]byte(line + "\n"))
	}
}

func (f *fakeMPV) sent() [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]interface{}(nil), f.commands...)
}

func (f *fakeMPV) close() {
	_ = f.ln.Close()
	f.mu.Lock()
	for _, conn := range f.conns {
		_ = conn.Close()
	}
	f.mu.Unlock()
	f.wg.Wait()
}

// attach points an MPV at the fake socket as if it had started the process itself.
func (f *fakeMPV) attach(m *MPV) {
	m.procMu.Lock()
	defer m.procMu.Unlock()
	m.socketPath = f.socket
	m.exited = make(chan struct{})
}
