package player

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/video"
	"github.com/carekiosk/kiosk/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// ErrClosed is returned by backend commands issued after Close.
var ErrClosed = errors.New("playback backend closed")

// MPV drives a native mpv process over its JSON-IPC socket.
// Status snapshots are assembled from observed properties and emitted on a fixed interval.
type MPV struct {
	binary   string
	interval time.Duration

	mu sync.Mutex // serializes socket writes

	// state guards the process fields; Close can run while Load is still spawning.
	state      sync.Mutex
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	tickerStop chan struct{}
	events     *EventListener

	props     properties
	listeners listeners

	closeOnce sync.Once
	closed    chan struct{}
}

// NewMPV creates an mpv backend. Nothing is spawned until Load.
func NewMPV(binary string, interval time.Duration) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	return &MPV{
		binary:   binary,
		interval: interval,
		exited:   make(chan struct{}),
		closed:   make(chan struct{}),
		props:    properties{values: make(map[string]interface{})},
	}
}

// Load opens url paused. If mpv is already running the file replaces the current one.
func (m *MPV) Load(ctx context.Context, rawURL string, title string) error {
	if m.isClosed() {
		return ErrClosed
	}

	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if m.IsRunning(ctx) {
		m.props.reset()
		if _, err := m.sendCommand(ctx, "loadfile", safeURL, "replace"); err != nil {
			return fmt.Errorf("loadfile: %w", err)
		}
		_, err := m.sendCommand(ctx, "set_property", "pause", true)
		return err
	}

	if err := m.spawn(ctx, safeURL, sanitizeTitle(title)); err != nil {
		return err
	}

	events := NewEventListener(m.socket(), m.onEvent)
	if err := events.Start(); err != nil {
		return err
	}

	m.state.Lock()
	defer m.state.Unlock()
	if m.isClosed() {
		events.Stop()
		return ErrClosed
	}
	m.events = events
	m.startTicker()
	return nil
}

func (m *MPV) spawn(ctx context.Context, safeURL, safeTitle string) error {
	socketPath, err := m.ensureSocketPath()
	if err != nil {
		return err
	}

	// Respect the user's mpv.conf: only the socket, title and start state are forced.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--force-media-title=%s", safeTitle),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--pause",
		safeURL,
	}

	cmd := exec.Command(m.binary, args...)
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

	m.state.Lock()
	m.exited = exited
	if m.isClosed() {
		m.state.Unlock()
		_ = killProcess(cmd)
		return ErrClosed
	}
	m.cmd = cmd
	m.state.Unlock()

	if err := m.waitForSocket(ctx, socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

func (m *MPV) ensureSocketPath() (string, error) {
	m.state.Lock()
	defer m.state.Unlock()
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return "", fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))
	}
	return m.socketPath, nil
}

// socket returns the IPC socket path, empty before the first spawn.
func (m *MPV) socket() string {
	m.state.Lock()
	defer m.state.Unlock()
	return m.socketPath
}

// waitForSocket polls until the mpv IPC socket is accepting connections. Close aborts the wait.
func (m *MPV) waitForSocket(ctx context.Context, socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return ErrClosed
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// Play resumes playback.
func (m *MPV) Play(ctx context.Context) error {
	return m.set(ctx, "pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause(ctx context.Context) error {
	return m.set(ctx, "pause", true)
}

// Seek moves to an absolute position. mpv acknowledges once the seek is issued.
func (m *MPV) Seek(ctx context.Context, position time.Duration, resume bool) error {
	if m.isClosed() {
		return ErrClosed
	}
	if _, err := m.sendCommand(ctx, "seek", position.Seconds(), "absolute+exact"); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	m.props.set("eof-reached", false)
	if resume {
		return m.Play(ctx)
	}
	return nil
}

// SetFullscreen toggles mpv's native fullscreen presentation.
func (m *MPV) SetFullscreen(on bool) error {
	return m.set(context.Background(), "fullscreen", on)
}

// Status returns the snapshot built from the latest observed properties.
func (m *MPV) Status(context.Context) (video.Status, error) {
	if m.isClosed() {
		return video.Status{}, ErrClosed
	}
	return m.props.snapshot(), nil
}

// Subscribe registers l for snapshots and playback errors.
func (m *MPV) Subscribe(l Listener) (cancel func()) {
	return m.listeners.subscribe(l)
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning(ctx context.Context) bool {
	m.state.Lock()
	spawned := m.socketPath != "" && m.cmd != nil
	exited := m.exited
	m.state.Unlock()
	if !spawned {
		return false
	}

	select {
	case <-exited:
		return false
	default:
	}

	_, err := m.sendCommand(ctx, "get_property", "pid")
	return err == nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	m.state.Lock()
	defer m.state.Unlock()
	return m.exited
}

// startTicker emits a status snapshot every interval until Close or process exit. Callers hold m.state.
func (m *MPV) startTicker() {
	if m.tickerStop != nil {
		return
	}

	stop := make(chan struct{})
	exited := m.exited
	m.tickerStop = stop

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-exited:
				m.listeners.errors.Dispatch(errors.New("mpv exited"))
				return
			case <-ticker.C:
				m.listeners.status.Dispatch(m.props.tick())
			}
		}
	}()
}

// onEvent feeds the property cache and reports fatal end-of-file reasons.
func (m *MPV) onEvent(name string, data interface{}) {
	if name != "end-file" {
		m.props.set(name, data)
		return
	}

	event, _ := data.(map[string]interface{})
	if reason, _ := event["reason"].(string); reason == "error" {
		cause, _ := event["file_error"].(string)
		if cause == "" {
			cause = "unknown error"
		}
		m.listeners.errors.Dispatch(fmt.Errorf("mpv playback failed: %s", cause))
	}
}

// Close shuts down the mpv process and cleans up resources. It is safe to call more than once,
// also while Load is still spawning.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)

		m.state.Lock()
		if m.tickerStop != nil {
			close(m.tickerStop)
			m.tickerStop = nil
		}
		events, cmd, socketPath, exited := m.events, m.cmd, m.socketPath, m.exited
		m.state.Unlock()

		if events != nil {
			events.Stop()
		}
		if socketPath == "" || cmd == nil {
			return
		}

		// Try graceful quit via IPC
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, _ = m.sendCommand(ctx, "quit")
		cancel()

		select {
		case <-exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(cmd)
		}

		_ = os.Remove(socketPath)
	})
	return nil
}

func (m *MPV) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

func (m *MPV) set(ctx context.Context, property string, value interface{}) error {
	if m.isClosed() {
		return ErrClosed
	}
	_, err := m.sendCommand(ctx, "set_property", property, value)
	return err
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not look like flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens the title onto one line for mpv's window title.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
