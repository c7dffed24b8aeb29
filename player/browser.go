package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/video"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// errPageGone fails commands whose page disconnected before acknowledging them.
var errPageGone = errors.New("browser page disconnected")

// eventBuffer is how many page events can queue behind a slow subscriber before the read loop blocks.
const eventBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  readBufSize,
	WriteBufferSize: readBufSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// outbound is a command sent to the page.
type outbound struct {
	Type       string `json:"type"`
	Seq        uint64 `json:"seq"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	PositionMs int64  `json:"positionMs,omitempty"`
	Resume     bool   `json:"resume,omitempty"`
	Hidden     bool   `json:"hidden,omitempty"`
}

// inbound is an acknowledgement, status snapshot or error sent by the page.
type inbound struct {
	Type       string  `json:"type"`
	Seq        uint64  `json:"seq"`
	Error      string  `json:"error"`
	Message    string  `json:"message"`
	PositionMs float64 `json:"positionMs"`
	DurationMs float64 `json:"durationMs"`
	Playing    bool    `json:"playing"`
	Buffering  bool    `json:"buffering"`
	Ended      bool    `json:"ended"`
	Loaded     bool    `json:"loaded"`
	Volume     float64 `json:"volume"`
}

// pageEvent is a status snapshot or a playback error waiting for dispatch.
type pageEvent struct {
	status video.Status
	err    error
}

// Browser drives an HTML5 video element in a kiosk browser page.
// The page connects over a websocket, executes commands, acknowledges them and streams status snapshots.
// Exactly one page owns the handle at a time; further connections are refused.
type Browser struct {
	addr   string
	router chi.Router

	startOnce sync.Once
	startErr  error
	server    *http.Server

	mu        sync.Mutex
	conn      *websocket.Conn
	connected chan struct{}
	seq       uint64
	pending   map[uint64]chan error
	last      video.Status
	lastEnded bool

	writeMu sync.Mutex

	listeners listeners

	closeOnce sync.Once
	closed    chan struct{}
}

// NewBrowser creates a browser backend. With a non-empty addr, Load starts an HTTP server there;
// otherwise the caller serves Handler itself.
func NewBrowser(addr string) *Browser {
	b := &Browser{
		addr:      addr,
		connected: make(chan struct{}),
		pending:   make(map[uint64]chan error),
		closed:    make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Get("/", b.servePage)
	r.Get("/ws", b.serveWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	b.router = r

	return b
}

// Handler returns the page, websocket and health routes.
func (b *Browser) Handler() http.Handler {
	return b.router
}

// Router exposes the router so callers can mount extra endpoints, such as metrics, next to the page.
func (b *Browser) Router() chi.Router {
	return b.router
}

// Listen starts the HTTP server early, so a page can attach before the first Load.
func (b *Browser) Listen() error {
	return b.listen()
}

func (b *Browser) listen() error {
	b.startOnce.Do(func() {
		if b.addr == "" {
			return
		}
		ln, err := net.Listen("tcp", b.addr)
		if err != nil {
			b.startErr = fmt.Errorf("browser backend listen: %w", err)
			return
		}
		b.server = &http.Server{Handler: b.router, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := b.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("browser backend server: %v", err)
			}
		}()
		log.Infof("browser backend listening on http://%s", ln.Addr())
	})
	return b.startErr
}

// Load waits for the page to attach and asks it to open url paused.
func (b *Browser) Load(ctx context.Context, url, title string) error {
	if err := b.listen(); err != nil {
		return err
	}

	b.mu.Lock()
	connected := b.connected
	b.last = video.Status{Volume: 1}
	b.lastEnded = false
	b.mu.Unlock()

	select {
	case <-connected:
	case <-ctx.Done():
		return fmt.Errorf("waiting for browser page: %w", ctx.Err())
	case <-b.closed:
		return ErrClosed
	}

	return b.send(ctx, outbound{Type: "load", URL: url, Title: title})
}

// Play resumes playback.
func (b *Browser) Play(ctx context.Context) error {
	return b.send(ctx, outbound{Type: "play"})
}

// Pause suspends playback.
func (b *Browser) Pause(ctx context.Context) error {
	return b.send(ctx, outbound{Type: "pause"})
}

// Seek sets the element's currentTime; the page acknowledges on its "seeked" event.
func (b *Browser) Seek(ctx context.Context, position time.Duration, resume bool) error {
	return b.send(ctx, outbound{Type: "seek", PositionMs: position.Milliseconds(), Resume: resume})
}

// SetChromeHidden asks the page to strip or restore its surrounding chrome.
// It does not wait for the acknowledgement: it runs from status subscribers, which the page's acks queue behind.
func (b *Browser) SetChromeHidden(hidden bool) error {
	return b.post(outbound{Type: "chrome", Hidden: hidden})
}

// Status returns the last snapshot the page reported.
func (b *Browser) Status(context.Context) (video.Status, error) {
	select {
	case <-b.closed:
		return video.Status{}, ErrClosed
	default:
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, nil
}

// Subscribe registers l for snapshots and playback errors.
func (b *Browser) Subscribe(l Listener) (cancel func()) {
	return b.listeners.subscribe(l)
}

// Close disconnects the page and stops the server. It is safe to call more than once.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		close(b.closed)

		b.mu.Lock()
		conn := b.conn
		b.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}

		if b.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			_ = b.server.Shutdown(ctx)
			cancel()
		}
	})
	return nil
}

// send writes a command and suspends until the page acknowledges it.
func (b *Browser) send(ctx context.Context, msg outbound) error {
	select {
	case <-b.closed:
		return ErrClosed
	default:
	}

	b.mu.Lock()
	conn := b.conn
	if conn == nil {
		b.mu.Unlock()
		return errPageGone
	}
	b.seq++
	msg.Seq = b.seq
	ack := make(chan error, 1)
	b.pending[msg.Seq] = ack
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, msg.Seq)
		b.mu.Unlock()
	}()

	b.writeMu.Lock()
	err := conn.WriteJSON(msg)
	b.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}

	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closed:
		return ErrClosed
	}
}

// post writes a command without registering for its acknowledgement.
func (b *Browser) post(msg outbound) error {
	select {
	case <-b.closed:
		return ErrClosed
	default:
	}

	b.mu.Lock()
	conn := b.conn
	if conn == nil {
		b.mu.Unlock()
		return errPageGone
	}
	b.seq++
	msg.Seq = b.seq
	b.mu.Unlock()

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

func (b *Browser) servePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(pageHTML))
}

func (b *Browser) serveWS(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	busy := b.conn != nil
	b.mu.Unlock()
	if busy {
		http.Error(w, "playback handle already owned by another page", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("browser backend upgrade: %v", err)
		return
	}

	b.mu.Lock()
	if b.conn != nil {
		b.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "handle owned"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	b.conn = conn
	close(b.connected)
	b.mu.Unlock()

	log.Infof("browser page attached from %s", r.RemoteAddr)

	events := make(chan pageEvent, eventBuffer)
	go b.dispatch(events)
	b.readLoop(conn, events)
}

// dispatch delivers page events to subscribers in arrival order.
// Subscribers may issue commands; their acks are read by readLoop meanwhile.
func (b *Browser) dispatch(events <-chan pageEvent) {
	for ev := range events {
		if ev.err != nil {
			b.listeners.errors.Dispatch(ev.err)
			continue
		}
		b.listeners.status.Dispatch(ev.status)
	}
}

// readLoop consumes page messages until the connection drops, then releases the handle for the next page.
// It resolves acks itself and hands everything else to dispatch.
func (b *Browser) readLoop(conn *websocket.Conn, events chan<- pageEvent) {
	defer func() {
		close(events)
		_ = conn.Close()

		b.mu.Lock()
		b.conn = nil
		b.connected = make(chan struct{})
		for seq, ack := range b.pending {
			resolve(ack, errPageGone)
			delete(b.pending, seq)
		}
		b.mu.Unlock()
	}()

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-b.closed:
			default:
				log.Warnf("browser page detached: %v", err)
			}
			return
		}

		switch msg.Type {
		case "ack":
			b.mu.Lock()
			ack, ok := b.pending[msg.Seq]
			b.mu.Unlock()
			if !ok {
				continue
			}
			if msg.Error != "" {
				resolve(ack, fmt.Errorf("browser: %s", msg.Error))
			} else {
				resolve(ack, nil)
			}
		case "status":
			if !b.handOff(events, pageEvent{status: b.record(msg)}) {
				return
			}
		case "error":
			if !b.handOff(events, pageEvent{err: fmt.Errorf("browser playback failed: %s", msg.Message)}) {
				return
			}
		}
	}
}

// handOff queues ev for dispatch. It reports false once the handle is closed.
func (b *Browser) handOff(events chan<- pageEvent, ev pageEvent) bool {
	select {
	case events <- ev:
		return true
	case <-b.closed:
		return false
	}
}

// resolve completes a pending command once; later results for the same command are dropped.
func resolve(ack chan error, err error) {
	select {
	case ack <- err:
	default:
	}
}

// record stores the snapshot and derives the end-of-media edge.
func (b *Browser) record(msg inbound) video.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := video.Status{
		Position:      time.Duration(msg.PositionMs * float64(time.Millisecond)),
		Duration:      time.Duration(msg.DurationMs * float64(time.Millisecond)),
		IsPlaying:     msg.Playing && !msg.Ended,
		IsBuffering:   msg.Buffering,
		IsLoaded:      msg.Loaded,
		DidJustFinish: msg.Ended && !b.lastEnded,
		Volume:        msg.Volume,
	}
	b.lastEnded = msg.Ended
	b.last = st
	b.last.DidJustFinish = false
	return st
}
