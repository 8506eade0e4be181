package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/wayfind-go/wayfind/pkg/router"
)

// Inspector streams navigation events to WebSocket clients and serves
// the route table over HTTP.
type Inspector struct {
	router *router.Router
	logger *slog.Logger

	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu    sync.Mutex
	conns map[*websocket.Conn]bool

	// writeMu serializes broadcasts; gorilla connections allow only
	// one concurrent writer.
	writeMu sync.Mutex

	removeHook func()
	closed     bool
}

// InspectorOption configures an Inspector.
type InspectorOption func(*Inspector)

// WithInspectorLogger sets the logger (default: slog.Default()).
func WithInspectorLogger(logger *slog.Logger) InspectorOption {
	return func(i *Inspector) { i.logger = logger }
}

// WithCheckOrigin sets the WebSocket origin check. The default accepts
// every origin, which is fine for a localhost debugging tool.
func WithCheckOrigin(check func(*http.Request) bool) InspectorOption {
	return func(i *Inspector) { i.upgrader.CheckOrigin = check }
}

// WithWriteTimeout sets the per-message write deadline (default: 5s).
func WithWriteTimeout(d time.Duration) InspectorOption {
	return func(i *Inspector) { i.writeTimeout = d }
}

// NewInspector attaches an inspector to r. Call Close to detach it and
// drop all client connections.
func NewInspector(r *router.Router, opts ...InspectorOption) *Inspector {
	i := &Inspector{
		router: r,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: 5 * time.Second,
		conns:        make(map[*websocket.Conn]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.removeHook = r.AfterEach(i.broadcast)
	return i
}

// Close detaches the inspector from the router and closes every client
// connection.
func (i *Inspector) Close() {
	i.removeHook()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	for conn := range i.conns {
		conn.Close()
	}
	i.conns = make(map[*websocket.Conn]bool)
}

// Handler returns the inspector's HTTP surface:
//
//	GET /events → WebSocket event stream
//	GET /routes → JSON route table
func (i *Inspector) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/events", i.handleEvents)
	mux.Get("/routes", i.handleRoutes)
	return mux
}

// eventPayload is the wire form of a navigation event.
type eventPayload struct {
	To           string  `json:"to"`
	From         string  `json:"from"`
	Outcome      string  `json:"outcome"`
	Error        string  `json:"error,omitempty"`
	Mode         string  `json:"mode"`
	DurationMS   float64 `json:"durationMs"`
	RedirectHops int     `json:"redirectHops"`
	Sequence     int64   `json:"sequence"`
}

// routePayload is the wire form of one route-table entry.
type routePayload struct {
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
	Name     string `json:"name,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Children int    `json:"children"`
}

func (i *Inspector) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.logger.Error("inspector upgrade failed", "error", err)
		return
	}

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		conn.Close()
		return
	}
	i.conns[conn] = true
	i.mu.Unlock()

	// Drain reads so close frames and pings are processed; clients
	// never send us data.
	go func() {
		defer i.dropConn(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					i.logger.Error("inspector read error", "error", err)
				}
				return
			}
		}
	}()
}

func (i *Inspector) handleRoutes(w http.ResponseWriter, r *http.Request) {
	records := i.router.GetRoutes()
	payload := make([]routePayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, routePayload{
			Path:     rec.Path,
			FullPath: rec.FullPath(),
			Name:     rec.Name,
			Redirect: rec.Redirect,
			Children: len(rec.Children),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		i.logger.Error("inspector routes encode failed", "error", err)
	}
}

// broadcast fans a finished navigation out to every connected client.
// Runs on the navigating goroutine, so writes are bounded by the write
// timeout and failed connections are dropped rather than retried.
func (i *Inspector) broadcast(evt router.Event) {
	payload := eventPayload{
		Outcome:      "committed",
		Mode:         evt.Mode,
		DurationMS:   float64(evt.Duration.Microseconds()) / 1000,
		RedirectHops: evt.RedirectHops,
		Sequence:     evt.Sequence,
	}
	if evt.To != nil {
		payload.To = evt.To.FullPath
	}
	if evt.From != nil {
		payload.From = evt.From.FullPath
	}
	if f := evt.Failure; f != nil {
		payload.Outcome = f.Kind.String()
		if f.Err != nil {
			payload.Error = f.Err.Error()
		}
	}

	msg, err := json.Marshal(payload)
	if err != nil {
		i.logger.Error("inspector event encode failed", "error", err)
		return
	}

	i.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(i.conns))
	for conn := range i.conns {
		conns = append(conns, conn)
	}
	i.mu.Unlock()

	i.writeMu.Lock()
	defer i.writeMu.Unlock()
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(i.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			i.logger.Error("inspector write failed", "error", err)
			i.dropConn(conn)
		}
	}
}

func (i *Inspector) dropConn(conn *websocket.Conn) {
	i.mu.Lock()
	delete(i.conns, conn)
	i.mu.Unlock()
	conn.Close()
}
