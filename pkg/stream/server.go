package stream

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/host/memhost"
	vfmw "github.com/vango-dev/vfiber/pkg/middleware"
	"github.com/vango-dev/vfiber/pkg/protocol"
	"github.com/vango-dev/vfiber/pkg/render"
	"github.com/vango-dev/vfiber/pkg/vdom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address for Run (default "localhost:3000").
	Address string

	// Title is the page title.
	Title string

	// SubscriberBuffer is the number of frames a websocket subscriber may
	// lag behind before it is disconnected.
	SubscriberBuffer int

	// WriteTimeout bounds each websocket write (default 10s).
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration

	// Registry receives the stream metrics and is served on /metrics.
	// Default: a new registry.
	Registry *prometheus.Registry

	// Namespace prefixes metric names (default "vfiber").
	Namespace string

	// CheckOrigin is passed to the websocket upgrader. Nil accepts
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// TracerProvider traces requests. Default: the global provider.
	TracerProvider trace.TracerProvider

	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = "localhost:3000"
	}
	if c.Title == "" {
		c.Title = "vfiber"
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	if c.Namespace == "" {
		c.Namespace = "vfiber"
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server serves one reconciled tree.
type Server struct {
	config   Config
	loop     *fiber.Loop
	host     *memhost.Host
	hub      *Hub
	metrics  *Metrics
	renderer *render.Renderer
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// batch and seq are only touched on the loop goroutine.
	batch []protocol.Mutation
	seq   uint64

	httpServer *http.Server
}

// New creates a server for the tree that loop renders into host. Create the
// server before the first Render so that every mutation is streamed.
func New(loop *fiber.Loop, host *memhost.Host, config Config) *Server {
	config.applyDefaults()
	metrics := NewMetrics(config.Registry, config.Namespace)

	s := &Server{
		config:   config,
		loop:     loop,
		host:     host,
		hub:      NewHub(config.SubscriberBuffer, metrics),
		metrics:  metrics,
		renderer: render.NewRenderer(render.RendererConfig{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: config.Logger.With("component", "stream"),
	}

	host.Observe(s.collect)
	loop.OnCommit(s.publish)
	loop.OnError(s.publishError)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(vfmw.Prometheus(
		vfmw.WithRegistry(config.Registry),
		vfmw.WithNamespace(config.Namespace),
	))
	r.Use(vfmw.OpenTelemetry(
		vfmw.WithTracerProvider(config.TracerProvider),
		vfmw.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	))
	r.Get("/", s.handlePage)
	r.Get("/fragment", s.handleFragment)
	r.Get("/ws", s.handleWebSocket)
	r.Post("/events/{id}/{event}", s.handleEvent)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the subscriber hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// collect runs under the host lock for every mutation.
func (s *Server) collect(m protocol.Mutation) {
	s.batch = append(s.batch, m)
}

// publish broadcasts the mutations collected since the previous commit.
func (s *Server) publish(stats fiber.CommitStats) {
	s.seq++
	payload := protocol.EncodeMutations(&protocol.MutationsFrame{Seq: s.seq, Mutations: s.batch})
	s.batch = nil
	for _, f := range protocol.Split(protocol.FrameMutations, payload) {
		s.hub.Broadcast(f.Encode())
	}
	s.logger.Debug("commit published", "seq", s.seq, "units", stats.Units, "subscribers", s.hub.Len())
}

func (s *Server) publishError(err error) {
	code := errors.Code(err)
	if code == "" {
		code = errors.CodeHostFailure
	}
	msg := protocol.EncodeErrorMessage(&protocol.ErrorMessage{Code: code, Message: err.Error()})
	s.hub.Broadcast(protocol.NewFrame(protocol.FrameError, msg).Encode())
}

// fragment renders the tree. It must run on the loop goroutine.
func (s *Server) fragment() ([]byte, error) {
	var buf bytes.Buffer
	var err error
	s.host.Lock(func(root *memhost.Node) {
		err = s.renderer.RenderChildren(&buf, root)
	})
	return buf.Bytes(), err
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.loop.Do(r.Context(), func(*fiber.Reconciler) error {
		var err error
		s.host.Lock(func(root *memhost.Node) {
			err = s.renderer.RenderPage(&buf, render.PageData{
				Title:  s.config.Title,
				Body:   root,
				Script: clientScript,
			})
		})
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	var html []byte
	err := s.loop.Do(r.Context(), func(*fiber.Reconciler) error {
		var err error
		html, err = s.fragment()
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.metrics.recordEvent("bad_request")
		http.Error(w, "invalid node id", http.StatusBadRequest)
		return
	}
	name := strings.ToLower(chi.URLParam(r, "event"))
	ev := vdom.Event{
		Type:  name,
		Value: r.FormValue("value"),
	}
	if key := r.FormValue("key"); key != "" {
		ev.Data = map[string]string{"key": key}
	}

	var dispatchErr error
	err = s.loop.Do(r.Context(), func(*fiber.Reconciler) error {
		dispatchErr = s.host.Dispatch(id, name, ev)
		return nil
	})
	switch {
	case err != nil:
		s.metrics.recordEvent("error")
		s.fail(w, err)
	case dispatchErr != nil:
		s.metrics.recordEvent("not_found")
		http.Error(w, dispatchErr.Error(), http.StatusNotFound)
	default:
		s.metrics.recordEvent("ok")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The snapshot and the subscription are taken together on the loop, so
	// no commit falls between them.
	var snapshot []*protocol.Frame
	var sub *Subscriber
	err = s.loop.Do(r.Context(), func(*fiber.Reconciler) error {
		html, err := s.fragment()
		if err != nil {
			return err
		}
		payload := protocol.EncodeSnapshot(&protocol.SnapshotMessage{Seq: s.seq, HTML: string(html)})
		snapshot = protocol.Split(protocol.FrameSnapshot, payload)
		sub = s.hub.Subscribe()
		return nil
	})
	if err != nil {
		s.logger.Warn("websocket snapshot failed", "error", err)
		s.closeConn(conn, websocket.CloseInternalServerErr, "snapshot failed")
		return
	}
	defer s.hub.Unsubscribe(sub)

	for _, f := range snapshot {
		if err := s.write(conn, f.Encode()); err != nil {
			return
		}
	}

	// Reads only detect the client going away.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				s.hub.Unsubscribe(sub)
				return
			}
		}
	}()

	for msg := range sub.C {
		if err := s.write(conn, msg); err != nil {
			return
		}
	}
	if sub.Dropped() {
		s.logger.Warn("subscriber dropped", "remote", r.RemoteAddr)
		s.closeConn(conn, websocket.CloseTryAgainLater, "subscriber too slow")
		return
	}
	s.closeConn(conn, websocket.CloseGoingAway, "server closing")
}

func (s *Server) write(conn *websocket.Conn, msg []byte) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (s *Server) closeConn(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if stderrors.Is(err, fiber.ErrLoopStopped) {
		status = http.StatusServiceUnavailable
	}
	if stderrors.Is(err, context.Canceled) {
		return
	}
	s.logger.Error("request failed", "error", err)
	http.Error(w, err.Error(), status)
}

// Run drives the loop and serves HTTP on config.Address until ctx is
// canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- s.loop.Run(ctx) }()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		cancel()
		<-loopDone
		s.hub.Close()
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	s.hub.Close()
	shutdownCtx, stop := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer stop()
	err := s.httpServer.Shutdown(shutdownCtx)
	<-loopDone
	if err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}
