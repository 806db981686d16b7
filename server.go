package gows

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// ServerConfig is the server's immutable-after-build configuration
// (spec.md §3). It is assembled once by the CLI shim in cmd/gows and
// handed to NewServer; nothing mutates it again once Run is called.
type ServerConfig struct {
	BindAddress string
	Port        int
	Workers     int

	CertPath string
	CertPass string

	Credentials *Credentials
	CORS        *CORSPolicy
	Compression bool

	IndexPath string

	Silent bool
}

// Server binds a listener, runs the accept loop, and dispatches each
// connection's parse→route→write pipeline onto a fixed worker pool
// (spec.md §4.8).
type Server struct {
	config *ServerConfig
	router *Router
	logger *Logger
	pool   *Pool
	stream *NetStream
	static *StaticFiles
}

// NewServer wires the router, logger, worker pool, and network stream
// facade from config. Routes must already be registered on router before
// Run is called.
func NewServer(config *ServerConfig, router *Router, static *StaticFiles) (*Server, error) {
	logger := NewLogger(config.Silent)

	stream, err := NewNetStream(config.CertPath, config.CertPass)
	if err != nil {
		return nil, err
	}

	pool, err := BuildPool(config.Workers, logger)
	if err != nil {
		return nil, err
	}

	router.logger = logger
	router.SetCORS(config.CORS)
	router.SetCredentials(config.Credentials)

	return &Server{
		config: config,
		router: router,
		logger: logger,
		pool:   pool,
		stream: stream,
		static: static,
	}, nil
}

// Run binds the listener and accepts connections. It returns only when
// Listen fails to bind (a fatal startup error); an Accept error is logged
// and the loop continues.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: failed to bind %s: %w", addr, err)
	}
	defer listener.Close()

	s.logger.Info("Server is running on {}", Colored(addr, color.New(color.FgGreen)))

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.logger.Error("accept failed: {}", Plain(err.Error()))
			continue
		}

		peerAddr := conn.RemoteAddr().String()
		connID := uuid.NewString()

		s.pool.Execute(func() {
			s.handleConnection(conn, peerAddr, connID)
		})
	}
}

// handleConnection runs the per-connection pipeline spec.md §4.8.1
// describes: wrap (TLS if configured), parse, decide body mode, route or
// upgrade, write, release.
func (s *Server) handleConnection(conn net.Conn, peerAddr, connID string) {
	wrapped, err := s.stream.Wrap(conn)
	if err != nil {
		s.logger.Error("connection {} TLS handshake failed: {}", Plain(connID), Plain(err.Error()))
		conn.Close()
		return
	}
	defer wrapped.Close()

	reader := bufio.NewReader(wrapped)

	req, err := parseRequest(reader)
	if err != nil {
		resp := htmlErrorResponse(400, err.Error())
		_ = writeResponse(wrapped, resp, false)
		return
	}

	if isWebSocketUpgrade(req) {
		s.handleWebSocketUpgrade(wrapped, reader, req, peerAddr)
		return
	}

	contentType, _ := req.Header("Content-Type")
	if boundary, ok := multipartBoundary(contentType); ok {
		length, _ := parseContentLength(req.Headers)
		targetPath, query := stripQuery(req.Target)
		targetDir := queryParam(query, "path")
		resp, apiErr := handleMultipartUpload(reader, length, boundary, targetDir)
		if apiErr != nil {
			resp = apiErr.Response
		}
		_ = writeResponse(wrapped, resp, s.config.Compression)
		s.logger.Info("{} {} {} -> {}", Plain(req.Method), Plain(targetPath), Plain(peerAddr), Plain(fmt.Sprint(resp.StatusCode)))
		return
	}

	if err := readBody(reader, req); err != nil {
		resp := htmlErrorResponse(400, err.Error())
		_ = writeResponse(wrapped, resp, false)
		return
	}

	result := s.router.Dispatch(req.Method, req.Target, req.Body, peerAddr, req.Headers)
	_ = writeResponse(wrapped, result.Response, s.config.Compression)
}

// isWebSocketUpgrade reports whether req carries the Upgrade: websocket
// pathway spec.md §4.9 describes.
func isWebSocketUpgrade(req *Request) bool {
	upgrade, ok := req.Header("Upgrade")
	return ok && strings.EqualFold(upgrade, "websocket")
}

func (s *Server) handleWebSocketUpgrade(conn net.Conn, reader *bufio.Reader, req *Request, peerAddr string) {
	key, ok := req.Header("Sec-WebSocket-Key")
	if !ok || key == "" {
		resp := htmlErrorResponse(400, "missing Sec-WebSocket-Key")
		_ = writeResponse(conn, resp, false)
		return
	}

	if err := wsHandshake(conn, key); err != nil {
		s.logger.Error("websocket handshake with {} failed: {}", Plain(peerAddr), Plain(err.Error()))
		return
	}

	s.logger.Info("websocket connection established with {}", Plain(peerAddr))
	runWSLoop(conn, reader, nil, s.logger)
}

func queryParam(query, name string) string {
	for _, pair := range strings.Split(query, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && kv[0] == name {
			return kv[1]
		}
	}
	return ""
}
