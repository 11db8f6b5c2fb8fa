// Package syntaxd serves the parser over HTTP: a JSON API exposing parse
// and tokenize endpoints, backed by the syndb cache. The primary listener
// speaks HTTP/3; a plain TCP listener is available for clients without
// QUIC.
package syntaxd

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	http3 "github.com/quic-go/quic-go/http3"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/lexer"
	"github.com/orizon-lang/aster/internal/source"
	"github.com/orizon-lang/aster/internal/syndb"
)

// ParseRequest is the body of POST /v1/parse and /v1/tokens.
type ParseRequest struct {
	Name    string `json:"name,omitempty"`
	Source  string `json:"source"`
	Dialect string `json:"dialect,omitempty"`
	Version string `json:"version,omitempty"`
}

// DiagnosticJSON is one reported diagnostic.
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
}

// ParseResponse is the body of a parse reply.
type ParseResponse struct {
	OK          bool             `json:"ok"`
	NodeCount   int              `json:"nodeCount,omitempty"`
	Stats       int              `json:"topLevelStats,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// TokenJSON is one scanned token.
type TokenJSON struct {
	Type    string `json:"type"`
	Literal string `json:"literal,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// Server is the syntax service.
type Server struct {
	db      *syndb.DB
	mux     *http.ServeMux
	started time.Time
	parses  uint64
}

// NewServer creates the service with a cache of the given size.
func NewServer(cacheSize int) (*Server, error) {
	db, err := syndb.New(cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{db: db, started: time.Now()}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/parse", s.handleParse)
	mux.HandleFunc("/v1/tokens", s.handleTokens)
	s.mux = mux
	return s, nil
}

// Handler returns the HTTP handler for mounting on any listener.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
		Parses uint64 `json:"parses"`
		Cached int    `json:"cached"`
	}{"ok", time.Since(s.started).Round(time.Second).String(), atomic.LoadUint64(&s.parses), s.db.Len()})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*ParseRequest, dialect.Dialect, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, dialect.Dialect{}, false
	}
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return nil, dialect.Dialect{}, false
	}
	d, err := resolveDialect(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, dialect.Dialect{}, false
	}
	return &req, d, true
}

func resolveDialect(req ParseRequest) (dialect.Dialect, error) {
	if req.Version != "" {
		return dialect.ForVersion(req.Version)
	}
	switch req.Dialect {
	case "", "Aster3":
		return dialect.Aster3, nil
	case "Aster2":
		return dialect.Aster2, nil
	case "Aster1":
		return dialect.Aster1, nil
	}
	return dialect.Dialect{}, fmt.Errorf("unknown dialect %q", req.Dialect)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, d, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	atomic.AddUint64(&s.parses, 1)
	name := req.Name
	if name == "" {
		name = "<request>"
	}
	res := s.db.ParseSource(name, req.Source, d)

	resp := ParseResponse{OK: res.Err == nil}
	for _, dg := range res.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, DiagnosticJSON{
			Severity: dg.Severity.String(),
			Line:     dg.Span.Start.Line,
			Column:   dg.Span.Start.Column,
			Message:  dg.Message,
		})
	}
	if res.Tree != nil {
		resp.Stats = len(res.Tree.Stats)
		count := 0
		ast.Walk(res.Tree, func(ast.Tree) bool { count++; return true })
		resp.NodeCount = count
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	req, d, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	toks := lexer.Tokenize(source.Named(req.Name, req.Source), d)
	out := make([]TokenJSON, 0, len(toks))
	for _, t := range toks {
		if t.Type == lexer.TokenWhitespace {
			continue
		}
		out = append(out, TokenJSON{
			Type:    t.Type.String(),
			Literal: t.Literal,
			Line:    t.Pos.Line,
			Column:  t.Pos.Column,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// HTTP3Server wraps the http3.Server lifecycle around the service.
type HTTP3Server struct {
	srv   *http3.Server
	pc    net.PacketConn
	addr  string
	close func() error
}

// NewHTTP3Server binds the service to addr with the given TLS config.
func NewHTTP3Server(addr string, tlsCfg *tls.Config, s *Server) *HTTP3Server {
	h3 := &http3.Server{Addr: addr, TLSConfig: tlsCfg, Handler: s.Handler()}
	return &HTTP3Server{srv: h3, addr: addr}
}

// Start begins serving HTTP/3; with a ":0" address the bound address is
// returned.
func (s *HTTP3Server) Start() (string, error) {
	var err error
	s.pc, err = net.ListenPacket("udp", s.addr)
	if err != nil {
		return "", err
	}
	realAddr := s.pc.LocalAddr().String()
	done := make(chan struct{})
	go func() {
		_ = s.srv.Serve(s.pc)
		close(done)
	}()
	s.close = func() error {
		_ = s.pc.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return nil
	}
	return realAddr, nil
}

// Stop stops the server.
func (s *HTTP3Server) Stop() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}

// ServeTCP serves the same handler over plain HTTP for clients without
// QUIC support.
func ServeTCP(addr string, s *Server) error {
	return http.ListenAndServe(addr, s.Handler())
}
