package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/config"
	"github.com/bastiangx/dexpad/pkg/keypad"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

// Error codes sent in ErrorResponse.
const (
	CodeBadRequest      = 400
	CodeNotFound        = 404
	CodeTooManySessions = 429
	CodeInternal        = 500
)

// Server handles msgpack IPC for search and keypad sessions.
type Server struct {
	searcher   *Searcher
	cfg        *config.Config
	configPath string
	keys       keypad.KeyMap
	timings    keypad.Timings
	sched      keypad.Scheduler

	dec *msgpack.Decoder

	writeMu sync.Mutex
	enc     *msgpack.Encoder

	mu       sync.RWMutex
	sessions map[string]*keypad.Engine

	requestCount int
}

// Option customizes a Server.
type Option func(*Server)

// WithScheduler replaces the real clock used by keypad sessions.
func WithScheduler(s keypad.Scheduler) Option {
	return func(srv *Server) {
		srv.sched = s
	}
}

// NewServer creates a server reading requests from r and writing to w.
// configPath is where config updates are persisted; empty keeps them in memory.
func NewServer(searcher *Searcher, cfg *config.Config, configPath string, r io.Reader, w io.Writer, opts ...Option) (*Server, error) {
	keys, err := cfg.KeyMap()
	if err != nil {
		return nil, err
	}
	timings := cfg.Timings()
	if err := timings.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		searcher:   searcher,
		cfg:        cfg,
		configPath: configPath,
		keys:       keys,
		timings:    timings,
		sched:      keypad.RealScheduler{},
		dec:        msgpack.NewDecoder(r),
		enc:        msgpack.NewEncoder(w),
		sessions:   make(map[string]*keypad.Engine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start sends a ready status and serves requests until the reader is
// exhausted or ctx is canceled. All sessions are closed on return.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	defer s.closeAll()

	s.send(StatusResponse{Status: "ready", Species: s.searcher.Catalog().Len()})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var raw msgpack.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Input closed after %d requests, stopping server", s.requestCount)
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return fmt.Errorf("failed to read request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid msgpack request", CodeBadRequest)
			continue
		}
		s.requestCount++
		s.Handle(ctx, req)
	}
}

// Handle dispatches a single request and writes its response.
func (s *Server) Handle(ctx context.Context, req Request) {
	switch req.Action {
	case ActionSearch:
		s.handleSearch(req)
	case ActionTypes:
		s.handleTypes(req)
	case ActionLookup:
		s.handleLookup(req)
	case ActionSessionOpen:
		s.handleSessionOpen(req)
	case ActionKey, ActionDualPress, ActionDualRelease, ActionBackspace, ActionSetText, ActionSessionClose:
		s.handleSessionEvent(req)
	case ActionConfig:
		s.handleConfig(ctx, req)
	case ActionHealth:
		s.send(StatusResponse{
			ID:       req.ID,
			Status:   "ok",
			Species:  s.searcher.Catalog().Len(),
			Sessions: s.sessionCount(),
		})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %q", req.Action), CodeBadRequest)
	}
}

func (s *Server) limit(requested int) int {
	maxResults := s.cfg.Server.MaxResults
	if requested < 1 || requested > maxResults {
		return maxResults
	}
	return requested
}

func (s *Server) handleSearch(req Request) {
	res := s.searcher.Search(req.Query, s.limit(req.Limit))
	log.Debugf("Search %q -> %s: %d/%d in %v", req.Query, res.Filters, len(res.Matches), res.Total, res.Elapsed)

	s.send(SearchResponse{
		ID:        req.ID,
		Results:   res.Matches,
		Count:     len(res.Matches),
		Total:     res.Total,
		Filters:   res.Filters,
		TimeTaken: res.Elapsed.Microseconds(),
	})
}

func (s *Server) handleTypes(req Request) {
	if len(req.Types) == 0 || len(req.Types) > 2 {
		s.sendError(req.ID, "Expected one or two types in 'ty'", CodeBadRequest)
		return
	}
	for _, t := range req.Types {
		if !typechart.IsType(t) {
			s.sendError(req.ID, fmt.Sprintf("Unknown type: %q", t), CodeBadRequest)
			return
		}
	}
	s.send(TypesResponse{
		ID:            req.ID,
		Types:         req.Types,
		Effectiveness: typechart.Analyze(req.Types),
	})
}

func (s *Server) handleLookup(req Request) {
	if req.Name == "" && req.DexID == 0 {
		s.sendError(req.ID, "Missing 'n' or 'i' parameter", CodeBadRequest)
		return
	}
	sp, err := s.searcher.Lookup(req.Name, req.DexID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.sendError(req.ID, "Species not found", CodeNotFound)
			return
		}
		s.sendError(req.ID, err.Error(), CodeInternal)
		return
	}
	s.send(LookupResponse{
		ID:            req.ID,
		Species:       sp,
		Effectiveness: s.searcher.Effectiveness(sp),
	})
}

func (s *Server) handleSessionOpen(req Request) {
	s.mu.Lock()
	if maxSessions := s.cfg.Server.MaxSessions; maxSessions > 0 && len(s.sessions) >= maxSessions {
		s.mu.Unlock()
		s.sendError(req.ID, fmt.Sprintf("Session limit of %d reached", maxSessions), CodeTooManySessions)
		return
	}

	engine, err := keypad.New(s.keys, s.timings, s.sched)
	if err != nil {
		s.mu.Unlock()
		s.sendError(req.ID, err.Error(), CodeInternal)
		return
	}
	sid := uuid.NewString()
	s.sessions[sid] = engine
	s.mu.Unlock()

	engine.OnChange(func(display string) {
		s.send(SessionEvent{Event: "change", SessionID: sid, Display: display})
	})
	log.Debugf("Opened keypad session %s", sid)

	s.sendSession(req, sid, engine, false)
}

func (s *Server) handleSessionEvent(req Request) {
	s.mu.RLock()
	engine, ok := s.sessions[req.SessionID]
	s.mu.RUnlock()
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("Unknown session: %q", req.SessionID), CodeNotFound)
		return
	}

	switch req.Action {
	case ActionKey:
		k := keypad.Key(req.Key)
		if k == keypad.DualKey {
			// A plain key event on the dual key is a short tap.
			engine.DualKeyPress()
			engine.DualKeyRelease()
		} else {
			engine.KeyPress(k)
		}
	case ActionDualPress:
		engine.DualKeyPress()
	case ActionDualRelease:
		engine.DualKeyRelease()
	case ActionBackspace:
		engine.Backspace()
	case ActionSetText:
		engine.SetText(req.Text)
	case ActionSessionClose:
		s.mu.Lock()
		delete(s.sessions, req.SessionID)
		s.mu.Unlock()
		engine.Close()
		log.Debugf("Closed keypad session %s", req.SessionID)
		s.sendSession(req, req.SessionID, engine, true)
		return
	}
	s.sendSession(req, req.SessionID, engine, false)
}

func (s *Server) sendSession(req Request, sid string, engine *keypad.Engine, closed bool) {
	snap := engine.Snapshot()
	resp := SessionResponse{
		ID:        req.ID,
		SessionID: sid,
		Display:   snap.Display(),
		Committed: snap.Committed,
		Closed:    closed,
	}
	if req.WithResults && !closed {
		resp.Results = s.searcher.Search(resp.Display, s.limit(req.Limit)).Matches
	}
	s.send(resp)
}

func (s *Server) handleConfig(ctx context.Context, req Request) {
	if req.MaxResults == nil && req.CacheSize == nil {
		s.sendError(req.ID, "Nothing to update", CodeBadRequest)
		return
	}
	if err := s.cfg.Update(ctx, s.configPath, req.MaxResults, req.CacheSize); err != nil {
		s.sendError(req.ID, err.Error(), CodeBadRequest)
		return
	}
	if req.CacheSize != nil {
		if err := s.searcher.Resize(*req.CacheSize); err != nil {
			s.sendError(req.ID, err.Error(), CodeInternal)
			return
		}
	}
	log.Debugf("Config updated: max_results=%d cache_size=%d", s.cfg.Server.MaxResults, s.cfg.Server.CacheSize)
	s.send(StatusResponse{
		ID:         req.ID,
		Status:     "updated",
		MaxResults: s.cfg.Server.MaxResults,
		CacheSize:  s.cfg.Server.CacheSize,
	})
}

func (s *Server) sessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*keypad.Engine)
	s.mu.Unlock()

	for _, e := range sessions {
		e.Close()
	}
}

// send encodes one response. Session timers write concurrently with the
// request loop, so writes are serialized.
func (s *Server) send(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
