package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"nowplaying/internal/api"
	"nowplaying/internal/config"
	"nowplaying/internal/logging"
)

const (
	defaultEventLimit = 50
	maxRequestBody    = 1 << 20
	requestIDHeader   = "X-Request-ID"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(cfg.Paths.APIToken),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Long-poll event fetches hold the response open.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withRequestID(authMiddleware(token, h)))
	}
	handle("/api/status", s.handleStatus)
	handle("/api/nowplaying", s.handleNowPlaying)
	handle("/api/nowplaying/events", s.handleEvents)
	handle("/api/lyrics", s.handleLyrics)
	handle("/api/lyrics/search", s.handleLyricsSearch)
	handle("/api/signals", s.handlePostSignal)
	handle("/api/signals/reconnect", s.handleReconnect)
	handle("/api/signals/remove", s.handleRemoveSignal)
	handle("/api/memory", s.handleMemory)
	handle("/api/artist", s.handleArtist)
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		MemoryDBPath:  status.MemoryDBPath,
		LockFilePath:  status.LockFilePath,
		APIAddress:    status.APIAddress,
		KnownArtists:  status.KnownArtists,
		ActiveSignals: status.ActiveSignals,
		LastEventSeq:  status.LastEventSeq,
		Checks:        api.FromCheckResults(status.Checks),
	}
	if status.Current != nil {
		p := api.FromPayload(*status.Current)
		payload.Current = &p
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	current, ok := s.daemon.Current()
	s.writeJSON(w, http.StatusOK, api.NowPlayingResponse{
		Playing: ok,
		Payload: api.OptionalPayload(current, ok),
	})
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = defaultEventLimit
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")

	raw, next, err := s.daemon.Events().Fetch(r.Context(), since, limit, follow)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.EventsResponse{
		Events: api.FromEvents(raw),
		Next:   next,
	})
}

func (s *apiServer) handleLyrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	title := strings.TrimSpace(query.Get("title"))
	artist := strings.TrimSpace(query.Get("artist"))
	synced := s.daemon.PreferSynced()
	if value := strings.TrimSpace(query.Get("synced")); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid synced flag")
			return
		}
		synced = parsed
	}
	if title == "" && artist == "" {
		if current, ok := s.daemon.Current(); ok {
			title, artist = current.Title, current.Artist
		}
	}
	result := s.daemon.FetchLyrics(r.Context(), title, artist, synced)
	s.writeJSON(w, http.StatusOK, api.FromLyricsResult(result))
}

func (s *apiServer) handleLyricsSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	candidates := s.daemon.SearchLyrics(r.Context(), q)
	s.writeJSON(w, http.StatusOK, api.SearchResponse{Candidates: api.FromCandidates(candidates)})
}

func (s *apiServer) handlePostSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.Signal
	if !s.decodeBody(w, r, &req) {
		return
	}
	sig := api.ToSignal(req)
	if sig.ID() == "" {
		s.writeError(w, http.StatusBadRequest, "signal requires key or sourcePackage")
		return
	}
	_, emitted := s.daemon.PostSignal(r.Context(), sig)
	s.writeSignalResponse(w, emitted)
}

func (s *apiServer) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ReconnectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	_, found := s.daemon.Reconnect(r.Context(), api.ToSignals(req.Signals))
	s.writeSignalResponse(w, found)
}

func (s *apiServer) handleRemoveSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.RemoveRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	_, found := s.daemon.RemoveSignal(key)
	s.writeSignalResponse(w, found)
}

func (s *apiServer) handleMemory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	artists, err := s.daemon.Memory(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.MemoryResponse{Artists: api.FromArtists(artists)})
}

func (s *apiServer) handleArtist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	insight, ok, err := s.daemon.ArtistInsight(r.Context(), r.URL.Query().Get("name"))
	if errors.Is(err, ErrMetadataDisabled) {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no artist to look up")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromInsight(insight))
}

func (s *apiServer) writeSignalResponse(w http.ResponseWriter, emitted bool) {
	current, ok := s.daemon.Current()
	s.writeJSON(w, http.StatusOK, api.SignalResponse{
		Emitted: emitted,
		Current: api.OptionalPayload(current, ok),
	})
}

func (s *apiServer) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		logging.WithContext(r.Context(), s.log()).Debug("decode request failed", logging.Error(err))
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
