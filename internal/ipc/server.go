package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"log/slog"

	"nowplaying/internal/api"
	"nowplaying/internal/daemon"
	"nowplaying/internal/logging"
)

// ServiceName is the JSON-RPC service prefix.
const ServiceName = "NowPlaying"

// Server exposes the daemon via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually and restart nowplayingd"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.MemoryDBPath = status.MemoryDBPath
	resp.LockFilePath = status.LockFilePath
	resp.APIAddress = status.APIAddress
	resp.KnownArtists = status.KnownArtists
	resp.ActiveSignals = status.ActiveSignals
	resp.LastEventSeq = status.LastEventSeq
	resp.Checks = api.FromCheckResults(status.Checks)
	if status.Current != nil {
		p := api.FromPayload(*status.Current)
		resp.Current = &p
	}
	return nil
}

func (s *service) Current(_ CurrentRequest, resp *CurrentResponse) error {
	current, ok := s.daemon.Current()
	resp.Playing = ok
	resp.Payload = api.OptionalPayload(current, ok)
	return nil
}

func (s *service) PostSignal(req PostSignalRequest, resp *SignalResponse) error {
	sig := api.ToSignal(req.Signal)
	if sig.ID() == "" {
		return errors.New("signal requires key or source package")
	}
	_, emitted := s.daemon.PostSignal(s.ctx, sig)
	s.fillSignalResponse(resp, emitted)
	s.log().Debug("signal posted via IPC", logging.String("key", sig.ID()), logging.Bool("emitted", emitted))
	return nil
}

func (s *service) Reconnect(req ReconnectRequest, resp *SignalResponse) error {
	_, found := s.daemon.Reconnect(s.ctx, api.ToSignals(req.Signals))
	s.fillSignalResponse(resp, found)
	return nil
}

func (s *service) RemoveSignal(req RemoveSignalRequest, resp *SignalResponse) error {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return errors.New("key is required")
	}
	_, found := s.daemon.RemoveSignal(key)
	s.fillSignalResponse(resp, found)
	return nil
}

func (s *service) fillSignalResponse(resp *SignalResponse, emitted bool) {
	current, ok := s.daemon.Current()
	resp.Emitted = emitted
	resp.Current = api.OptionalPayload(current, ok)
}

func (s *service) FetchLyrics(req FetchLyricsRequest, resp *FetchLyricsResponse) error {
	title := strings.TrimSpace(req.Title)
	artist := strings.TrimSpace(req.Artist)
	if title == "" && artist == "" {
		if current, ok := s.daemon.Current(); ok {
			title, artist = current.Title, current.Artist
		}
	}
	synced := s.daemon.PreferSynced()
	if req.Synced != nil {
		synced = *req.Synced
	}
	*resp = api.FromLyricsResult(s.daemon.FetchLyrics(s.ctx, title, artist, synced))
	return nil
}

func (s *service) SearchLyrics(req SearchLyricsRequest, resp *SearchLyricsResponse) error {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return errors.New("query is required")
	}
	resp.Candidates = api.FromCandidates(s.daemon.SearchLyrics(s.ctx, query))
	return nil
}

func (s *service) Memory(_ MemoryRequest, resp *MemoryResponse) error {
	artists, err := s.daemon.Memory(s.ctx)
	if err != nil {
		return fmt.Errorf("list memory: %w", err)
	}
	resp.Artists = api.FromArtists(artists)
	return nil
}

func (s *service) ArtistInsight(req ArtistInsightRequest, resp *ArtistInsightResponse) error {
	insight, ok, err := s.daemon.ArtistInsight(s.ctx, req.Artist)
	if err != nil {
		return err
	}
	resp.Found = ok
	if ok {
		dto := api.FromInsight(insight)
		resp.Insight = &dto
	}
	return nil
}
