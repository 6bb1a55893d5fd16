package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/navmesh"
)

// Server exposes an engine to Client connections. The engine is stateful,
// so calls from all connections share one lock.
type Server struct {
	engine  navmesh.Engine
	log     *zap.Logger
	tempDir string

	mu       sync.Mutex
	upgrader websocket.Upgrader
}

type ServerOption func(*Server)

// WithAllowedOrigins accepts browser connections from the listed origins.
// Without it only same-host origins and clients that send no Origin header
// are accepted.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		if len(origins) == 0 {
			return
		}
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
		}
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[strings.ToLower(origin)]
		}
	}
}

func NewServer(e navmesh.Engine, tempDir string, log *zap.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		engine:  e,
		log:     log,
		tempDir: tempDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Warn("upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxUploadBytes)

		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxUploadBytes))
		if err != nil {
			s.log.Error("zstd reader", zap.Error(err))
			return
		}
		defer dec.Close()

		log := s.log.With(zap.String("peer", r.RemoteAddr))
		log.Info("engine client connected")
		for {
			typ, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn("read failed", zap.Error(err))
				}
				return
			}
			if typ != websocket.TextMessage {
				log.Warn("unexpected binary frame")
				return
			}
			var req request
			if err := json.Unmarshal(msg, &req); err != nil {
				log.Warn("bad request", zap.Error(err))
				return
			}
			resp := response{ID: req.ID, OK: true}
			if req.Op == opLoad {
				err = s.load(conn, dec, req)
			} else {
				err = s.dispatch(req, &resp)
			}
			if err != nil {
				resp = response{ID: req.ID, Error: err.Error()}
				log.Debug("request failed", zap.String("op", req.Op), zap.Error(err))
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(resp); err != nil {
				log.Warn("write failed", zap.Error(err))
				return
			}
		}
	}
}

// load reads the binary upload frame and hands the OBJ to the engine
// through a temp file.
func (s *Server) load(conn *websocket.Conn, dec *zstd.Decoder, req request) error {
	typ, payload, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	if typ != websocket.BinaryMessage {
		return fmt.Errorf("%w: load expects a binary frame", ErrProtocol)
	}
	if req.Size != 0 && req.Size != len(payload) {
		return fmt.Errorf("%w: load size %d, got %d bytes", ErrProtocol, req.Size, len(payload))
	}
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return fmt.Errorf("decompress upload: %w", err)
	}
	f, err := os.CreateTemp(s.tempDir, "upload-*.obj")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.LoadObj(f.Name())
}

func (s *Server) dispatch(req request, resp *response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch req.Op {
	case opBuild:
		var settings navmesh.Settings
		if settings, err = buildSettings(req.Params); err == nil {
			resp.Built, err = s.engine.Build(settings.Params())
		}
	case opRandom:
		resp.Points, err = s.engine.RandomPoints(req.N)
	case opPaths:
		if req.Parallel {
			resp.Points, err = s.engine.FindPathsParallel(req.Starts, req.Ends, req.SearchSize, req.Mode, req.Style)
		} else {
			resp.Points, err = s.engine.FindPaths(req.Starts, req.Ends, req.SearchSize, req.Mode, req.Style)
		}
	case opContours:
		resp.Points, resp.Sizes, err = s.engine.Contours()
	case opRawContours:
		resp.Points, resp.Sizes, err = s.engine.RawContours()
	case opPolygons:
		resp.Points, err = s.engine.TrianglePolygons()
	default:
		err = fmt.Errorf("%w: unknown op %q", ErrProtocol, req.Op)
	}
	return err
}

// buildSettings merges the requested parameters onto the defaults so the
// engine always receives a complete, validated set.
func buildSettings(params map[string]float64) (navmesh.Settings, error) {
	o, err := navmesh.OverridesFromMap(params)
	if err != nil {
		return navmesh.Settings{}, err
	}
	settings := navmesh.NewSettings(o)
	if err := settings.Validate(); err != nil {
		return navmesh.Settings{}, err
	}
	return settings, nil
}
