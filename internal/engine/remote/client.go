package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/navmesh"
)

var _ navmesh.Engine = (*Client)(nil)

type Option func(*Client)

// WithTimeouts sets the per-call write and read deadlines.
func WithTimeouts(write, read time.Duration) Option {
	return func(c *Client) {
		if write > 0 {
			c.writeTimeout = write
		}
		if read > 0 {
			c.readTimeout = read
		}
	}
}

// Client implements navmesh.Engine against a remote engine host. Calls are
// serialized; one request is in flight at a time.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
	enc  *zstd.Encoder
	log  *zap.Logger
	id   uint64
	// broken holds the transport error that invalidated conn.
	broken error

	writeTimeout time.Duration
	readTimeout  time.Duration
}

func Dial(ctx context.Context, url string, log *zap.Logger, opts ...Option) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   bufferSize,
		WriteBufferSize:  bufferSize,
	}
	conn, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", url, err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	c := &Client{
		conn:         conn,
		enc:          enc,
		log:          log.With(zap.String("engine", url)),
		writeTimeout: 10 * time.Second,
		readTimeout:  5 * time.Minute,
	}
	for _, o := range opts {
		o(c)
	}
	c.log.Info("connected to remote engine")
	return c, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enc.Close()
	if c.broken != nil {
		// already closed by Close or by the failed call that set broken
		return nil
	}
	c.broken = ErrClosed
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) call(req request, payload []byte) (response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken != nil {
		return response{}, c.broken
	}
	c.id++
	req.ID = c.id
	start := time.Now()

	resp, err := c.exchange(req, payload)
	if err != nil {
		c.broken = fmt.Errorf("%w: %w", ErrClosed, err)
		_ = c.conn.Close()
		c.log.Warn("remote engine connection lost", zap.String("op", req.Op), zap.Error(err))
		return response{}, err
	}
	c.log.Debug("remote call", zap.String("op", req.Op), zap.Uint64("id", req.ID), zap.Duration("took", time.Since(start)))
	if !resp.OK {
		return response{}, fmt.Errorf("%w: %s: %s", ErrRemote, req.Op, resp.Error)
	}
	return resp, nil
}

func (c *Client) exchange(req request, payload []byte) (response, error) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return response{}, err
	}
	if payload != nil {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			return response{}, err
		}
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	typ, msg, err := c.conn.ReadMessage()
	if err != nil {
		return response{}, err
	}
	if typ != websocket.TextMessage {
		return response{}, fmt.Errorf("%w: unexpected frame type %d", ErrProtocol, typ)
	}
	var resp response
	if err := json.Unmarshal(msg, &resp); err != nil {
		return response{}, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if resp.ID != req.ID {
		return response{}, fmt.Errorf("%w: response id %d for request %d", ErrProtocol, resp.ID, req.ID)
	}
	return resp, nil
}

func (c *Client) LoadObj(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	packed := c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/4+64))
	c.mu.Unlock()
	_, err = c.call(request{Op: opLoad, Size: len(packed)}, packed)
	return err
}

func (c *Client) Build(params map[string]float64) (bool, error) {
	resp, err := c.call(request{Op: opBuild, Params: params}, nil)
	if err != nil {
		return false, err
	}
	return resp.Built, nil
}

func (c *Client) RandomPoints(n int) ([]geom.Vec3, error) {
	resp, err := c.call(request{Op: opRandom, N: n}, nil)
	return resp.Points, err
}

func (c *Client) FindPaths(starts, ends []geom.Vec3, searchSize geom.Vec3, mode, style int) ([]geom.Vec3, error) {
	return c.paths(starts, ends, searchSize, mode, style, false)
}

func (c *Client) FindPathsParallel(starts, ends []geom.Vec3, searchSize geom.Vec3, mode, style int) ([]geom.Vec3, error) {
	return c.paths(starts, ends, searchSize, mode, style, true)
}

func (c *Client) paths(starts, ends []geom.Vec3, searchSize geom.Vec3, mode, style int, parallel bool) ([]geom.Vec3, error) {
	resp, err := c.call(request{
		Op:         opPaths,
		Starts:     starts,
		Ends:       ends,
		SearchSize: searchSize,
		Mode:       mode,
		Style:      style,
		Parallel:   parallel,
	}, nil)
	return resp.Points, err
}

func (c *Client) Contours() ([]geom.Vec3, []int, error) {
	resp, err := c.call(request{Op: opContours}, nil)
	return resp.Points, resp.Sizes, err
}

func (c *Client) RawContours() ([]geom.Vec3, []int, error) {
	resp, err := c.call(request{Op: opRawContours}, nil)
	return resp.Points, resp.Sizes, err
}

func (c *Client) TrianglePolygons() ([]geom.Vec3, error) {
	resp, err := c.call(request{Op: opPolygons}, nil)
	return resp.Points, err
}
