package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errConnClosed = errors.New("connection closed")

// fakeConn 按顺序记录发送内容；failAt>0 时第 failAt 次写入失败
type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	failAt int
	writes int
	closed bool
}

func (c *fakeConn) WriteText(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	if c.closed || (c.failAt > 0 && c.writes >= c.failAt) {
		return errConnClosed
	}
	c.sent = append(c.sent, append([]byte(nil), b...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.sent))
	for _, b := range c.sent {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			panic(err)
		}
		out = append(out, m)
	}
	return out
}

// sleepRecorder 不真正等待，只记录请求的时长
type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	s.mu.Unlock()
	return ctx.Err()
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PlayerName = "alice"
	return cfg
}
