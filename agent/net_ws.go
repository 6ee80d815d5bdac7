package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	closeGrace = time.Second // 发出关闭帧后等待服务端回应的时间
	readLimit  = 1 << 20     // 1MB
)

// WSConn gorilla 连接的轻量包装：串行化写，关闭幂等
type WSConn struct {
	ws        *websocket.Conn
	mu        sync.Mutex
	closeOnce sync.Once
	closing   atomic.Bool
}

func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

// WriteText 发送一条文本消息；gorilla 只允许一个并发写者，这里统一加锁
func (c *WSConn) WriteText(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// Close 发送正常关闭帧，服务端未在 closeGrace 内回应则强制断开
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		err = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		time.AfterFunc(closeGrace, func() { _ = c.ws.Close() })
	})
	return err
}

// Closing 是否已由本端发起关闭
func (c *WSConn) Closing() bool { return c.closing.Load() }

// Dial 连接到服务端，失败时包裹 ErrTransport
func Dial(ctx context.Context, endpoint string) (*WSConn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrTransport, endpoint, err)
	}
	ws.SetReadLimit(readLimit)
	return NewWSConn(ws), nil
}

// RunSession 运行一次完整会话：连接 → OnOpen → 读循环分发 → OnClose
// 不重连；连接级失败以 ErrTransport 返回。ctx 取消时主动关闭连接并等待发射器退出
func RunSession(ctx context.Context, cfg Config, h *Handler) error {
	conn, err := Dial(ctx, cfg.Endpoint())
	if err != nil {
		h.OnError(err)
		return err
	}
	return Serve(ctx, conn, h)
}

// Serve 在已建立的连接上驱动 Handler，返回时连接已关闭
func Serve(ctx context.Context, conn *WSConn, h *Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.ws.Close()

	// ctx 结束（外部取消或读循环退出）时发起关闭
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if _, err := h.OnOpen(ctx, conn); err != nil {
		h.OnError(err)
	}

	var result error
	for {
		_, payload, err := conn.ws.ReadMessage()
		if err == nil {
			h.OnMessage(payload)
			continue
		}
		var ce *websocket.CloseError
		switch {
		case errors.As(err, &ce):
			h.OnClose(ce.Code, ce.Text)
		case conn.Closing():
			h.OnClose(websocket.CloseNormalClosure, "closed by client")
		default:
			result = fmt.Errorf("%w: read: %w", ErrTransport, err)
			h.OnError(result)
			h.OnClose(websocket.CloseAbnormalClosure, err.Error())
		}
		break
	}

	cancel()
	if run := h.Run(); run != nil {
		if err := run.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			h.log.Warnf("action emitter stopped early: %v", err)
		}
	}
	return result
}
