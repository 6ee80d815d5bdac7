package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State 连接状态：只有已连接/未连接两种，不做重连
type State int32

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Handler 连接生命周期处理：握手注册、启动发射器、记录入站消息
// OnOpen/OnMessage/OnError/OnClose 由传输层在同一个协程中依次调用
type Handler struct {
	cfg     Config
	base    *zap.SugaredLogger
	log     *zap.SugaredLogger
	rng     *rand.Rand
	sleep   SleepFunc
	metrics *SessionMetrics

	state   atomic.Int32
	session string
	run     *Run
}

// Option 配置 Handler 的可注入依赖
type Option func(*Handler)

// WithLogger 指定 logger，默认使用全局 Log
func WithLogger(l *zap.SugaredLogger) Option {
	return func(h *Handler) { h.base = l }
}

// WithRand 指定随机源，便于复现动作序列
func WithRand(r *rand.Rand) Option {
	return func(h *Handler) { h.rng = r }
}

// WithSleep 替换等待实现，测试中可跳过真实时钟
func WithSleep(s SleepFunc) Option {
	return func(h *Handler) { h.sleep = s }
}

// NewHandler 创建处理器，cfg 在整个生命周期内只读
func NewHandler(cfg Config, opts ...Option) *Handler {
	h := &Handler{cfg: cfg, metrics: &SessionMetrics{}}
	for _, opt := range opts {
		opt(h)
	}
	h.base = loggerOr(h.base)
	h.log = h.base
	if h.sleep == nil {
		h.sleep = SleepContext
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return h
}

// State 当前连接状态，可在任意协程读取
func (h *Handler) State() State { return State(h.state.Load()) }

// Metrics 本次会话的统计
func (h *Handler) Metrics() *SessionMetrics { return h.metrics }

// Run 发射器句柄；注册成功前为 nil
func (h *Handler) Run() *Run { return h.run }

// OnOpen 连接建立：等待服务端准备玩家 → 发送注册 → 启动发射器
// 注册发送失败直接返回，由调用方交给 OnError，不重试
func (h *Handler) OnOpen(ctx context.Context, conn Conn) (*Run, error) {
	h.state.Store(int32(StateConnected))
	h.session = uuid.NewString()
	h.log = h.base.With("session", h.session)
	h.log.Info("connection established with game server")

	if err := h.sleep(ctx, h.cfg.OpenDelay); err != nil {
		return nil, err
	}

	b, err := EncodeRegistration(h.cfg.PlayerName)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteText(b); err != nil {
		return nil, fmt.Errorf("%w: send set_agent: %w", ErrTransport, err)
	}
	h.log.Infof("sent command to set agent: %s", h.cfg.PlayerName)

	em := &Emitter{
		Config:  h.cfg.EmitterConfig(),
		Rand:    h.rng,
		Sleep:   h.sleep,
		Log:     h.log,
		Metrics: h.metrics,
	}
	h.run = em.Start(ctx, conn)
	return h.run, nil
}

// OnMessage 解析并记录入站消息；任何输入都不会触发回复，也不返回错误
func (h *Handler) OnMessage(raw []byte) {
	h.metrics.IncReceived()
	msg, err := DecodeServerMessage(raw)
	if err != nil {
		h.metrics.IncDecodeFailure()
		h.log.With("error", err).Infof("non-JSON message from server: %s", raw)
		return
	}

	switch m := msg.(type) {
	case *Ack:
		switch m.Outcome {
		case OutcomeSuccess:
			h.metrics.IncAckSuccess()
			h.log.Infof("server confirmed: %s", m.Detail)
		case OutcomeError:
			h.metrics.IncAckError()
			h.log.Errorf("server reported an error: %s", m.Detail)
		default:
			h.log.Warnf("server replied with unknown status %q: %s", m.Outcome, m.Detail)
		}
	case *Observation:
		h.metrics.IncObservation()
		h.log.Infof("observations received - agent: health=%.1f, nearby mobs: %d", m.AgentHealth, len(m.NearbyMobs))
		if mob, ok := m.Nearest(); ok {
			h.log.Infof("closest mob: %s at %.1f blocks, health=%.1f", mob.Type, mob.Distance, mob.Health)
		}
	case *Unrecognized:
		h.metrics.IncUnrecognized()
		h.log.Debugf("unrecognized message from server: %s", m.Raw)
	}
}

// OnError 只记录，不关闭也不重试
func (h *Handler) OnError(err error) {
	if errors.Is(err, context.Canceled) {
		h.log.Debugf("operation cancelled: %v", err)
		return
	}
	h.log.Errorf("websocket error: %v", err)
}

// OnClose 连接关闭：切回未连接状态并输出会话统计
func (h *Handler) OnClose(code int, reason string) {
	h.state.Store(int32(StateDisconnected))
	h.log.Infof("connection closed. code: %d, message: %s", code, reason)
	h.log.Infow("session metrics", "metrics", h.metrics.Snapshot())
}
