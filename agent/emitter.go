package agent

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Conn 发射器与握手使用的连接句柄
// WriteText 由传输层保证并发安全，调用方不再额外加锁
type Conn interface {
	WriteText(b []byte) error
	Close() error
}

// SleepFunc 可注入的等待函数；ctx 取消时应尽快返回 ctx.Err()
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext 基于真实时钟的 SleepFunc
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// EmitterConfig 动作发射参数
type EmitterConfig struct {
	Actions       int           // 随机动作次数，不含首个 spawn_mob
	MinDelay      time.Duration // 每个动作之后的随机等待下限
	MaxDelay      time.Duration // 上限
	StartDelay    time.Duration
	SpawnDelay    time.Duration
	SpawnMobType  string
	MovementBias  float64 // 选择移动类动作的概率
	CloseOnFinish bool
}

// Emitter 在独立协程中发送一段有限的随机命令序列
type Emitter struct {
	Config  EmitterConfig
	Rand    *rand.Rand // 为 nil 时使用时间种子
	Sleep   SleepFunc  // 为 nil 时使用 SleepContext
	Log     *zap.SugaredLogger
	Metrics *SessionMetrics
}

// Run 发射器的运行句柄，用于等待结束
type Run struct {
	done chan struct{}
	err  error
}

// Done 发射器结束时关闭
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait 阻塞至发射器结束，返回其错误
func (r *Run) Wait() error {
	<-r.done
	return r.err
}

// Start 启动独立协程执行 Emit，立即返回句柄
func (e *Emitter) Start(ctx context.Context, conn Conn) *Run {
	r := &Run{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.err = e.Emit(ctx, conn)
	}()
	return r
}

// Emit 同步执行：等待 → spawn_mob → 等待 → N 次随机动作
// 任意一次发送失败即终止剩余循环，不重试
func (e *Emitter) Emit(ctx context.Context, conn Conn) error {
	cfg := e.Config
	log := loggerOr(e.Log)
	sleep := e.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	rng := e.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	metrics := e.Metrics
	if metrics == nil {
		metrics = &SessionMetrics{}
	}

	log.Info("starting periodic message sending (random actions)")
	if err := sleep(ctx, cfg.StartDelay); err != nil {
		return err
	}

	// 先生成一个怪物作为测试目标
	if err := send(conn, SpawnMob(cfg.SpawnMobType), log, metrics); err != nil {
		return err
	}
	if err := sleep(ctx, cfg.SpawnDelay); err != nil {
		return err
	}

	picker := NewPicker(rng, cfg.MovementBias)
	for i := 0; i < cfg.Actions; i++ {
		if err := send(conn, picker.Next(), log, metrics); err != nil {
			return err
		}
		if err := sleep(ctx, randomDelay(rng, cfg.MinDelay, cfg.MaxDelay)); err != nil {
			return err
		}
	}
	log.Info("periodic message sending finished")

	if cfg.CloseOnFinish {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("%w: close: %w", ErrTransport, err)
		}
	}
	return nil
}

func send(conn Conn, c Command, log *zap.SugaredLogger, metrics *SessionMetrics) error {
	b, err := EncodeCommand(c)
	if err != nil {
		return err
	}
	if err := conn.WriteText(b); err != nil {
		return fmt.Errorf("%w: send %s: %w", ErrTransport, c.Kind, err)
	}
	metrics.IncSent()
	if c.Kind == ActionSpawnMob {
		log.Infof("sent command: spawn_mob %s", c.MobType)
	} else {
		log.Infof("sent random command: %s (value: %g)", c.Kind, c.Value)
	}
	return nil
}

// randomDelay 在 [min, max] 内均匀取值
func randomDelay(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Float64()*float64(hi-lo))
}
