package agent

import (
	"sync/atomic"
)

// SessionMetrics 记录一次连接期间的收发统计（连接关闭时输出）
type SessionMetrics struct {
	CommandsSent     int64 // 已发送的动作命令数（含 spawn_mob）
	MessagesReceived int64 // 收到的入站消息数
	AcksSuccess      int64 // status=success 的确认
	AcksError        int64 // status=error 的确认
	Observations     int64 // 观测快照
	DecodeFailures   int64 // 非 JSON 消息
	Unrecognized     int64 // 合法 JSON 但结构未知
}

func (m *SessionMetrics) IncSent() { atomic.AddInt64(&m.CommandsSent, 1) }
func (m *SessionMetrics) IncReceived() { atomic.AddInt64(&m.MessagesReceived, 1) }
func (m *SessionMetrics) IncAckSuccess() { atomic.AddInt64(&m.AcksSuccess, 1) }
func (m *SessionMetrics) IncAckError() { atomic.AddInt64(&m.AcksError, 1) }
func (m *SessionMetrics) IncObservation() { atomic.AddInt64(&m.Observations, 1) }
func (m *SessionMetrics) IncDecodeFailure() { atomic.AddInt64(&m.DecodeFailures, 1) }
func (m *SessionMetrics) IncUnrecognized() { atomic.AddInt64(&m.Unrecognized, 1) }

// Snapshot 返回只读副本，便于日志输出
func (m *SessionMetrics) Snapshot() map[string]any {
	return map[string]any{
		"commands_sent":     atomic.LoadInt64(&m.CommandsSent),
		"messages_received": atomic.LoadInt64(&m.MessagesReceived),
		"acks_success":      atomic.LoadInt64(&m.AcksSuccess),
		"acks_error":        atomic.LoadInt64(&m.AcksError),
		"observations":      atomic.LoadInt64(&m.Observations),
		"decode_failures":   atomic.LoadInt64(&m.DecodeFailures),
		"unrecognized":      atomic.LoadInt64(&m.Unrecognized),
	}
}
