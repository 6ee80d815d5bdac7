package agent

import (
	"encoding/json"
	"fmt"
)

// 出站消息类型
const (
	TypeSetAgent = "set_agent"
	TypeAction   = "action"
)

// RegistrationMessage 注册握手：将连接绑定到被控制的玩家
// 示例：{"type":"set_agent","player_name":"alice"}
type RegistrationMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name"`
}

// ActionMessage 普通动作
// 示例：{"type":"action","action":"move_forward","value":0.5}
type ActionMessage struct {
	Type   string  `json:"type"`
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}

// SpawnMessage spawn_mob 使用 mob_type 代替 value
// 示例：{"type":"action","action":"spawn_mob","mob_type":"ZOMBIE"}
type SpawnMessage struct {
	Type    string `json:"type"`
	Action  string `json:"action"`
	MobType string `json:"mob_type"`
}

// EncodeRegistration 编码注册消息
func EncodeRegistration(playerName string) ([]byte, error) {
	return json.Marshal(RegistrationMessage{Type: TypeSetAgent, PlayerName: playerName})
}

// EncodeCommand 按命令种类选择出站结构
func EncodeCommand(c Command) ([]byte, error) {
	if c.Kind == ActionSpawnMob {
		return json.Marshal(SpawnMessage{Type: TypeAction, Action: string(c.Kind), MobType: c.MobType})
	}
	return json.Marshal(ActionMessage{Type: TypeAction, Action: string(c.Kind), Value: c.Value})
}

// Outcome 服务端确认结果
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// ServerMessage 入站消息：*Ack、*Observation 或 *Unrecognized 之一
type ServerMessage interface {
	serverMessage()
}

// Ack 对上一条命令的确认：{"status":"success","message":"..."}
type Ack struct {
	Outcome Outcome
	Detail  string
}

// Mob 附近的实体
type Mob struct {
	Type     string  `json:"type"`
	Distance float64 `json:"distance"`
	Health   float64 `json:"health"`
}

// Observation 被控玩家的观测快照
type Observation struct {
	AgentHealth float64
	NearbyMobs  []Mob
}

// Unrecognized 非结构化或未知结构的消息，仅记录
type Unrecognized struct {
	Raw string
}

func (*Ack) serverMessage()          {}
func (*Observation) serverMessage()  {}
func (*Unrecognized) serverMessage() {}

// Nearest 返回距离最近的实体；距离相同时取列表中靠前的一个
func (o *Observation) Nearest() (Mob, bool) {
	if len(o.NearbyMobs) == 0 {
		return Mob{}, false
	}
	best := o.NearbyMobs[0]
	for _, m := range o.NearbyMobs[1:] {
		if m.Distance < best.Distance {
			best = m
		}
	}
	return best, true
}

// inboundMessage 入站 JSON 的宽松结构，用指针区分字段是否出现
type inboundMessage struct {
	Status  *string         `json:"status"`
	Message json.RawMessage `json:"message"`
	Agent   *struct {
		Health float64 `json:"health"`
	} `json:"agent"`
	NearbyMobs *[]Mob `json:"nearby_mobs"`
}

// DecodeServerMessage 解析入站文本
// 非 JSON 返回 *Unrecognized 与包裹 ErrDecode 的错误；
// 合法 JSON 但不属于已知结构时返回 *Unrecognized，错误为 nil
func DecodeServerMessage(raw []byte) (ServerMessage, error) {
	var in inboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Unrecognized{Raw: string(raw)}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch {
	case in.Status != nil:
		ack := &Ack{Outcome: Outcome(*in.Status)}
		switch {
		case len(in.Message) > 0 && string(in.Message) != "null":
			ack.Detail = ackDetail(in.Message)
		case ack.Outcome == OutcomeSuccess:
			ack.Detail = "Success"
		default:
			ack.Detail = "Unknown error"
		}
		return ack, nil
	case in.Agent != nil && in.NearbyMobs != nil:
		return &Observation{AgentHealth: in.Agent.Health, NearbyMobs: *in.NearbyMobs}, nil
	default:
		return &Unrecognized{Raw: string(raw)}, nil
	}
}

// ackDetail message 通常是字符串；其它类型按原始 JSON 文本展示
func ackDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
