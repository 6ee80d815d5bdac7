package agent

import "math/rand"

// ActionKind 动作种类
type ActionKind string

const (
	ActionMoveForward  ActionKind = "move_forward"
	ActionMoveBackward ActionKind = "move_backward"
	ActionTurnLeft     ActionKind = "turn_left"
	ActionTurnRight    ActionKind = "turn_right"
	ActionJump         ActionKind = "jump"
	ActionAttack       ActionKind = "attack"
	ActionSpawnMob     ActionKind = "spawn_mob"
)

// Command 一条出站命令，构造后不再修改
// Value 对 spawn_mob 无意义，MobType 只对 spawn_mob 有意义
type Command struct {
	Kind    ActionKind
	Value   float64
	MobType string
}

// SpawnMob 构造 spawn_mob 命令
func SpawnMob(mobType string) Command {
	return Command{Kind: ActionSpawnMob, MobType: mobType}
}

// IsMovement 是否属于移动类动作
func (c Command) IsMovement() bool {
	switch c.Kind {
	case ActionMoveForward, ActionMoveBackward, ActionTurnLeft, ActionTurnRight, ActionJump:
		return true
	}
	return false
}

var (
	// MovementActions 移动集合；转向单位为角度
	MovementActions = []Command{
		{Kind: ActionMoveForward, Value: 0.5},
		{Kind: ActionMoveBackward, Value: 0.2},
		{Kind: ActionTurnLeft, Value: 15},
		{Kind: ActionTurnRight, Value: 15},
		{Kind: ActionJump, Value: 0},
	}
	// CombatActions 战斗集合
	CombatActions = []Command{
		{Kind: ActionAttack, Value: 0},
	}
)

// Picker 按移动偏置随机选择动作：先以 bias 概率决定移动/战斗，再在集合内均匀选择
type Picker struct {
	rng      *rand.Rand
	bias     float64
	movement []Command
	combat   []Command
}

// NewPicker rng 由调用方提供，测试可用固定种子复现序列
func NewPicker(rng *rand.Rand, bias float64) *Picker {
	return &Picker{rng: rng, bias: bias, movement: MovementActions, combat: CombatActions}
}

// Next 抽取下一条命令
func (p *Picker) Next() Command {
	set := p.combat
	if p.rng.Float64() < p.bias {
		set = p.movement
	}
	return set[p.rng.Intn(len(set))]
}
