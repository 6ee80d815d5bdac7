package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRegistration(t *testing.T) {
	b, err := EncodeRegistration("alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"set_agent","player_name":"alice"}`, string(b))
}

func TestEncodeCommand(t *testing.T) {
	b, err := EncodeCommand(Command{Kind: ActionMoveForward, Value: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"action","action":"move_forward","value":0.5}`, string(b))

	b, err = EncodeCommand(Command{Kind: ActionJump})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"action","action":"jump","value":0}`, string(b))

	b, err = EncodeCommand(SpawnMob("ZOMBIE"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"action","action":"spawn_mob","mob_type":"ZOMBIE"}`, string(b))
}

func TestDecodeServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ServerMessage
		wantErr error
	}{
		{
			name: "success ack",
			raw:  `{"status":"success","message":"agent set"}`,
			want: &Ack{Outcome: OutcomeSuccess, Detail: "agent set"},
		},
		{
			name: "error ack",
			raw:  `{"status":"error","message":"boom"}`,
			want: &Ack{Outcome: OutcomeError, Detail: "boom"},
		},
		{
			name: "success ack without message",
			raw:  `{"status":"success"}`,
			want: &Ack{Outcome: OutcomeSuccess, Detail: "Success"},
		},
		{
			name: "error ack without message",
			raw:  `{"status":"error"}`,
			want: &Ack{Outcome: OutcomeError, Detail: "Unknown error"},
		},
		{
			name: "error ack with numeric message",
			raw:  `{"status":"error","message":42}`,
			want: &Ack{Outcome: OutcomeError, Detail: "42"},
		},
		{
			name: "error ack with null message",
			raw:  `{"status":"error","message":null}`,
			want: &Ack{Outcome: OutcomeError, Detail: "Unknown error"},
		},
		{
			name: "observation",
			raw:  `{"agent":{"health":18.5,"food":20},"nearby_mobs":[{"type":"ZOMBIE","distance":3.2,"health":10}]}`,
			want: &Observation{AgentHealth: 18.5, NearbyMobs: []Mob{{Type: "ZOMBIE", Distance: 3.2, Health: 10}}},
		},
		{
			name: "observation with no mobs",
			raw:  `{"agent":{"health":20},"nearby_mobs":[]}`,
			want: &Observation{AgentHealth: 20, NearbyMobs: []Mob{}},
		},
		{
			name: "agent without nearby_mobs",
			raw:  `{"agent":{"health":20}}`,
			want: &Unrecognized{Raw: `{"agent":{"health":20}}`},
		},
		{
			name: "unknown json",
			raw:  `{"hello":"world"}`,
			want: &Unrecognized{Raw: `{"hello":"world"}`},
		},
		{
			name:    "plain text",
			raw:     `server is ready`,
			want:    &Unrecognized{Raw: `server is ready`},
			wantErr: ErrDecode,
		},
		{
			name:    "truncated json",
			raw:     `{"status":`,
			want:    &Unrecognized{Raw: `{"status":`},
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeServerMessage([]byte(tt.raw))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObservationNearest(t *testing.T) {
	msg, err := DecodeServerMessage([]byte(`{"agent":{"health":5.0},"nearby_mobs":[` +
		`{"type":"ZOMBIE","distance":3.2,"health":10},` +
		`{"type":"SKELETON","distance":1.1,"health":8}]}`))
	require.NoError(t, err)
	obs, ok := msg.(*Observation)
	require.True(t, ok)

	mob, ok := obs.Nearest()
	require.True(t, ok)
	assert.Equal(t, Mob{Type: "SKELETON", Distance: 1.1, Health: 8}, mob)
}

func TestObservationNearestTieKeepsFirst(t *testing.T) {
	obs := &Observation{NearbyMobs: []Mob{
		{Type: "CREEPER", Distance: 4},
		{Type: "SPIDER", Distance: 2},
		{Type: "ZOMBIE", Distance: 2},
		{Type: "SKELETON", Distance: 2},
	}}
	mob, ok := obs.Nearest()
	require.True(t, ok)
	assert.Equal(t, "SPIDER", mob.Type)
}

func TestObservationNearestEmpty(t *testing.T) {
	_, ok := (&Observation{AgentHealth: 20}).Nearest()
	assert.False(t, ok)
}
