package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickerMovementBias(t *testing.T) {
	p := NewPicker(rand.New(rand.NewSource(42)), DefaultMovementBias)

	const draws = 10000
	movement := 0
	for i := 0; i < draws; i++ {
		if p.Next().IsMovement() {
			movement++
		}
	}
	frac := float64(movement) / draws
	assert.InDelta(t, 0.7, frac, 0.05, "movement fraction %.3f", frac)
}

func TestPickerBiasExtremes(t *testing.T) {
	always := NewPicker(rand.New(rand.NewSource(1)), 1)
	never := NewPicker(rand.New(rand.NewSource(1)), 0)
	for i := 0; i < 500; i++ {
		assert.True(t, always.Next().IsMovement())
		assert.Equal(t, ActionAttack, never.Next().Kind)
	}
}

func TestPickerCoversMovementSet(t *testing.T) {
	p := NewPicker(rand.New(rand.NewSource(7)), 1)
	seen := map[ActionKind]float64{}
	for i := 0; i < 1000; i++ {
		c := p.Next()
		seen[c.Kind] = c.Value
	}
	assert.Equal(t, map[ActionKind]float64{
		ActionMoveForward:  0.5,
		ActionMoveBackward: 0.2,
		ActionTurnLeft:     15,
		ActionTurnRight:    15,
		ActionJump:         0,
	}, seen)
}

func TestPickerSameSeedSameSequence(t *testing.T) {
	a := NewPicker(rand.New(rand.NewSource(99)), DefaultMovementBias)
	b := NewPicker(rand.New(rand.NewSource(99)), DefaultMovementBias)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}
