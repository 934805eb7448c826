package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBeforeWraparound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		now := Ticks(rapid.Uint32().Draw(t, "now"))
		delta := rapid.Int32Range(1, 1<<30).Draw(t, "delta")

		future := now + Ticks(delta)
		assert.True(t, Before(now, future), "now should be before a tick strictly ahead of it, even across uint32 wraparound")
		assert.False(t, Before(future, now), "the reverse comparison must not also hold")
	})
}

func TestBeforeIsIrreflexive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		now := Ticks(rapid.Uint32().Draw(t, "now"))
		assert.False(t, Before(now, now))
	})
}
