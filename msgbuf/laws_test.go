package msgbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestLawFrameRoundTrip checks the fundamental invariant of the ring:
// any sequence of frames that individually fit survive a Give/Take
// round trip byte-for-byte, in FIFO order, regardless of how they
// interleave with the ring wrapping around.
func TestLawFrameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(8, 64).Draw(t, "limit")
		k := newTestKernel()
		buf := New(k, limit)

		frames := rapid.SliceOfN(
			rapid.SliceOfN(rapid.Byte(), 0, limit-prefixSize),
			0, 8,
		).Draw(t, "frames")

		var sent [][]byte
		for _, f := range frames {
			if prefixSize+len(f) > buf.Space() {
				continue
			}
			n := buf.Give(f)
			if len(f) == 0 {
				assert.Equal(t, 0, n)
				continue
			}
			assert.Equal(t, len(f), n)
			sent = append(sent, f)
		}

		for _, want := range sent {
			dst := make([]byte, len(want))
			got := buf.Take(dst)
			assert.Equal(t, len(want), got)
			assert.Equal(t, want, dst)
		}
		assert.Equal(t, 0, buf.Count())
	})
}
