package engine

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/keyfire/keyfire/pkg/schema"
)

// jitterDuration returns a uniformly random duration in [0, maxMs]
// milliseconds. It draws from crypto/rand so automation timing is not
// trivially fingerprinted by a predictable PRNG sequence.
func jitterDuration(maxMs int64) time.Duration {
	if maxMs <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(maxMs+1))
	if err != nil {
		// crypto/rand failure leaves us with no safe entropy; skip the
		// jitter rather than fall back to a predictable source.
		return 0
	}
	return time.Duration(n.Int64()) * time.Millisecond
}

// stepJitter picks the jitter bound for a step: the step's own
// jitter_ms wins, with the macro-level default layered underneath when
// randomize_delay is on.
func stepJitter(m *schema.Macro, s *schema.Step) time.Duration {
	if s.JitterMs > 0 {
		return jitterDuration(s.JitterMs)
	}
	if m.RandomizeDelay && m.DelayJitterMs > 0 {
		return jitterDuration(m.DelayJitterMs)
	}
	return 0
}
