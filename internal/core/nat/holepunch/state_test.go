package holepunch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeerPunchState_NextDelay(t *testing.T) {
	base, max := 5*time.Second, 30*time.Second
	st := &peerPunchState{}

	var got []time.Duration
	for i := 0; i < 5; i++ {
		d := st.nextDelay(base, max, 2)
		st.failures++
		st.delay = d
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}, got)

	st.reset()
	assert.Equal(t, base, st.nextDelay(base, max, 2))
	assert.True(t, st.nextEligible.IsZero())
}

func TestPeerPunchState_MultiplierOne(t *testing.T) {
	st := &peerPunchState{failures: 3, delay: 5 * time.Second}
	assert.Equal(t, 5*time.Second, st.nextDelay(5*time.Second, time.Minute, 1))
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{BaseBackoff: time.Minute, MaxBackoff: time.Second}
	cfg.Validate()

	assert.Equal(t, time.Minute, cfg.MaxBackoff)
	assert.Equal(t, DefaultConfig().MaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, DefaultConfig().StartRate, cfg.StartRate)
}
