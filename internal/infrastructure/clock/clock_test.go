package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_NowIsUTC(t *testing.T) {
	c := New()
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.GreaterOrEqual(t, c.Since(time.Now().Add(-time.Second)), time.Second)
}

func TestManualClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())

	c.Advance(72 * time.Hour)
	assert.Equal(t, start.Add(72*time.Hour), c.Now())
	assert.Equal(t, 72*time.Hour, c.Since(start))

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
