package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMock_SetAndAdvance(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMock(start)
	assert.Equal(t, start, m.Now())

	m.Advance(49 * time.Hour)
	assert.Equal(t, start.Add(49*time.Hour), m.Now())

	later := start.AddDate(0, 1, 0)
	m.Set(later)
	assert.Equal(t, later, m.Now())
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := Real{}.Now()
	assert.False(t, got.Before(before))
}
