package cohorts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAssignDeterministic(t *testing.T) {
	id := uuid.MustParse("3f6c5a52-0c7e-4a9a-9a10-66a5a2a0c0de")
	first := Assign(id, 5)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Assign(id, 5))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 5)
}

func TestAssignSpreadsUsers(t *testing.T) {
	const n = 5
	counts := make([]int, n)
	for i := 0; i < 1000; i++ {
		counts[Assign(uuid.New(), n)]++
	}
	for c, got := range counts {
		// loose bound: a uniform hash should not starve or flood a cohort
		assert.Greater(t, got, 100, "cohort %d underpopulated", c)
		assert.Less(t, got, 300, "cohort %d overpopulated", c)
	}
}

func TestAssignSingleCohort(t *testing.T) {
	assert.Equal(t, 0, Assign(uuid.New(), 1))
	assert.Equal(t, 0, Assign(uuid.New(), 0))
}

func TestForDay(t *testing.T) {
	tests := []struct {
		day  time.Weekday
		n    int
		want int
	}{
		{time.Monday, 5, 0},
		{time.Tuesday, 5, 1},
		{time.Friday, 5, 4},
		{time.Saturday, 5, 4}, // weekend wraps to last cohort
		{time.Sunday, 5, 4},
		{time.Monday, 2, 0},
		{time.Tuesday, 2, 1},
		{time.Wednesday, 2, 1}, // trailing days stick to last cohort
		{time.Sunday, 2, 1},
		{time.Wednesday, 1, 0},
		{time.Sunday, 7, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ForDay(tt.day, tt.n), "day=%s n=%d", tt.day, tt.n)
	}
}
