package clock_test

import (
	"testing"
	"time"

	"github.com/oliver-os/canvas/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestFake_FiresInOrder(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))

	var fired []string
	fake.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "c") })
	fake.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	fake.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })

	fake.Advance(150 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)

	fake.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, 0, fake.Pending())
}

func TestFake_StopPreventsFiring(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))

	fired := false
	timer := fake.AfterFunc(100*time.Millisecond, func() { fired = true })

	assert.True(t, timer.Stop())
	fake.Advance(time.Second)

	assert.False(t, fired)
	// Stopping twice reports no effect.
	assert.False(t, timer.Stop())
}

func TestFake_CallbackCanScheduleTimers(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))

	var fired []string
	fake.AfterFunc(100*time.Millisecond, func() {
		fired = append(fired, "outer")
		fake.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "inner") })
	})

	// One Advance covers both the outer timer and the one it schedules.
	fake.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"outer", "inner"}, fired)
}

func TestFake_TiesFireInSchedulingOrder(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))

	var fired []int
	for i := 0; i < 5; i++ {
		i := i
		fake.AfterFunc(100*time.Millisecond, func() { fired = append(fired, i) })
	}

	fake.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, fired)
}
