package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	var fired []string
	fake.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })
	fake.AfterFunc(time.Second, func() { fired = append(fired, "early") })

	fake.Advance(500 * time.Millisecond)
	assert.Empty(t, fired)
	assert.Equal(t, 2, fake.Pending())

	fake.Advance(2 * time.Second)
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Zero(t, fake.Pending())
}

func TestFakeTimerStop(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	called := false
	timer := fake.AfterFunc(time.Second, func() { called = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	fake.Advance(time.Minute)
	assert.False(t, called)
}

func TestFakeCallbackMayReschedule(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	count := 0
	var tick func()
	tick = func() {
		count++
		fake.AfterFunc(time.Second, tick)
	}
	fake.AfterFunc(time.Second, tick)

	fake.Advance(time.Second)
	fake.Advance(time.Second)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, fake.Pending())
}
