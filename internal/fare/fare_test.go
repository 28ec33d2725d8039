package fare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriceDeterminism(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, int64(125), p.Price(100, true))
	assert.Equal(t, int64(90), p.Price(100, false))
	assert.Equal(t, int64(0), p.Price(0, true))
	assert.Equal(t, int64(0), p.Price(0, false))
}

func TestPriceRoundsTiesAwayFromZero(t *testing.T) {
	p := DefaultPolicy()

	// 10 * 1.25 = 12.5 -> 13
	assert.Equal(t, int64(13), p.Price(10, true))
	// 5 * 0.9 = 4.5 -> 5
	assert.Equal(t, int64(5), p.Price(5, false))
	// 2 * 0.9 = 1.8 -> 2
	assert.Equal(t, int64(2), p.Price(2, false))
}

func TestPriceIsPure(t *testing.T) {
	p := DefaultPolicy()
	for i := 0; i < 10; i++ {
		assert.Equal(t, p.Price(15000, true), p.Price(15000, true))
	}
}

func TestNewPolicyFallsBackOnZeroMultipliers(t *testing.T) {
	p := NewPolicy(0, 0)
	assert.Equal(t, DefaultPolicy().PeakMultiplier, p.PeakMultiplier)
	assert.Equal(t, DefaultPolicy().OffPeakMultiplier, p.OffPeakMultiplier)

	custom := NewPolicy(1.5, 0.8)
	assert.Equal(t, int64(150), custom.Price(100, true))
	assert.Equal(t, int64(80), custom.Price(100, false))
}

func TestIsPeakHourWindows(t *testing.T) {
	p := DefaultPolicy()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

	at := func(hour, minute int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	cases := []struct {
		hour, minute int
		want         bool
	}{
		{6, 59, false},
		{7, 0, true},
		{9, 59, true},
		{10, 0, false},
		{16, 59, false},
		{17, 0, true},
		{19, 59, true},
		{20, 0, false},
		{0, 30, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, p.IsPeakHour(at(tc.hour, tc.minute)),
			"hour=%d minute=%d", tc.hour, tc.minute)
	}
}
