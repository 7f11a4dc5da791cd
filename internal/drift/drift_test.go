package drift

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateIsDeterministicWithinADay(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := now.Add(10 * time.Hour) // mismo día calendario

	first := Simulate("65f1c0ffee65f1c0ffee65f1", "coupang", "https://coupang.com/p/1", 30000, now)
	second := Simulate("65f1c0ffee65f1c0ffee65f1", "coupang", "https://coupang.com/p/1", 30000, later)

	assert.Equal(t, first, second)
}

func TestSimulateVariesAcrossDays(t *testing.T) {
	day1 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	// Con suficientes identidades, al menos una cambia entre días.
	changed := false
	for i := 0; i < 50; i++ {
		identity := fmt.Sprintf("product-%d", i)
		a := Simulate(identity, "gmarket", "https://gmarket.co.kr/p", 30000, day1)
		b := Simulate(identity, "gmarket", "https://gmarket.co.kr/p", 30000, day2)
		if a != b {
			changed = true
			break
		}
	}
	assert.True(t, changed)
}

func TestSimulateVariesAcrossIdentities(t *testing.T) {
	now := time.Now()
	distinct := make(map[Result]bool)
	for i := 0; i < 50; i++ {
		r := Simulate(fmt.Sprintf("product-%d", i), "coupang", "https://coupang.com/p", 30000, now)
		distinct[r] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestSimulateInvariants(t *testing.T) {
	now := time.Now()
	for i := 0; i < 200; i++ {
		r := Simulate(fmt.Sprintf("product-%d", i), "11st", "https://11st.co.kr/p", 30000, now)

		require.GreaterOrEqual(t, r.NewPriceKrw, int64(1))

		if r.OutOfStock {
			// Sin stock no se sortea cambio de precio
			assert.Equal(t, int64(30000), r.NewPriceKrw)
			assert.False(t, r.PriceChanged)
			continue
		}

		if r.PriceChanged && r.NewPriceKrw != 30000 {
			// Magnitud dentro de [3%, 12%]
			delta := float64(r.NewPriceKrw-30000) / 30000
			if delta < 0 {
				delta = -delta
			}
			assert.GreaterOrEqual(t, delta, 0.029)
			assert.LessOrEqual(t, delta, 0.121)
		}
		if !r.PriceChanged {
			assert.Equal(t, int64(30000), r.NewPriceKrw)
		}
	}
}

func TestSimulateTinyBaselineNeverBelowOne(t *testing.T) {
	now := time.Now()
	for i := 0; i < 100; i++ {
		r := Simulate(fmt.Sprintf("p-%d", i), "s", "u", 1, now)
		assert.GreaterOrEqual(t, r.NewPriceKrw, int64(1))
	}
}

func TestDayKey(t *testing.T) {
	epoch := time.UnixMilli(0).UTC()
	assert.Equal(t, int64(0), DayKey(epoch))
	assert.Equal(t, int64(0), DayKey(epoch.Add(23*time.Hour)))
	assert.Equal(t, int64(1), DayKey(epoch.Add(25*time.Hour)))
}
