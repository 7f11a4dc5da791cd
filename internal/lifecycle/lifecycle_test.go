package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-curator/internal/models"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"raw":       StatusRaw,
		"RAW":       StatusRaw,
		"new":       StatusRaw,
		" Draft ":   StatusDraft,
		"editing":   StatusDraft,
		"READY":     StatusReady,
		"approved":  StatusReady,
		"pushed":    StatusPushed,
		"Published": StatusPushed,
	}
	for input, want := range cases {
		got, ok := Normalize(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, got)
	}

	_, ok := Normalize("garbage")
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(StatusPushed))
	assert.False(t, Valid("pushed")) // en reposo solo vale el canónico
	assert.False(t, Valid(""))
}

func TestCaptureOnPushFromRaw(t *testing.T) {
	now := time.Now()
	p := &models.Product{LifecycleStatus: StatusRaw, PriceKrw: 30000}

	set := CaptureOnPush(p, StatusPushed, now)
	require.NotNil(t, set)

	assert.Equal(t, int64(30000), set["source_baseline_price_krw"])
	assert.Equal(t, int64(30000), set["source_last_checked_price_krw"])
	assert.Equal(t, true, set["source_last_checked_in_stock"])
	assert.Equal(t, now, set["source_last_checked_at"])
	assert.Equal(t, false, set["source_price_changed"])
	assert.Equal(t, false, set["source_out_of_stock"])
}

// Re-afirmar PUSHED con línea base existente no toca nada: los push
// repetidos son idempotentes respecto al estado de monitoreo.
func TestCaptureOnPushIsIdempotent(t *testing.T) {
	p := &models.Product{
		LifecycleStatus:        StatusPushed,
		PriceKrw:               45000,
		SourceBaselinePriceKrw: 30000,
	}

	set := CaptureOnPush(p, StatusPushed, time.Now())
	assert.Nil(t, set)
}

// Un producto PUSHED que nunca capturó línea base la captura al re-afirmar.
func TestCaptureOnPushBackfillsMissingBaseline(t *testing.T) {
	p := &models.Product{LifecycleStatus: StatusPushed, PriceKrw: 12000}

	set := CaptureOnPush(p, StatusPushed, time.Now())
	require.NotNil(t, set)
	assert.Equal(t, int64(12000), set["source_baseline_price_krw"])
}

func TestCaptureOnlyFiresTowardPushed(t *testing.T) {
	p := &models.Product{LifecycleStatus: StatusRaw, PriceKrw: 30000}

	assert.Nil(t, CaptureOnPush(p, StatusDraft, time.Now()))
	assert.Nil(t, CaptureOnPush(p, StatusReady, time.Now()))
	assert.Nil(t, CaptureOnPush(p, StatusRaw, time.Now()))
}

// Al salir de PUSHED y volver a entrar, la línea base se recaptura con el
// precio vigente en ese momento.
func TestCaptureOnReentry(t *testing.T) {
	p := &models.Product{
		LifecycleStatus:        StatusDraft, // salió de PUSHED
		PriceKrw:               52000,
		SourceBaselinePriceKrw: 30000,
	}

	set := CaptureOnPush(p, StatusPushed, time.Now())
	require.NotNil(t, set)
	assert.Equal(t, int64(52000), set["source_baseline_price_krw"])
}
