package drift

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

// Result es la deriva simulada de precio/stock para un día dado.
type Result struct {
	NewPriceKrw  int64
	OutOfStock   bool
	PriceChanged bool
}

// Probabilidades y magnitudes de la simulación.
const (
	outOfStockProb  = 0.15
	priceChangeProb = 0.25
	magnitudeMin    = 0.03
	magnitudeSpan   = 0.09 // rango [3%, 12%]
)

// DayKey colapsa el reloj a granularidad de día calendario: dentro del mismo
// día la simulación es estable, al día siguiente puede cambiar.
func DayKey(now time.Time) int64 {
	return now.UnixMilli() / 86_400_000
}

// Simulate decide la deriva de precio/stock de un producto publicado.
// Es una función pura de sus entradas más el día actual: misma identidad,
// misma línea base y mismo día producen siempre el mismo resultado. No toca
// almacenamiento; persistir el resultado es responsabilidad del caller.
func Simulate(identity, storeKey, sourceURL string, baselinePriceKrw int64, now time.Time) Result {
	seed := seedFor(identity, storeKey, sourceURL, DayKey(now))
	next := mulberry32(seed)

	if next() < outOfStockProb {
		return Result{NewPriceKrw: baselinePriceKrw, OutOfStock: true}
	}

	newPrice := baselinePriceKrw
	triggered := next() < priceChangeProb
	if triggered {
		magnitude := magnitudeMin + next()*magnitudeSpan
		if next() < 0.5 {
			magnitude = -magnitude
		}
		newPrice = int64(math.Round(float64(baselinePriceKrw) * (1 + magnitude)))
		if newPrice < 1 {
			newPrice = 1
		}
	}

	return Result{
		NewPriceKrw:  newPrice,
		PriceChanged: triggered || newPrice != baselinePriceKrw,
	}
}

// seedFor deriva una semilla de 32 bits a partir de la identidad del
// producto y la clave del día.
func seedFor(identity, storeKey, sourceURL string, dayKey int64) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s|%d", identity, storeKey, sourceURL, dayKey)
	return h.Sum32()
}

// mulberry32 es un generador determinista con estado de una sola palabra
// de 32 bits y buen avalancheo, suficiente para la simulación.
func mulberry32(seed uint32) func() float64 {
	state := seed
	return func() float64 {
		state += 0x6D2B79F5
		z := state
		z = (z ^ (z >> 15)) * (z | 1)
		z ^= z + (z^(z>>7))*(z|61)
		return float64(z^(z>>14)) / 4294967296.0
	}
}
