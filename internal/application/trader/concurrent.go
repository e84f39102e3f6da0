package trader

// concurrent.go: worker pool que puntúa ciudades en paralelo.
//
// Cada ciudad hace varias llamadas HTTP (pronóstico, series, un book por
// contrato); en paralelo el batch de 7 ciudades tarda lo que la más lenta.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// cityScore es el resultado de puntuar una ciudad. Los workers no tocan el
// RunReport ni el notifier: Run fusiona los resultados en orden.
type cityScore struct {
	city     domain.City
	bets     []domain.CandidateBet
	skipped  []domain.SkippedItem
	problems []problem
	err      error // la ciudad entera no se pudo puntuar
}

// problem es un skip con un error que merece log y notificación.
type problem struct {
	item domain.SkippedItem
	err  error
}

// scoreCitiesConcurrent puntúa cada ciudad en un worker pool y devuelve los
// resultados en el mismo orden que cities, para que el batch sea determinista.
//
// Si workers <= 0 usa runtime.NumCPU() × 2.
func (t *Trader) scoreCitiesConcurrent(ctx context.Context, cities []domain.City, date time.Time, workers int) []cityScore {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(cities) {
		workers = len(cities)
	}

	results := make([]cityScore, len(cities))
	workCh := make(chan int, len(cities))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				c := cities[idx]
				sc := cityScore{city: c}
				ci, ok := domain.LookupCity(c)
				if !ok {
					sc.skipped = append(sc.skipped, domain.SkippedItem{City: c, Reason: "unsupported city"})
				} else {
					sc.err = t.scoreCity(ctx, ci, date, &sc)
				}
				results[idx] = sc
			}
		}()
	}

	for idx := range cities {
		workCh <- idx
	}
	close(workCh)
	wg.Wait()

	slog.Debug("trade: concurrent scoring complete", "cities", len(cities), "workers", workers)
	return results
}
