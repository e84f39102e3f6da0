package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// SettlementUpdate es el estado final que se escribe para una posición pendiente.
type SettlementUpdate struct {
	Ticker       string
	TargetDate   time.Time
	Side         domain.Side
	Result       domain.SettlementResult
	ObservedHigh *float64
	ObservedLow  *float64
}

// Ledger persiste los trades y los runs.
type Ledger interface {
	// LogTrade agrega una fila de trade y devuelve su id.
	LogTrade(ctx context.Context, t domain.ExecutedTrade) (int64, error)

	// LogRun agrega una fila por batch.
	LogRun(ctx context.Context, r domain.RunSummary) error

	// ExistingPositions devuelve los pares (ticker, side) del día, sin las
	// filas de dry run.
	ExistingPositions(ctx context.Context, date time.Time) ([]domain.Position, error)

	// CityBetCounts cuenta las apuestas reales por ciudad para el día.
	CityBetCounts(ctx context.Context, date time.Time) (map[domain.City]int, error)

	// PendingTrades devuelve los trades reales ejecutados aún pendientes del día.
	PendingTrades(ctx context.Context, date time.Time) ([]domain.ExecutedTrade, error)

	// UpdateSettlement sólo toca filas pendientes: una segunda llamada con la
	// misma clave no hace nada. Devuelve las filas actualizadas.
	UpdateSettlement(ctx context.Context, u SettlementUpdate) (int64, error)

	// SettledTrades devuelve los trades reales ejecutados con resultado.
	SettledTrades(ctx context.Context) ([]domain.ExecutedTrade, error)

	// History devuelve los trades más recientes primero.
	History(ctx context.Context, limit int) ([]domain.ExecutedTrade, error)

	// PnLSummary agrega los trades reales ejecutados.
	PnLSummary(ctx context.Context) (domain.PnL, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
