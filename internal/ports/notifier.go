package ports

import (
	"context"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// Notifier presenta los resultados al usuario. Los errores se loguean y
// nunca afectan al trading.
type Notifier interface {
	// NotifyRun informa las apuestas admitidas y rechazadas de un batch.
	NotifyRun(ctx context.Context, r domain.RunReport) error

	// NotifySettlements informa los trades liquidados de un día.
	NotifySettlements(ctx context.Context, r domain.SettlementReport) error

	// NotifyError informa un fallo que no detuvo el batch.
	NotifyError(ctx context.Context, msg string, err error) error
}
