package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// Discord limita el contenido de un mensaje a 2000 caracteres.
const discordMaxContent = 2000

// Discord implementa ports.Notifier con un webhook (un POST por mensaje).
type Discord struct {
	http *httpclient.Client
	loc  *time.Location
}

// NewDiscord crea un notificador para la URL del webhook.
func NewDiscord(webhookURL string, loc *time.Location, opts ...httpclient.Option) *Discord {
	if loc == nil {
		loc = time.UTC
	}
	all := append([]httpclient.Option{httpclient.WithRateLimit(1, 2)}, opts...)
	return &Discord{http: httpclient.New(webhookURL, all...), loc: loc}
}

type discordMessage struct {
	Content string `json:"content"`
}

func (d *Discord) send(ctx context.Context, lines []string) error {
	content := strings.Join(lines, "\n")
	if r := []rune(content); len(r) > discordMaxContent {
		content = string(r[:discordMaxContent-1]) + "…"
	}
	if err := d.http.Post(ctx, "", discordMessage{Content: content}, nil); err != nil {
		return fmt.Errorf("notify.Discord: %w", err)
	}
	return nil
}

// NotifyRun envía sólo las apuestas reales ejecutadas: un dry run o una
// orden que quedó en el libro sin llenarse no generan mensaje.
func (d *Discord) NotifyRun(ctx context.Context, r domain.RunReport) error {
	if r.Mode == domain.ModeDry {
		return nil
	}
	var filled []domain.ExecutedTrade
	cost := 0
	for _, t := range r.Placed {
		if t.Filled && !t.DryRun {
			filled = append(filled, t)
			cost += t.CostCents
		}
	}
	if len(filled) == 0 {
		return nil
	}
	lines := []string{
		"**WXTRADER -- Bets Placed**",
		fmt.Sprintf("Target: %s | Cost: %s (%s)", domain.FormatDate(r.TargetDate), Dollars(cost), plural(len(filled), "bet")),
		"",
	}
	for _, t := range filled {
		lines = append(lines, fmt.Sprintf("%s | P=%s EV %+.1fc (%s)", tradeLine(t), pct(t.EstProb), t.EVCents, t.Source))
	}
	if len(r.Rejected) > 0 {
		lines = append(lines, "", fmt.Sprintf("Rejected: %d", len(r.Rejected)))
	}
	lines = append(lines, "", fmt.Sprintf("Mode: %s | %s", r.Mode, time.Now().In(d.loc).Format("03:04 PM MST")))
	return d.send(ctx, lines)
}

// NotifySettlements envía el resumen de la liquidación.
func (d *Discord) NotifySettlements(ctx context.Context, r domain.SettlementReport) error {
	if len(r.Settled) == 0 {
		return nil
	}
	lines := []string{
		fmt.Sprintf("**WXTRADER -- Settlement %s**", domain.FormatDate(r.TargetDate)),
		fmt.Sprintf("%d/%d won | Net: %s", r.Wins(), len(r.Settled), SignedDollars(r.Net())),
		"",
	}
	for _, t := range r.Settled {
		lines = append(lines, fmt.Sprintf("%s %s `%s` %s -- %s",
			strings.ToUpper(string(t.Result)), t.City, t.Ticker, strings.ToUpper(string(t.Side)), SignedDollars(t.Net())))
	}
	return d.send(ctx, lines)
}

// NotifyError envía un aviso de error.
func (d *Discord) NotifyError(ctx context.Context, msg string, err error) error {
	return d.send(ctx, []string{"**WXTRADER -- Error**", msg, fmt.Sprintf("`%v`", err)})
}
