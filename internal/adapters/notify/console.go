package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// Console implementa ports.Notifier escribiendo tablas a un writer.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console { return &Console{out: os.Stdout} }

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console { return &Console{out: w} }

// NotifyRun imprime las apuestas colocadas, los rechazos y lo saltado.
func (c *Console) NotifyRun(_ context.Context, r domain.RunReport) error {
	fmt.Fprintf(c.out, "\n[%s] %s -- %s placed, %d rejected, cost %s\n",
		r.Mode, domain.FormatDate(r.TargetDate), plural(len(r.Placed), "bet"),
		len(r.Rejected), Dollars(r.TotalCost))
	if r.BalanceBefore != nil {
		fmt.Fprintf(c.out, "balance before: %s\n", Dollars(*r.BalanceBefore))
	}

	if len(r.Placed) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("City", "Ticker", "Condition", "Side", "Yes¢", "Qty", "Cost", "Win", "P(yes)", "EV¢", "Source", "Filled")
		for _, t := range r.Placed {
			table.Append(
				string(t.City),
				t.Ticker,
				compactName(t.Title, 24),
				strings.ToUpper(string(t.Side)),
				fmt.Sprintf("%d", t.YesPrice),
				fmt.Sprintf("%d", t.Count),
				Dollars(t.CostCents),
				Dollars(t.Potential),
				pct(t.EstProb),
				fmt.Sprintf("%+.1f", t.EVCents),
				string(t.Source),
				yesNo(t.Filled, t.DryRun),
			)
		}
		table.Render()
	} else {
		fmt.Fprintln(c.out, "no eligible bets")
	}

	if len(r.Rejected) > 0 || len(r.Failed) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("Ticker", "Side", "Cost¢", "EV¢", "Reason", "Detail")
		for _, rj := range append(append([]domain.RejectedBet{}, r.Rejected...), r.Failed...) {
			table.Append(
				rj.Bet.Ticker(),
				strings.ToUpper(string(rj.Bet.Side)),
				fmt.Sprintf("%d", rj.Bet.Cost),
				fmt.Sprintf("%+.1f", rj.Bet.EV),
				rj.Reason,
				rj.Detail,
			)
		}
		table.Render()
	}

	for _, s := range r.Skipped {
		if s.Ticker != "" {
			fmt.Fprintf(c.out, "skipped %s %s: %s\n", s.City, s.Ticker, s.Reason)
		} else {
			fmt.Fprintf(c.out, "skipped %s: %s\n", s.City, s.Reason)
		}
	}
	return nil
}

func yesNo(filled, dry bool) string {
	switch {
	case dry:
		return "dry"
	case filled:
		return "yes"
	default:
		return "resting"
	}
}

// NotifySettlements imprime el resultado de la liquidación.
func (c *Console) NotifySettlements(_ context.Context, r domain.SettlementReport) error {
	fmt.Fprintf(c.out, "\nSettlement %s -- %d/%d won, net %s\n",
		domain.FormatDate(r.TargetDate), r.Wins(), len(r.Settled), SignedDollars(r.Net()))

	if len(r.Settled) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("City", "Ticker", "Side", "Obs high", "Obs low", "Result", "Cost", "Payout", "Net")
		for _, t := range r.Settled {
			table.Append(
				string(t.City),
				t.Ticker,
				strings.ToUpper(string(t.Side)),
				temp(t.ObservedHigh),
				temp(t.ObservedLow),
				strings.ToUpper(string(t.Result)),
				Dollars(t.CostCents),
				Dollars(t.PayoutCents),
				SignedDollars(t.Net()),
			)
		}
		table.Render()
	}
	for _, tk := range r.Unparseable {
		fmt.Fprintf(c.out, "could not parse ticker %s, skipped\n", tk)
	}
	for _, city := range r.MissingObs {
		fmt.Fprintf(c.out, "no observations for %s, its trades stay pending\n", city)
	}
	return nil
}

// NotifyError imprime un error no fatal.
func (c *Console) NotifyError(_ context.Context, msg string, err error) error {
	fmt.Fprintf(c.out, "ERROR %s: %v\n", msg, err)
	return nil
}

// PrintHistory imprime los últimos trades y el resumen de P&L.
func (c *Console) PrintHistory(trades []domain.ExecutedTrade, pnl domain.PnL) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "no trades logged yet")
	} else {
		table := tablewriter.NewWriter(c.out)
		table.Header("Date", "Mode", "City", "Ticker", "Side", "Qty", "Cost", "P(yes)", "Result", "Net")
		for _, t := range trades {
			net := "-"
			if t.Result != domain.ResultPending {
				net = SignedDollars(t.Net())
			}
			table.Append(
				domain.FormatDate(t.TargetDate),
				string(t.Mode),
				string(t.City),
				t.Ticker,
				strings.ToUpper(string(t.Side)),
				fmt.Sprintf("%d", t.Count),
				Dollars(t.CostCents),
				pct(t.EstProb),
				string(t.Result),
				net,
			)
		}
		table.Render()
	}

	fmt.Fprintf(c.out, "\nsettled %d (W %d / L %d), pending %d, win rate %s\n",
		pnl.Settled, pnl.Wins, pnl.Losses, pnl.Pending, pct(pnl.WinRate()))
	fmt.Fprintf(c.out, "cost %s, payout %s, net %s\n",
		Dollars(pnl.CostCents), Dollars(pnl.PayoutCents), SignedDollars(pnl.Net()))
}
