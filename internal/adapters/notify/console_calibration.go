package notify

import (
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/wxtrader/internal/application/calibration"
)

// PrintCalibration imprime el informe de calibración: errores de pronóstico
// por ciudad/estación, calibración por deciles y SDs sugeridas.
func (c *Console) PrintCalibration(r calibration.Report) {
	if r.Trades == 0 {
		fmt.Fprintln(c.out, "no settled trades to calibrate against")
		return
	}
	fmt.Fprintf(c.out, "\nCalibration over %s\n", plural(r.Trades, "settled trade"))

	if len(r.Groups) > 0 {
		fmt.Fprintln(c.out, "\nForecast error (observed − forecast)")
		table := tablewriter.NewWriter(c.out)
		table.Header("City", "Season", "N", "Bias", "SD", "Model SD", "Flag")
		for _, g := range r.Groups {
			table.Append(
				string(g.City),
				g.Season.String(),
				fmt.Sprintf("%d", g.N),
				fmt.Sprintf("%+.1f°F", g.Bias),
				fmt.Sprintf("%.1f°F", g.SD),
				fmt.Sprintf("%.1f°F", g.ConfiguredSD),
				g.Flag,
			)
		}
		table.Render()

		dir := "cool"
		if r.OverallBias > 0 {
			dir = "warm"
		}
		fmt.Fprintf(c.out, "overall bias %+.2f°F (%s, N=%d)\n", r.OverallBias, dir, r.ErrorSamples)
		if r.BiasWarning() {
			fmt.Fprintln(c.out, "systematic bias: the point forecast itself looks off")
		}
	}

	if len(r.Buckets) > 0 {
		fmt.Fprintln(c.out, "\nProbability calibration")
		table := tablewriter.NewWriter(c.out)
		table.Header("Bucket", "N", "Wins", "Predicted", "Actual", "Gap", "Flag")
		for _, b := range r.Buckets {
			table.Append(
				fmt.Sprintf("%.0f-%.0f%%", b.Lo*100, b.Hi*100),
				fmt.Sprintf("%d", b.N),
				fmt.Sprintf("%d", b.Wins),
				pct(b.MeanPredicted),
				pct(b.WinRate),
				fmt.Sprintf("%+.1f%%", b.Gap*100),
				b.Flag,
			)
		}
		table.Render()
	}

	if len(r.Suggestions) == 0 {
		fmt.Fprintln(c.out, "\nno SD changes suggested yet")
		return
	}
	fmt.Fprintln(c.out, "\nSuggested SD updates (not applied)")
	for _, s := range r.Suggestions {
		fmt.Fprintf(c.out, "  %s %s: %.1f -> %.1f (observed %.2f, N=%d)\n",
			s.City, s.Season, s.Current, s.Proposed, s.Observed, s.N)
	}
	if snippet, err := r.SuggestedTableYAML(); err == nil {
		fmt.Fprintf(c.out, "\n%s", snippet)
	}
}
