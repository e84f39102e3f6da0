// Package calibration compares predicted and realised outcomes of settled
// trades and proposes forecast-error SD updates. Nothing is applied
// automatically; the report is for a human to review.
package calibration

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

const (
	minGroupForFlag   = 10
	sdAdjustThreshold = 1.0 // °F
	sdCheckThreshold  = 0.5

	numBuckets       = 10
	minBucketForFlag = 5
	gapThreshold     = 0.15

	minGroupForSuggestion = 15
	observedWeight        = 0.7
	minSuggestedMove      = 0.3

	biasWarning = 1.5
)

// Flags on error groups and probability buckets.
const (
	FlagAdjust         = "adjust"
	FlagCheck          = "check"
	FlagOverconfident  = "overconfident"
	FlagUnderconfident = "underconfident"
)

// ErrorGroup is the forecast error distribution of one (city, season),
// HIGH and LOW samples combined.
type ErrorGroup struct {
	City         domain.City
	Season       domain.Season
	N            int
	Bias         float64 // mean observed − forecast
	SD           float64 // sample SD
	ConfiguredSD float64
	Flag         string
}

// Bucket is one probability decile.
type Bucket struct {
	Lo, Hi        float64
	N, Wins       int
	MeanPredicted float64
	WinRate       float64
	Gap           float64 // WinRate − MeanPredicted
	Flag          string
}

// Suggestion is a proposed SD for one (city, season).
type Suggestion struct {
	City     domain.City
	Season   domain.Season
	N        int
	Current  float64
	Observed float64
	Proposed float64
}

// Report is the full calibration review.
type Report struct {
	Trades       int
	Groups       []ErrorGroup
	ErrorSamples int
	OverallBias  float64
	Buckets      []Bucket
	Suggestions  []Suggestion
	current      domain.SDTable
}

// BiasWarning reports whether the overall bias is large enough to suggest
// the point forecast itself is systematically off.
func (r Report) BiasWarning() bool { return math.Abs(r.OverallBias) > biasWarning }

type groupKey struct {
	city   domain.City
	season domain.Season
}

type sampleKey struct {
	city domain.City
	date string
	kind domain.TemperatureKind
}

// Analyze reviews settled trades against the configured SD table. Trades
// whose ticker cannot be parsed are ignored.
//
// Forecast errors count once per (city, date, kind): several bets on the
// same day share one forecast miss. The sample sizes gating flags (N >= 10)
// and suggestions (N >= 15) are therefore distinct forecast days, not
// trades; probability buckets still count every trade.
func Analyze(trades []domain.ExecutedTrade, sd domain.SDTable) Report {
	r := Report{current: sd}

	errs := make(map[groupKey][]float64)
	seen := make(map[sampleKey]bool)
	var all []float64
	var buckets [numBuckets]struct {
		n, wins int
		sum     float64
	}

	for _, t := range trades {
		if t.Result != domain.ResultWin && t.Result != domain.ResultLoss {
			continue
		}
		c, err := domain.ParseContract(t.Ticker, t.Title)
		if err != nil {
			continue
		}
		r.Trades++

		// One forecast miss per city, day and extreme, however many
		// contracts were bet on it.
		key := groupKey{city: c.City, season: domain.SeasonOf(t.TargetDate)}
		for _, kind := range []domain.TemperatureKind{domain.KindHigh, domain.KindLow} {
			fc, ok1 := t.Forecast(kind)
			ob, ok2 := t.Observed(kind)
			sk := sampleKey{city: c.City, date: domain.FormatDate(t.TargetDate), kind: kind}
			if !ok1 || !ok2 || seen[sk] {
				continue
			}
			seen[sk] = true
			errs[key] = append(errs[key], ob-fc)
			all = append(all, ob-fc)
		}

		p := winProbability(t)
		i := min(int(p*numBuckets), numBuckets-1)
		buckets[i].n++
		buckets[i].sum += p
		if t.Result == domain.ResultWin {
			buckets[i].wins++
		}
	}

	for key, xs := range errs {
		g := ErrorGroup{
			City:         key.city,
			Season:       key.season,
			N:            len(xs),
			Bias:         stat.Mean(xs, nil),
			ConfiguredSD: sd.Lookup(key.city, key.season),
		}
		if len(xs) > 1 {
			g.SD = stat.StdDev(xs, nil)
		}
		if g.N >= minGroupForFlag {
			switch d := math.Abs(g.SD - g.ConfiguredSD); {
			case d > sdAdjustThreshold:
				g.Flag = FlagAdjust
			case d > sdCheckThreshold:
				g.Flag = FlagCheck
			}
		}
		r.Groups = append(r.Groups, g)

		if g.N >= minGroupForSuggestion && g.SD > 0 {
			proposed := math.Round((observedWeight*g.SD+(1-observedWeight)*g.ConfiguredSD)*10) / 10
			if math.Abs(proposed-g.ConfiguredSD) >= minSuggestedMove {
				r.Suggestions = append(r.Suggestions, Suggestion{
					City: g.City, Season: g.Season, N: g.N,
					Current: g.ConfiguredSD, Observed: g.SD, Proposed: proposed,
				})
			}
		}
	}
	sort.Slice(r.Groups, func(i, j int) bool { return lessKey(r.Groups[i].City, r.Groups[i].Season, r.Groups[j].City, r.Groups[j].Season) })
	sort.Slice(r.Suggestions, func(i, j int) bool {
		return lessKey(r.Suggestions[i].City, r.Suggestions[i].Season, r.Suggestions[j].City, r.Suggestions[j].Season)
	})

	r.ErrorSamples = len(all)
	if len(all) > 0 {
		r.OverallBias = stat.Mean(all, nil)
	}

	for i, b := range buckets {
		if b.n == 0 {
			continue
		}
		bk := Bucket{
			Lo:            float64(i) / numBuckets,
			Hi:            float64(i+1) / numBuckets,
			N:             b.n,
			Wins:          b.wins,
			MeanPredicted: b.sum / float64(b.n),
			WinRate:       float64(b.wins) / float64(b.n),
		}
		bk.Gap = bk.WinRate - bk.MeanPredicted
		if bk.N >= minBucketForFlag && math.Abs(bk.Gap) > gapThreshold {
			bk.Flag = FlagOverconfident
			if bk.Gap > 0 {
				bk.Flag = FlagUnderconfident
			}
		}
		r.Buckets = append(r.Buckets, bk)
	}
	return r
}

// winProbability is the model's probability that the trade wins: P(YES)
// for a YES bet and 1 − P(YES) for a NO bet.
func winProbability(t domain.ExecutedTrade) float64 {
	p := t.EstProb
	if t.Side == domain.SideNo {
		p = 1 - p
	}
	return math.Max(0, math.Min(1, p))
}

func lessKey(c1 domain.City, s1 domain.Season, c2 domain.City, s2 domain.Season) bool {
	if c1 != c2 {
		return c1 < c2
	}
	return s1 < s2
}

// SuggestedTableYAML renders the configured table with the suggestions
// applied, in the forecast_sd shape config.yaml reads.
func (r Report) SuggestedTableYAML() (string, error) {
	rows := r.current.Rows()
	for _, s := range r.Suggestions {
		row, ok := rows[s.City]
		if !ok {
			row = r.current.Default()
		}
		row[s.Season] = s.Proposed
		rows[s.City] = row
	}

	out := map[string]map[string]float64{"default": seasonMap(r.current.Default())}
	for c, row := range rows {
		out[string(c)] = seasonMap(row)
	}
	b, err := yaml.Marshal(map[string]any{"forecast_sd": out})
	if err != nil {
		return "", fmt.Errorf("calibration.SuggestedTableYAML: %w", err)
	}
	return string(b), nil
}

func seasonMap(row domain.SeasonSD) map[string]float64 {
	m := make(map[string]float64, len(row))
	for _, s := range domain.Seasons() {
		m[s.String()] = row[s]
	}
	return m
}
