package domain_test

import (
	"testing"

	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bracket(t *testing.T, value string) domain.Contract {
	t.Helper()
	c, err := domain.ParseContract("KXHIGHCHI-26FEB12-B"+value, "")
	require.NoError(t, err)
	return c
}

func threshold(t *testing.T, value, title string) domain.Contract {
	t.Helper()
	c, err := domain.ParseContract("KXHIGHCHI-26FEB12-T"+value, title)
	require.NoError(t, err)
	return c
}

// --- Parametric ---

func TestProbability_ThresholdAbove(t *testing.T) {
	c := threshold(t, "38", "39° or above")
	p := domain.Probability(c, domain.ParametricEstimate{Mean: 38, SD: 3})
	assert.InDelta(t, 0.434, p, 0.002)
}

func TestProbability_Bracket(t *testing.T) {
	c := bracket(t, "38")
	p := domain.Probability(c, domain.ParametricEstimate{Mean: 38.5, SD: 3})
	assert.InDelta(t, 0.261, p, 0.003)
}

func TestProbability_AboveBelowComplement(t *testing.T) {
	for _, mean := range []float64{20, 37.2, 38, 45.9} {
		for _, v := range []string{"30", "38", "44"} {
			above := threshold(t, v, "or above")
			next := map[string]string{"30": "31", "38": "39", "44": "45"}[v]
			below := threshold(t, next, "or below")

			e := domain.ParametricEstimate{Mean: mean, SD: 2.5}
			sum := domain.Probability(above, e) + domain.Probability(below, e)
			assert.InDelta(t, 1.0, sum, 1e-9, "mean=%v v=%s", mean, v)
		}
	}
}

func TestProbability_BracketSymmetricAroundMean(t *testing.T) {
	e := domain.ParametricEstimate{Mean: 50, SD: 3}
	// [44,45] and [55,56] sit 5.5 degrees either side of the mean.
	lower := domain.Probability(bracket(t, "44"), e)
	upper := domain.Probability(bracket(t, "55"), e)
	assert.InDelta(t, lower, upper, 1e-12)
}

func TestProbability_WiderBracketNeverLess(t *testing.T) {
	// A threshold ABOVE at v covers every bracket above it, so the bracket
	// [v+1, v+2] can never exceed it.
	e := domain.ParametricEstimate{Mean: 40, SD: 3}
	narrow := domain.Probability(bracket(t, "41"), e)
	wide := domain.Probability(threshold(t, "40", "or above"), e)
	assert.GreaterOrEqual(t, wide, narrow)
}

func TestProbability_ClampedAndZeroSD(t *testing.T) {
	c := threshold(t, "38", "or above")
	assert.Equal(t, 0.0, domain.Probability(c, domain.ParametricEstimate{Mean: 38, SD: 0}))

	p := domain.Probability(c, domain.ParametricEstimate{Mean: 200, SD: 1})
	assert.LessOrEqual(t, p, 1.0)
	assert.GreaterOrEqual(t, p, 0.0)
}

// --- Empirical ---

func TestProbability_EmpiricalFrequencies(t *testing.T) {
	samples := []float64{36, 37.4, 37.5, 38, 38.9, 39.4, 39.5, 40, 41, 42}
	e := domain.EmpiricalEstimate{Samples: samples}

	// [37.5, 39.5]: 37.5, 38, 38.9, 39.4, 39.5
	assert.InDelta(t, 0.5, domain.Probability(bracket(t, "38"), e), 1e-12)
	// >= 39.5: 39.5, 40, 41, 42
	assert.InDelta(t, 0.4, domain.Probability(threshold(t, "39", "or above"), e), 1e-12)
	// < 37.5: 36, 37.4
	assert.InDelta(t, 0.2, domain.Probability(threshold(t, "38", "or below"), e), 1e-12)
}

func TestProbability_EmpiricalComplement(t *testing.T) {
	e := domain.EmpiricalEstimate{Samples: []float64{30, 31, 32.5, 33, 34, 35, 35.5, 36, 37, 38, 39}}
	above := domain.Probability(threshold(t, "34", "or above"), e)
	below := domain.Probability(threshold(t, "35", "or below"), e)
	assert.InDelta(t, 1.0, above+below, 1e-12)
}

func TestProbability_UnknownEstimate(t *testing.T) {
	assert.Equal(t, 0.0, domain.Probability(bracket(t, "38"), nil))
}
