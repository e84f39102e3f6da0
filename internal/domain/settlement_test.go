package domain_test

import (
	"testing"

	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate_ScenarioE(t *testing.T) {
	obs := 38.2

	assert.Equal(t, domain.ResultWin, domain.Evaluate(bracket(t, "38"), domain.SideYes, obs))
	assert.Equal(t, domain.ResultLoss, domain.Evaluate(threshold(t, "38", "or above"), domain.SideYes, obs))
}

func TestEvaluate_StrictThresholds(t *testing.T) {
	above := threshold(t, "38", "or above")
	below := threshold(t, "38", "or below")

	assert.Equal(t, domain.ResultWin, domain.Evaluate(above, domain.SideYes, 38.6))
	assert.Equal(t, domain.ResultLoss, domain.Evaluate(below, domain.SideYes, 38.0))
	assert.Equal(t, domain.ResultWin, domain.Evaluate(below, domain.SideYes, 37.4))
}

func TestEvaluate_BracketInclusiveEnds(t *testing.T) {
	c := bracket(t, "38.5")
	assert.Equal(t, domain.ResultWin, domain.Evaluate(c, domain.SideYes, 37.6))
	assert.Equal(t, domain.ResultWin, domain.Evaluate(c, domain.SideYes, 39.4))
	assert.Equal(t, domain.ResultLoss, domain.Evaluate(c, domain.SideYes, 39.5))
}

func TestEvaluate_NoSideInverts(t *testing.T) {
	c := bracket(t, "38")
	assert.Equal(t, domain.ResultLoss, domain.Evaluate(c, domain.SideNo, 38))
	assert.Equal(t, domain.ResultWin, domain.Evaluate(c, domain.SideNo, 41))
}

func TestRoundObserved(t *testing.T) {
	assert.Equal(t, 38, domain.RoundObserved(38.49))
	assert.Equal(t, 39, domain.RoundObserved(38.5))
	assert.Equal(t, -1, domain.RoundObserved(-0.5))
	assert.Equal(t, -3, domain.RoundObserved(-2.6))
}

func TestPayoutAndCost(t *testing.T) {
	assert.Equal(t, 300, domain.Payout(domain.ResultWin, 3))
	assert.Equal(t, 0, domain.Payout(domain.ResultLoss, 3))

	assert.Equal(t, 120, domain.CostFor(domain.SideYes, 40, 3))
	assert.Equal(t, 180, domain.CostFor(domain.SideNo, 40, 3))
	assert.Equal(t, 120, domain.PotentialProfit(3, 180))
	assert.Equal(t, 40, domain.YesPrice(domain.SideNo, 60))
}
