package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// continuity es la corrección de medio grado: la lectura se redondea a
// grado entero antes de comparar.
const continuity = 0.5

// Probability devuelve P(YES) del contrato bajo el estimador dado.
// Es el único punto que despacha sobre las variantes de Estimate.
func Probability(c Contract, e Estimate) float64 {
	switch e := e.(type) {
	case ParametricEstimate:
		return parametricProbability(c, e)
	case EmpiricalEstimate:
		return empiricalProbability(c, e)
	default:
		return 0
	}
}

func parametricProbability(c Contract, e ParametricEstimate) float64 {
	if !(e.SD > 0) {
		return 0
	}
	n := distuv.Normal{Mu: e.Mean, Sigma: e.SD}

	var p float64
	switch {
	case c.Shape == ShapeBracket:
		p = n.CDF(float64(c.HighBound())+continuity) - n.CDF(float64(c.LowBound())-continuity)
	case c.Direction == DirectionBelow:
		p = n.CDF(float64(c.Threshold()) - continuity)
	default:
		p = 1 - n.CDF(float64(c.Threshold())+continuity)
	}
	return clamp01(p)
}

func empiricalProbability(c Contract, e EmpiricalEstimate) float64 {
	if len(e.Samples) == 0 {
		return 0
	}

	lo := float64(c.LowBound()) - continuity
	hi := float64(c.HighBound()) + continuity
	above := float64(c.Threshold()) + continuity
	below := float64(c.Threshold()) - continuity

	hits := 0
	for _, x := range e.Samples {
		var in bool
		switch {
		case c.Shape == ShapeBracket:
			in = x >= lo && x <= hi
		case c.Direction == DirectionBelow:
			in = x < below
		default:
			in = x >= above
		}
		if in {
			hits++
		}
	}
	return clamp01(float64(hits) / float64(len(e.Samples)))
}

func clamp01(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}
