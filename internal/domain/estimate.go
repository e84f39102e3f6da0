package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ProbSource indica qué modelo produjo la probabilidad. Se guarda con cada
// trade para que la calibración separe resultados por fuente.
type ProbSource string

const (
	SourceParametric ProbSource = "nws_normal"
	SourceEmpirical  ProbSource = "ensemble"
)

// MinEnsembleMembers: con menos miembros el ensemble se ignora.
const MinEnsembleMembers = 10

// Estimate es la distribución pronosticada de un extremo diario.
// Implementaciones: ParametricEstimate, EmpiricalEstimate.
type Estimate interface {
	Source() ProbSource
	estimate()
}

// ParametricEstimate modela el extremo observado como Normal(Mean, SD).
type ParametricEstimate struct {
	Mean float64
	SD   float64
}

func (ParametricEstimate) Source() ProbSource { return SourceParametric }
func (ParametricEstimate) estimate()          {}

// EmpiricalEstimate son los pronósticos independientes de cada miembro del ensemble.
type EmpiricalEstimate struct {
	Samples []float64
}

func (EmpiricalEstimate) Source() ProbSource { return SourceEmpirical }
func (EmpiricalEstimate) estimate()          {}

// Forecast es el pronóstico de una ciudad para un día.
type Forecast struct {
	City         City
	HighF        *float64 // pronóstico puntual, nil si no hay
	LowF         *float64
	EnsembleHigh []float64
	EnsembleLow  []float64
}

// Point devuelve el pronóstico puntual de kind.
func (f Forecast) Point(kind TemperatureKind) (float64, bool) {
	p := f.HighF
	if kind == KindLow {
		p = f.LowF
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Members devuelve los miembros del ensemble de kind.
func (f Forecast) Members(kind TemperatureKind) []float64 {
	if kind == KindLow {
		return f.EnsembleLow
	}
	return f.EnsembleHigh
}

// EstimateFor elige el estimador de un extremo: el ensemble si tiene al
// menos MinEnsembleMembers miembros, si no Normal(puntual, SD de la tabla).
// ok=false si no hay ninguno.
func (f Forecast) EstimateFor(kind TemperatureKind, sd SDTable, season Season) (Estimate, bool) {
	if members := f.Members(kind); len(members) >= MinEnsembleMembers {
		return EmpiricalEstimate{Samples: members}, true
	}
	point, ok := f.Point(kind)
	if !ok {
		return nil, false
	}
	return ParametricEstimate{Mean: point, SD: sd.Lookup(f.City, season)}, true
}

// EnsembleStats resume el ensemble para guardarlo en el ledger.
type EnsembleStats struct {
	Members  int
	MeanHigh *float64
	MeanLow  *float64
	SDHigh   *float64
	SDLow    *float64
}

// Stats calcula el resumen del ensemble; valor cero si no hay ensemble.
func (f Forecast) Stats() EnsembleStats {
	var s EnsembleStats
	s.Members = max(len(f.EnsembleHigh), len(f.EnsembleLow))
	if m, sd, ok := meanSD(f.EnsembleHigh); ok {
		s.MeanHigh, s.SDHigh = &m, &sd
	}
	if m, sd, ok := meanSD(f.EnsembleLow); ok {
		s.MeanLow, s.SDLow = &m, &sd
	}
	return s
}

func meanSD(xs []float64) (mean, sd float64, ok bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	mean, sd = stat.MeanStdDev(xs, nil)
	if math.IsNaN(sd) {
		sd = 0
	}
	return mean, sd, true
}

// SeasonSD guarda una desviación estándar por estación, indexada por Season.
type SeasonSD [numSeasons]float64

// SDTable es la tabla de desviación del error de pronóstico (ciudad × estación)
// con una fila default para las ciudades sin fila propia.
type SDTable struct {
	rows map[City]SeasonSD
	def  SeasonSD
}

// NewSDTable valida y construye la tabla. Toda SD debe ser positiva y cada
// fila debe ser de una ciudad soportada.
func NewSDTable(rows map[City]SeasonSD, def SeasonSD) (SDTable, error) {
	if err := validRow(def); err != nil {
		return SDTable{}, fmt.Errorf("default row: %w", err)
	}
	t := SDTable{rows: make(map[City]SeasonSD, len(rows)), def: def}
	for c, row := range rows {
		if _, ok := LookupCity(c); !ok {
			return SDTable{}, fmt.Errorf("unknown city %q", c)
		}
		if err := validRow(row); err != nil {
			return SDTable{}, fmt.Errorf("city %s: %w", c, err)
		}
		t.rows[c] = row
	}
	return t, nil
}

func validRow(row SeasonSD) error {
	for i, v := range row {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%s sd must be > 0, got %v", Season(i), v)
		}
	}
	return nil
}

// Lookup devuelve la SD de ciudad/estación, o la de la fila default.
func (t SDTable) Lookup(c City, s Season) float64 {
	if row, ok := t.rows[c]; ok {
		return row[s]
	}
	return t.def[s]
}

// Has indica si la ciudad tiene fila propia.
func (t SDTable) Has(c City) bool {
	_, ok := t.rows[c]
	return ok
}

// Rows devuelve una copia de las filas por ciudad.
func (t SDTable) Rows() map[City]SeasonSD {
	out := make(map[City]SeasonSD, len(t.rows))
	for c, r := range t.rows {
		out[c] = r
	}
	return out
}

// Default devuelve la fila default.
func (t SDTable) Default() SeasonSD { return t.def }

// DefaultSDTable es la tabla de error del pronóstico NWS a un día (°F).
func DefaultSDTable() SDTable {
	t, _ := NewSDTable(map[City]SeasonSD{
		Chicago:      {4.0, 3.2, 2.2, 3.0},
		NewYork:      {3.5, 2.8, 2.0, 2.8},
		Miami:        {2.0, 1.8, 1.5, 1.8},
		LosAngeles:   {2.0, 2.2, 1.5, 2.5},
		Austin:       {3.0, 2.5, 2.0, 2.5},
		Denver:       {4.5, 3.5, 2.5, 3.5},
		Philadelphia: {3.5, 2.8, 2.0, 2.8},
	}, SeasonSD{3.5, 3.0, 2.0, 3.0})
	return t
}
