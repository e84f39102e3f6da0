package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TemperatureKind es el extremo diario contra el que liquida un contrato.
type TemperatureKind int

const (
	KindHigh TemperatureKind = iota
	KindLow
)

func (k TemperatureKind) String() string {
	if k == KindLow {
		return "LOW"
	}
	return "HIGH"
}

// Shape distingue los brackets de dos grados de los umbrales de un lado.
type Shape int

const (
	ShapeBracket Shape = iota
	ShapeThreshold
)

func (s Shape) String() string {
	if s == ShapeThreshold {
		return "THRESHOLD"
	}
	return "BRACKET"
}

// Direction sólo aplica a contratos de umbral.
type Direction int

const (
	DirectionAbove Direction = iota
	DirectionBelow
)

func (d Direction) String() string {
	if d == DirectionBelow {
		return "BELOW"
	}
	return "ABOVE"
}

// ErrUnparseableTicker indica un ticker fuera de la gramática de clima.
// El contrato se salta; nadie adivina la forma.
var ErrUnparseableTicker = errors.New("domain: unparseable contract ticker")

// tickerRegex: KX{HIGH|LOW|LOWT}{city}-{YYMMMDD}-{B|T}{value}
// Ejemplos: KXHIGHCHI-26FEB12-B38.5, KXLOWTNYC-26FEB12-T27
var tickerRegex = regexp.MustCompile(`^KX(HIGH|LOWT|LOW)([A-Z]+)-(\d{2}[A-Z]{3}\d{2})-([BT])(\d+(?:\.\d+)?)$`)

const datecodeLayout = "06Jan02"

// Contract es la predicción que codifica un ticker de clima.
type Contract struct {
	Ticker    string
	City      City
	Kind      TemperatureKind
	Shape     Shape
	Value     float64 // ancla tal como viene en el ticker
	Direction Direction
	Date      time.Time // día de liquidación según el datecode
}

// ParseContract parsea un ticker. title es el sub-título del lado YES
// ("56° or above", "47° or below") y sólo se usa en umbrales: el ticker
// no codifica la dirección.
func ParseContract(ticker, title string) (Contract, error) {
	m := tickerRegex.FindStringSubmatch(ticker)
	if m == nil {
		return Contract{}, fmt.Errorf("%w: %q", ErrUnparseableTicker, ticker)
	}

	city, ok := cityFromTickerID(m[2])
	if !ok {
		return Contract{}, fmt.Errorf("%w: unknown city %q in %q", ErrUnparseableTicker, m[2], ticker)
	}

	date, err := time.Parse(datecodeLayout, m[3])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: bad datecode %q in %q", ErrUnparseableTicker, m[3], ticker)
	}

	value, err := strconv.ParseFloat(m[5], 64)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: bad value %q in %q", ErrUnparseableTicker, m[5], ticker)
	}

	c := Contract{
		Ticker: ticker,
		City:   city,
		Kind:   KindHigh,
		Shape:  ShapeBracket,
		Value:  value,
		Date:   date,
	}
	if m[1] != "HIGH" {
		c.Kind = KindLow
	}
	if m[4] == "T" {
		c.Shape = ShapeThreshold
		c.Direction = DirectionFromTitle(title)
	}
	return c, nil
}

// DirectionFromTitle deduce la dirección: ABOVE salvo que el título diga "below".
func DirectionFromTitle(title string) Direction {
	if strings.Contains(strings.ToLower(title), "below") {
		return DirectionBelow
	}
	return DirectionAbove
}

// LowBound es el grado inferior (inclusive) de un bracket.
func (c Contract) LowBound() int { return int(math.Floor(c.Value)) }

// HighBound es el grado superior (inclusive) de un bracket.
func (c Contract) HighBound() int { return c.LowBound() + 1 }

// Threshold es el strike entero de un contrato de umbral.
func (c Contract) Threshold() int { return int(math.Floor(c.Value)) }

// Describe formatea la condición para logs y reportes.
func (c Contract) Describe() string {
	switch {
	case c.Shape == ShapeBracket:
		return fmt.Sprintf("%s %s %d-%d°F", c.City, c.Kind, c.LowBound(), c.HighBound())
	case c.Direction == DirectionBelow:
		return fmt.Sprintf("%s %s <%d°F", c.City, c.Kind, c.Threshold())
	default:
		return fmt.Sprintf("%s %s >%d°F", c.City, c.Kind, c.Threshold())
	}
}
