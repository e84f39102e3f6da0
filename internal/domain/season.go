package domain

import (
	"fmt"
	"strings"
	"time"
)

// Season es una estación meteorológica (DJF, MAM, JJA, SON).
type Season int

const (
	Winter Season = iota
	Spring
	Summer
	Autumn

	numSeasons = 4
)

var seasonNames = [numSeasons]string{"winter", "spring", "summer", "autumn"}

func (s Season) String() string {
	if s < 0 || s >= numSeasons {
		return "unknown"
	}
	return seasonNames[s]
}

// Seasons devuelve las cuatro estaciones en el orden de la tabla.
func Seasons() []Season { return []Season{Winter, Spring, Summer, Autumn} }

// ParseSeason parsea el nombre de estación tal como va en el config.
func ParseSeason(s string) (Season, error) {
	for i, name := range seasonNames {
		if strings.EqualFold(s, name) {
			return Season(i), nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", s)
}

// SeasonOf deriva la estación del mes del día objetivo.
func SeasonOf(date time.Time) Season {
	switch date.Month() {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

const dateLayout = "2006-01-02"

// ParseDate parsea una fecha ISO (YYYY-MM-DD) a medianoche UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate formatea la fecha como la guarda el ledger.
func FormatDate(d time.Time) string { return d.Format(dateLayout) }

// Datecode formatea la fecha como el datecode del ticker (26FEB12).
func Datecode(d time.Time) string { return strings.ToUpper(d.Format(datecodeLayout)) }

// DateIn devuelve la fecha de t en loc, a medianoche UTC.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
