package domain

// Market es un contrato listado dentro de un evento de una serie.
type Market struct {
	Ticker      string
	EventTicker string
	Title       string
	YesSubTitle string // "56° or above", da la dirección del umbral
	Status      string
}

// Contract parsea el ticker y el sub-título del mercado.
func (m Market) Contract() (Contract, error) {
	return ParseContract(m.Ticker, m.YesSubTitle)
}

// DisplayTitle prefiere el sub-título YES, que lleva la condición.
func (m Market) DisplayTitle() string {
	if m.YesSubTitle != "" {
		return m.YesSubTitle
	}
	return m.Title
}

// Observation guarda los extremos observados a precisión completa.
// nil significa que la estación no reportó nada usable.
type Observation struct {
	City  City
	HighF *float64
	LowF  *float64
}

// Value devuelve el extremo observado de kind.
func (o Observation) Value(kind TemperatureKind) (float64, bool) {
	p := o.HighF
	if kind == KindLow {
		p = o.LowF
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}
