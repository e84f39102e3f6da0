package weather

import (
	"encoding/json"
	"fmt"
)

type pointsResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type hourlyResponse struct {
	Properties struct {
		Periods []struct {
			StartTime       string  `json:"startTime"`
			Temperature     float64 `json:"temperature"`
			TemperatureUnit string  `json:"temperatureUnit"`
		} `json:"periods"`
	} `json:"properties"`
}

type observationsResponse struct {
	Features []struct {
		Properties struct {
			Timestamp   string `json:"timestamp"`
			Temperature struct {
				Value    *float64 `json:"value"`
				UnitCode string   `json:"unitCode"`
			} `json:"temperature"`
		} `json:"properties"`
	} `json:"features"`
}

// ensembleDaily guarda las series de miembros crudas: las claves son dinámicas.
type ensembleDaily struct {
	Time   []string
	Series map[string]json.RawMessage
}

func (d *ensembleDaily) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if t, ok := raw["time"]; ok {
		if err := json.Unmarshal(t, &d.Time); err != nil {
			return fmt.Errorf("daily.time: %w", err)
		}
		delete(raw, "time")
	}
	d.Series = raw
	return nil
}

type ensembleResponse struct {
	Daily ensembleDaily `json:"daily"`
}
