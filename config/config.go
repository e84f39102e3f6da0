package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/wxtrader/internal/application/risk"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// Config es la configuración completa del trader.
type Config struct {
	Trading    TradingConfig                 `yaml:"trading"`
	Kalshi     KalshiConfig                  `yaml:"kalshi"`
	Weather    WeatherConfig                 `yaml:"weather"`
	Notify     NotifyConfig                  `yaml:"notify"`
	Storage    StorageConfig                 `yaml:"storage"`
	Metrics    MetricsConfig                 `yaml:"metrics"`
	Log        LogConfig                     `yaml:"log"`
	ForecastSD map[string]map[string]float64 `yaml:"forecast_sd"` // ciudad|default → estación → °F

	sd  domain.SDTable
	loc *time.Location
}

// TradingConfig controla la selección de apuestas y los guardrails.
type TradingConfig struct {
	Cities               []string        `yaml:"cities" default:"[\"CHI\",\"NYC\",\"MIA\",\"LAX\",\"AUS\",\"DEN\",\"PHIL\"]" validate:"min=1,dive,required"`
	MinEdgeCents         float64         `yaml:"min_edge_cents" default:"5" validate:"gte=0"`
	MinPriceCents        int             `yaml:"min_price_cents" default:"15" validate:"gte=1,lte=99"`
	MaxPriceCents        int             `yaml:"max_price_cents" default:"85" validate:"gtefield=MinPriceCents,lte=99"`
	MaxBetsPerCity       int             `yaml:"max_bets_per_city" default:"2" validate:"gte=1"`
	MaxContractsPerOrder int             `yaml:"max_contracts_per_order" default:"5" validate:"gte=1"`
	MaxBetDollars        decimal.Decimal `yaml:"max_bet_dollars" default:"5.00"`
	MaxRunDollars        decimal.Decimal `yaml:"max_run_dollars" default:"4.00"`
	Timezone             string          `yaml:"timezone" default:"America/Chicago" validate:"required"` // define "today" y "tomorrow"
	Workers              int             `yaml:"workers" default:"4" validate:"gte=1,lte=32"`            // ciudades puntuadas en paralelo
}

// KalshiConfig contiene el modo y las credenciales del exchange.
type KalshiConfig struct {
	Mode           string `yaml:"mode" default:"dry" validate:"oneof=live demo dry"`
	BaseURL        string `yaml:"base_url" validate:"omitempty,url"` // vacío: según el modo
	KeyID          string `yaml:"key_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

// WeatherConfig contiene las fuentes de pronóstico y observación.
type WeatherConfig struct {
	NWSBaseURL      string `yaml:"nws_base_url" default:"https://api.weather.gov" validate:"url"`
	UserAgent       string `yaml:"user_agent" default:"wxtrader/1.0" validate:"required"`
	EnsembleBaseURL string `yaml:"ensemble_base_url" default:"https://ensemble-api.open-meteo.com" validate:"url"`
	EnsembleModels  string `yaml:"ensemble_models" default:"gfs025"`
	DisableEnsemble bool   `yaml:"disable_ensemble"`
}

// NotifyConfig controla los destinos de las notificaciones.
type NotifyConfig struct {
	DiscordWebhookURL string `yaml:"discord_webhook_url" validate:"omitempty,url"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn" default:"wxtrader.db"` // ruta al archivo SQLite, o ":memory:"
}

// MetricsConfig controla el textfile de Prometheus escrito tras cada batch.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"` // vacío: desactivado
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Un archivo YAML inexistente no es un error: se usan los defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	// Defaults primero: el YAML y el entorno pisan sólo lo que declaran, y un
	// cero explícito se respeta.
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: defaults: %w", err)
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FORMAT", &cfg.Log.Format},
		{"KALSHI_MODE", &cfg.Kalshi.Mode},
		{"KALSHI_API_KEY_ID", &cfg.Kalshi.KeyID},
		{"KALSHI_PRIVATE_KEY_PATH", &cfg.Kalshi.PrivateKeyPath},
		{"DISCORD_WEBHOOK_URL", &cfg.Notify.DiscordWebhookURL},
		{"WXTRADER_DSN", &cfg.Storage.DSN},
		{"WXTRADER_METRICS_TEXTFILE", &cfg.Metrics.TextfilePath},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if !c.Trading.MaxBetDollars.IsPositive() || !c.Trading.MaxRunDollars.IsPositive() {
		return fmt.Errorf("trading: max_bet_dollars and max_run_dollars must be positive")
	}
	for _, s := range c.Trading.Cities {
		if _, err := domain.ParseCity(s); err != nil {
			return fmt.Errorf("trading.cities: %w", err)
		}
	}
	loc, err := time.LoadLocation(c.Trading.Timezone)
	if err != nil {
		return fmt.Errorf("trading.timezone: %w", err)
	}
	c.loc = loc

	sd, err := buildSDTable(c.ForecastSD)
	if err != nil {
		return fmt.Errorf("forecast_sd: %w", err)
	}
	c.sd = sd
	return c.Limits().Validate()
}

// buildSDTable aplica las filas del YAML sobre la tabla incorporada.
// Rechaza ciudades o estaciones desconocidas y valores no positivos.
func buildSDTable(raw map[string]map[string]float64) (domain.SDTable, error) {
	base := domain.DefaultSDTable()
	rows := base.Rows()
	def := base.Default()

	for key, seasons := range raw {
		var row domain.SeasonSD
		var city domain.City
		isDefault := strings.EqualFold(key, "default")
		if isDefault {
			row = def
		} else {
			c, err := domain.ParseCity(key)
			if err != nil {
				return domain.SDTable{}, err
			}
			city = c
			if r, ok := rows[c]; ok {
				row = r
			} else {
				row = def
			}
		}
		for name, v := range seasons {
			s, err := domain.ParseSeason(name)
			if err != nil {
				return domain.SDTable{}, fmt.Errorf("%s: %w", key, err)
			}
			row[s] = v
		}
		if isDefault {
			def = row
		} else {
			rows[city] = row
		}
	}
	return domain.NewSDTable(rows, def)
}

// Mode devuelve el modo de ejecución.
func (c *Config) Mode() domain.Mode {
	m, _ := domain.ParseMode(c.Kalshi.Mode)
	return m
}

// Cities devuelve las ciudades configuradas, ya validadas.
func (c *Config) Cities() []domain.City {
	out := make([]domain.City, 0, len(c.Trading.Cities))
	for _, s := range c.Trading.Cities {
		if city, err := domain.ParseCity(s); err == nil {
			out = append(out, city)
		}
	}
	return out
}

// Limits convierte los guardrails a centavos.
func (c *Config) Limits() risk.Limits {
	return risk.Limits{
		MinPriceCents:        c.Trading.MinPriceCents,
		MaxPriceCents:        c.Trading.MaxPriceCents,
		MaxBetsPerCity:       c.Trading.MaxBetsPerCity,
		MaxContractsPerOrder: c.Trading.MaxContractsPerOrder,
		MaxBetCents:          cents(c.Trading.MaxBetDollars),
		MaxRunCents:          cents(c.Trading.MaxRunDollars),
	}
}

// SDTable devuelve la tabla de desviaciones validada.
func (c *Config) SDTable() domain.SDTable { return c.sd }

// Location devuelve la zona horaria que define "hoy".
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func cents(d decimal.Decimal) int {
	return int(d.Shift(2).Floor().IntPart())
}
