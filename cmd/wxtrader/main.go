package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/wxtrader/config"
	"github.com/alejandrodnm/wxtrader/internal/adapters/storage"
	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/metrics"
)

const usage = `usage: wxtrader <command> [flags]

commands:
  trade      score tomorrow's contracts and place bets (dry run unless -mode live|demo)
  settle     resolve pending bets for a past date against observed temperatures
  calibrate  compare predictions with settled outcomes and suggest SD updates
  history    print recent trades and the P&L summary

run "wxtrader <command> -h" for the flags of a command`

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"trade":     runTrade,
	"settle":    runSettle,
	"calibrate": runCalibrate,
	"history":   runHistory,
}

// app guarda lo que comparten todos los comandos.
type app struct {
	cfg     *config.Config
	ledger  *storage.SQLiteLedger
	metrics *metrics.Recorder
}

// commonFlags son los flags que acepta todo comando.
type commonFlags struct {
	configPath string
	verbose    bool
	logFormat  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "config/config.yaml", "path to config file")
	fs.BoolVar(&c.verbose, "verbose", false, "set log level to debug")
	fs.StringVar(&c.logFormat, "format", "", "log format: text|json (overrides config)")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", name, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{metrics: metrics.New()}
	if err := cmd(ctx, a, os.Args[2:]); err != nil {
		slog.Error(name+" failed", "err", err)
		a.close()
		os.Exit(1)
	}
	a.close()
}

// setup parsea los flags, carga la config y abre el ledger.
func (a *app) setup(fs *flag.FlagSet, args []string) error {
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(common.configPath)
	if err != nil {
		return err
	}
	if common.verbose {
		cfg.Log.Level = "debug"
	}
	if common.logFormat != "" {
		cfg.Log.Format = common.logFormat
	}
	setupLogger(cfg.Log)
	a.cfg = cfg

	ledger, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	a.ledger = ledger
	return nil
}

func (a *app) close() {
	if a.cfg != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
			slog.Warn("metrics textfile not written", "err", err)
		}
	}
	if a.ledger != nil {
		a.ledger.Close()
	}
}

// resolveDate parsea -date; vacío, usa hoy en la zona configurada
// desplazado offsetDays.
func (a *app) resolveDate(flagValue string, offsetDays int) (time.Time, error) {
	if flagValue != "" {
		return domain.ParseDate(flagValue)
	}
	today := domain.DateIn(time.Now(), a.cfg.Location())
	return today.AddDate(0, 0, offsetDays), nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
