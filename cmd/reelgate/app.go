package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/reelgate/reelgate/pkg/budget"
	"github.com/reelgate/reelgate/pkg/client"
	"github.com/reelgate/reelgate/pkg/config"
	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/transport"
)

// app bundles the wired-up client and its collaborators for a command run.
type app struct {
	cfg    *config.Config
	ledger *ledger.SQLiteLedger
	guard  *budget.Guard
	client *client.Client
	log    zerolog.Logger
}

// openApp loads configuration (built-in defaults when path is empty),
// applies env overrides and opens the ledger. The returned cleanup closes
// the ledger.
func openApp(configPath string) (*app, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.FromEnv(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	l, err := ledger.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	guard, err := budget.New(cfg.MonthlyLimit(), cfg.RateTable(), l, log)
	if err != nil {
		l.Close()
		return nil, nil, err
	}

	tr := transport.NewHTTP(cfg.BaseURL, cfg.APIKey, log)
	c := client.New(guard, l, tr, log)

	a := &app{cfg: cfg, ledger: l, guard: guard, client: c, log: log}
	return a, func() { _ = l.Close() }, nil
}
