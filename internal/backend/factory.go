// Package backend selects and constructs the spreadsheet backend the
// services and the refresh worker talk to.
package backend

import (
	"context"
	"fmt"

	"carteira/internal/config"
	"carteira/internal/log"
	"carteira/internal/sheets"
	gsheet "carteira/internal/sheets/google"
	"carteira/internal/sheets/memory"
)

type Type string

const (
	Memory Type = "memory"
	Sheets Type = "sheets"
)

func (t Type) IsValid() bool {
	return t == Memory || t == Sheets
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles the backend with its cleanup.
type Result struct {
	Backend sheets.Backend
	Cleanup CleanupFunc
}

// New builds the backend named by the application config.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentBackend)

	t := Type(cfg.DataBackend)
	switch t {
	case Memory:
		logger.Info("Initialized memory backend")
		return &Result{
			Backend: memory.New(),
			Cleanup: func() error { return nil },
		}, nil

	case Sheets:
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		logger.Info("Initialized Google Sheets backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return &Result{
			Backend: client,
			Cleanup: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
