package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/bgunnarsson/dbpeek/internal/config"
	"github.com/bgunnarsson/dbpeek/internal/db"
	"github.com/bgunnarsson/dbpeek/internal/inspect"
)

// ErrorPrefix starts the single line printed for any store failure.
const ErrorPrefix = "Error reading database: "

// Run inspects the database described by cfg and writes the report to
// out. Store failures are printed to out and Run still returns nil; only
// an invalid cfg is returned as an error.
func Run(ctx context.Context, cfg *config.Config, out io.Writer, styled bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	err := inspectDB(ctx, cfg, out, styled)
	if err == nil {
		return nil
	}
	var se *db.StoreError
	if !errors.As(err, &se) {
		return err
	}

	log.Debug().
		Err(err).
		Str("driver", string(cfg.Driver)).
		Str("op", se.Op).
		Str("table", se.Table).
		Msg("Store access failed")
	fmt.Fprintln(out, ErrorPrefix+err.Error())
	return nil
}

func inspectDB(ctx context.Context, cfg *config.Config, out io.Writer, styled bool) error {
	logTarget(cfg)

	sdb, err := openDB(ctx, cfg.Driver, cfg.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := sdb.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	in := inspect.New(sdb, out, inspect.Options{
		Format:   inspect.Format(cfg.Output.Format),
		MaxWidth: cfg.Output.MaxWidth,
		Styled:   styled,
	})
	return in.Run(ctx)
}

func logTarget(cfg *config.Config) {
	if cfg.Driver != config.DriverSqlite {
		// DSNs may carry credentials
		log.Debug().Str("driver", string(cfg.Driver)).Msg("Inspecting database")
		return
	}

	ev := log.Debug().Str("driver", string(cfg.Driver)).Str("path", cfg.Path)
	if fi, err := os.Stat(cfg.Path); err == nil {
		ev = ev.Str("size", humanize.Bytes(uint64(fi.Size())))
	}
	ev.Msg("Inspecting database")
}
