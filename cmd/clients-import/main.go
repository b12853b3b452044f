// clients-import loads client records from a JSON or YAML file into the
// database. Invalid records and passport conflicts are skipped; a summary is
// logged and an error report is written next to the source file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/avdonin/contracts-lite/internal/clientfile"
	"github.com/avdonin/contracts-lite/internal/config"
	"github.com/avdonin/contracts-lite/internal/db"
	"github.com/avdonin/contracts-lite/internal/logger"
	"github.com/avdonin/contracts-lite/internal/repository"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: clients-import <clients-file.(json|yaml)>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	store, err := clientfile.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open client file")
	}

	clients, recordErrors, err := store.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read client file")
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	repo := repository.NewClientRepository(database)

	ctx := context.Background()
	inserted, skipped := 0, 0
	for _, client := range clients {
		if _, err := repo.Create(ctx, client); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				skipped++
				log.Warn().
					Str("passport", client.PassportSeries+" "+client.PassportNumber).
					Msg("skipping duplicate client")
				continue
			}
			log.Fatal().Err(err).Msg("insert failed")
		}
		inserted++
	}

	if len(recordErrors) > 0 {
		reportPath, err := store.WriteErrorReport(recordErrors)
		if err != nil {
			log.Error().Err(err).Msg("failed to write error report")
		} else {
			log.Info().Str("path", reportPath).Msg("error report written")
		}
	}

	log.Info().
		Int("total", len(clients)+len(recordErrors)).
		Int("inserted", inserted).
		Int("skipped_conflict", skipped).
		Int("invalid", len(recordErrors)).
		Msg("import finished")
}
