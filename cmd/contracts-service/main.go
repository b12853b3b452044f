package main

import (
	"fmt"
	"os"

	"github.com/avdonin/contracts-lite/internal/auth"
	"github.com/avdonin/contracts-lite/internal/config"
	"github.com/avdonin/contracts-lite/internal/db"
	"github.com/avdonin/contracts-lite/internal/excel"
	httphandler "github.com/avdonin/contracts-lite/internal/http"
	"github.com/avdonin/contracts-lite/internal/http/middleware"
	"github.com/avdonin/contracts-lite/internal/logger"
	"github.com/avdonin/contracts-lite/internal/pdf"
	"github.com/avdonin/contracts-lite/internal/repository"
	"github.com/avdonin/contracts-lite/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	clientRepo := repository.NewClientRepository(database)

	registerGenerator := excel.NewGenerator()
	cardGenerator := pdf.NewGenerator()

	contractService := service.NewContractService(contractRepo, clientRepo, registerGenerator, cardGenerator, cfg)
	clientService := service.NewClientService(clientRepo, cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, clientService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
