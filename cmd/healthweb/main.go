package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gcp-health-agent/internal/agent"
	"gcp-health-agent/internal/config"
	"gcp-health-agent/internal/domain"
	"gcp-health-agent/internal/gcp"
	"gcp-health-agent/internal/repository"
	"gcp-health-agent/internal/router"
	"gcp-health-agent/internal/util"
)

func LoggerInitialize(cfg config.Config) (util.AgentLogger, error) {

	var webLogger util.AgentLogger

	util.SetLoggerPath(cfg.LogPath)
	util.CheckAndCreateLogFolder(cfg.LogPath)
	util.SetCommonLoggerAttributes(cfg.LogLevel)

	if err := webLogger.Init("healthweb.log", false); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return util.AgentLogger{}, err
	}

	webLogger.LogEvent(util.LOG_LEVEL_INFO, "Service started")

	currentTime := time.Now().Format(time.RFC3339)

	fmt.Fprintf(os.Stderr, "\n%s: GCP health web started \n", currentTime)

	return webLogger, nil
}

func main() {

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := LoggerInitialize(cfg)
	if err != nil {
		fmt.Println("Error while initializing the logger..", err)
		return
	}

	ctx := context.Background()

	metrics, err := gcp.NewMetricSource(ctx)
	if err != nil {
		log.Fatalf("Failed to create monitoring client: %v", err)
	}

	inventory, err := gcp.NewInventory(ctx)
	if err != nil {
		log.Fatalf("Failed to create compute client: %v", err)
	}

	var store domain.ReportStore
	if cfg.HistoryDBPath != "" {
		sqliteStore := repository.NewSQLiteStore(cfg.HistoryDBPath)
		if err := sqliteStore.Init(); err != nil {
			log.Fatalf("Failed to initialize report store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	healthAgent := agent.New(metrics, inventory, &logger)

	router.Run(cfg.ListenAddr, healthAgent, store, cfg.Projects, &logger)
}
