package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gcp-health-agent/internal/agent"
	"gcp-health-agent/internal/config"
	"gcp-health-agent/internal/domain"
	"gcp-health-agent/internal/gcp"
	"gcp-health-agent/internal/report"
	"gcp-health-agent/internal/repository"
)

var (
	projectID   string
	allProjects bool
	configFile  string
	historyDB   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "healthagent",
		Short:        "Report CPU/memory utilization and running VMs for GCP projects",
		SilenceUsage: true,
		Run:          run,
	}

	rootCmd.Flags().StringVar(&projectID, "project", "", "Run for a single project ID")
	rootCmd.Flags().BoolVar(&allProjects, "all", false, "Run for all projects in the configured list")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.Flags().StringVar(&historyDB, "history-db", "", "Path to a sqlite file for report snapshots (overrides config)")

	// per-project failures are reported on stderr but never change the
	// process outcome
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func run(cmd *cobra.Command, args []string) {
	if !allProjects && projectID == "" {
		cmd.Help()
		return
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Failed to load config: %v\n", err)
		return
	}

	ctx := context.Background()

	metrics, err := gcp.NewMetricSource(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Failed to create monitoring client: %v\n", err)
		return
	}

	inventory, err := gcp.NewInventory(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Failed to create compute client: %v\n", err)
		return
	}

	dbPath := cfg.HistoryDBPath
	if historyDB != "" {
		dbPath = historyDB
	}
	var store *repository.SQLiteStore
	if dbPath != "" {
		store = repository.NewSQLiteStore(dbPath)
		if err := store.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "[!] Failed to initialize report store: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	healthAgent := agent.New(metrics, inventory, nil)

	projects := cfg.Projects
	if !allProjects {
		projects = []string{projectID}
	}

	for _, project := range projects {
		health := healthAgent.Report(ctx, project)
		fmt.Print(report.FormatProject(health))

		if store != nil {
			snap := toSnapshot(health, time.Now().Unix())
			if err := store.StoreSnapshot(ctx, snap); err != nil {
				fmt.Fprintf(os.Stderr, "[!] Failed to store snapshot for %s: %v\n", project, err)
			}
		}
	}
}

func toSnapshot(h domain.ProjectHealth, takenAt int64) domain.Snapshot {
	return domain.Snapshot{
		Project: h.Project,
		TakenAt: takenAt,
		CPUPct:  math.Round(h.CPUAvg*100.0*100.0) / 100.0,
		MemPct:  math.Round(h.MemAvg*100.0) / 100.0,
		VMCount: h.VMCount,
	}
}
