// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flow-classifier/src/agent/pkg/api"
	"github.com/flow-classifier/src/agent/pkg/policy"
)

var (
	rulesFile     string
	dbPath        string
	logLevel      string
	statsInterval int
	enableAPI     bool
	apiHost       string
	apiPort       int
)

var rootCmd = &cobra.Command{
	Use:   "flow-classifier",
	Short: "Flow classification agent",
	Long:  `A flow classification agent matching IPv4 4-tuples against CIDR and port rules with longest-prefix and port-specificity precedence`,
	Run:   runAgent,
}

func init() {
	rootCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "Rule file to load at startup (YAML)")
	rootCmd.Flags().StringVarP(&dbPath, "db", "d", "", "SQLite database for rule persistence (empty disables persistence)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().IntVarP(&statsInterval, "stats-interval", "s", 5, "Statistics print interval in seconds")
	rootCmd.Flags().BoolVarP(&enableAPI, "enable-api", "a", true, "Enable REST API server")
	rootCmd.Flags().StringVar(&apiHost, "api-host", "127.0.0.1", "API server host")
	rootCmd.Flags().IntVar(&apiPort, "api-port", 8080, "API server port")
}

func runAgent(cmd *cobra.Command, args []string) {
	// Setup logging
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.Info("Starting flow classification agent")

	// Create rule manager, with persistence if configured
	var manager *policy.RuleManager
	if dbPath != "" {
		storage, err := policy.NewSQLiteStorage(dbPath)
		if err != nil {
			log.Fatalf("Failed to open rule database: %v", err)
		}
		defer storage.Close()

		manager = policy.NewManagerWithStorage(storage)
		if err := manager.LoadPersisted(); err != nil {
			log.Fatalf("Failed to restore rules: %v", err)
		}

		log.Infof("✓ Rule persistence enabled (%s)", dbPath)
	} else {
		manager = policy.NewManager()
	}

	// Load rules from file if provided
	if rulesFile != "" {
		rules, err := policy.LoadRuleFile(rulesFile)
		if err != nil {
			log.Fatalf("Failed to load rule file: %v", err)
		}
		if err := manager.AddRules(rules); err != nil {
			log.Fatalf("Failed to apply rule file: %v", err)
		}

		log.Infof("✓ Loaded %d rules from %s", len(rules), rulesFile)
	}

	log.Infof("✓ Rule manager initialized (%d rules)", manager.RuleCount())

	// Start API server if enabled
	var apiServer *api.Server
	if enableAPI {
		apiConfig := &api.Config{
			Host:       apiHost,
			Port:       apiPort,
			EnableCORS: true,
			LogLevel:   logLevel,
		}

		apiServer, err = api.NewAPIServer(apiConfig, manager)
		if err != nil {
			log.Fatalf("Failed to create API server: %v", err)
		}

		if err := apiServer.Start(); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}

		log.Infof("✓ API server started on http://%s:%d", apiHost, apiPort)
	}

	// Print statistics periodically
	ticker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			stats := manager.GetStatistics()
			log.Info("=== Statistics ===")
			log.Infof("  Total Packets:    %d", stats.TotalPackets)
			log.Infof("  Allowed Packets:  %d", stats.AllowedPackets)
			log.Infof("  Denied Packets:   %d", stats.DeniedPackets)
			log.Infof("  Policy Hits:      %d", stats.PolicyHits)
			log.Infof("  Policy Misses:    %d", stats.PolicyMisses)
		}
	}()

	// Wait for interrupt signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	log.Info("✓ Agent running. Press Ctrl+C to exit")

	<-sig
	log.Info("Shutting down...")

	// Stop API server if running
	if apiServer != nil {
		if err := apiServer.Stop(); err != nil {
			log.Errorf("Error stopping API server: %v", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
