// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/flow-classifier/src/agent/pkg/policy"
	"github.com/flow-classifier/src/agent/pkg/testutil"
)

var (
	ruleCount     = flag.Int("rules", 1000, "Number of synthetic rules to load")
	workers       = flag.Int("workers", 8, "Number of concurrent classification workers")
	duration      = flag.Int("duration", 30, "Test duration in seconds")
	statsInterval = flag.Int("interval", 5, "Statistics reporting interval in seconds")
	hitRatio      = flag.Float64("hit-ratio", 0.9, "Fraction of generated packets covered by a rule")
	seed          = flag.Int64("seed", 1, "Traffic generator seed")
)

func main() {
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	log.Info("=== Flow Classification Performance Test ===")
	log.Infof("Rules: %d", *ruleCount)
	log.Infof("Workers: %d", *workers)
	log.Infof("Duration: %d seconds", *duration)
	log.Infof("Hit Ratio: %.2f", *hitRatio)
	log.Info("============================================")

	// Build the rule table
	gen := testutil.NewTrafficGenerator(*seed)
	rules := gen.GenerateRules(*ruleCount)

	manager := policy.NewManager()
	start := time.Now()
	if err := manager.AddRules(rules); err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	log.Infof("✓ Loaded %d rules in %v", manager.RuleCount(), time.Since(start))

	// Run classification workers until the duration elapses or the
	// user interrupts.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*duration)*time.Second)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Info("Test interrupted by user")
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < *workers; w++ {
		workerGen := gen.Clone(*seed + int64(w) + 1)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				// Batch packets between cancellation checks
				for i := 0; i < 1024; i++ {
					manager.Classify(workerGen.Packet(*hitRatio))
				}
			}
		})
	}

	// Periodic statistics
	ticker := time.NewTicker(time.Duration(*statsInterval) * time.Second)
	defer ticker.Stop()

	testStart := time.Now()
	last := manager.GetStatistics()
	go func() {
		for {
			select {
			case <-ticker.C:
				current := manager.GetStatistics()
				delta := current.TotalPackets - last.TotalPackets
				pps := float64(delta) / float64(*statsInterval)
				log.Infof("Rate: %.0f classifications/sec (total %d)", pps, current.TotalPackets)
				last = current
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := g.Wait(); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
	elapsed := time.Since(testStart)

	// Final report
	stats := manager.GetStatistics()
	log.Info("=== Final Statistics ===")
	log.Infof("  Total Packets:    %d", stats.TotalPackets)
	log.Infof("  Allowed Packets:  %d", stats.AllowedPackets)
	log.Infof("  Denied Packets:   %d", stats.DeniedPackets)
	log.Infof("  Policy Hits:      %d", stats.PolicyHits)
	log.Infof("  Policy Misses:    %d", stats.PolicyMisses)

	if stats.TotalPackets > 0 {
		avg := float64(stats.TotalPackets) / elapsed.Seconds()
		log.Infof("Average Rate: %.0f classifications/sec", avg)

		hitRate := float64(stats.PolicyHits) / float64(stats.TotalPackets) * 100
		log.Infof("Observed Hit Rate: %.2f%%", hitRate)

		if perPacket, ok := approxLatency(elapsed, stats.TotalPackets, *workers); ok {
			log.Infof("Approximate Latency: %v per classification per worker", perPacket)
		}
	} else {
		log.Warn("No packets classified during test")
	}

	log.Info("=== Test Complete ===")
}

// approxLatency estimates the per-classification latency a single
// worker observed. Reports false when fewer packets were classified
// than there are workers, so the quotient would be zero.
func approxLatency(elapsed time.Duration, total uint64, workers int) (time.Duration, bool) {
	if workers <= 0 {
		return 0, false
	}
	perWorker := total / uint64(workers)
	if perWorker == 0 {
		return 0, false
	}
	return elapsed / time.Duration(perWorker), true
}
