// ABOUTME: The check command: blocks input while configured postconditions run
// ABOUTME: Releases the terminal before printing the report; unmet checks exit 1

package main

import (
	"fmt"

	"github.com/mauromedda/keyblock/internal/config"
	"github.com/mauromedda/keyblock/internal/log"
	"github.com/mauromedda/keyblock/internal/postcond"
	"github.com/mauromedda/keyblock/pkg/tui/intercept"
)

func runCheck(h host, cfg *config.Settings, dir string) int {
	checks := postcond.FromSpecs(cfg.Postconditions)

	sess, err := intercept.Acquire(sessionOptions(h, cfg))
	if err != nil {
		fmt.Fprintf(h.stderr, "error: %v\n", err)
		return 1
	}
	unmet := postcond.Run(checks, dir, "")
	if err := sess.Release(); err != nil {
		fmt.Fprintf(h.stderr, "error: %v\n", err)
		return 1
	}

	if len(unmet) > 0 {
		if err := postcond.Report(h.stderr, unmet); err != nil {
			log.Error("writing report: %v", err)
		}
		return 1
	}

	log.Info("%d postconditions met", len(checks))
	return 0
}
