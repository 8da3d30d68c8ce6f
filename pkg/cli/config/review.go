package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Review holds the review pipeline tuning knobs
type Review struct {
	PromptBudget   int64
	MaxAttempts    int64
	InitialBackoff time.Duration
	CallTimeout    time.Duration
}

// Flags returns CLI flags for review pipeline configuration
func (c *Review) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "prompt-budget",
			Usage:       "Maximum review prompt size in bytes",
			Value:       65536,
			Destination: &c.PromptBudget,
			Sources:     cli.EnvVars("COLLIE_PROMPT_BUDGET"),
		},
		&cli.Int64Flag{
			Name:        "max-attempts",
			Usage:       "Attempts per external call before giving up",
			Value:       3,
			Destination: &c.MaxAttempts,
			Sources:     cli.EnvVars("COLLIE_MAX_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "initial-backoff",
			Usage:       "Backoff before the first retry (doubles per retry)",
			Value:       500 * time.Millisecond,
			Destination: &c.InitialBackoff,
			Sources:     cli.EnvVars("COLLIE_INITIAL_BACKOFF"),
		},
		&cli.DurationFlag{
			Name:        "call-timeout",
			Usage:       "Timeout for each external call",
			Value:       60 * time.Second,
			Destination: &c.CallTimeout,
			Sources:     cli.EnvVars("COLLIE_CALL_TIMEOUT"),
		},
	}
}
