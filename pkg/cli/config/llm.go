package config

import "github.com/urfave/cli/v3"

// LLM holds analysis service configuration
type LLM struct {
	APIKey string
	Model  string
}

// Flags returns CLI flags for LLM configuration
func (c *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Required:    true,
			Destination: &c.APIKey,
			Sources:     cli.EnvVars("COLLIE_OPENAI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI model to use",
			Value:       "gpt-4",
			Destination: &c.Model,
			Sources:     cli.EnvVars("COLLIE_OPENAI_MODEL"),
		},
	}
}
