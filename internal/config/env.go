package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from CONFIG and the SERVER_, APP_, SCHEMA_, CORS_,
// AUTH_ and STORE_ variable groups. Unset variables leave fields zero so
// the flag, file and default layers can still supply them.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
