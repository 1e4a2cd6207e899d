// internal/intake/config.go
package intake

import (
	"fmt"
	"time"
)

// Config holds the pipeline's rate-limit quotas and the agent key allow-list.
type Config struct {
	AgentKeys []string

	PublicLimit  int
	PublicWindow time.Duration

	KeyLimit  int
	KeyWindow time.Duration

	CompanyLimit  int
	CompanyWindow time.Duration
}

// DefaultConfig returns the production quotas: 5/min per address, 30/min per
// agent key, 10/hour per company.
func DefaultConfig() Config {
	return Config{
		PublicLimit:   5,
		PublicWindow:  time.Minute,
		KeyLimit:      30,
		KeyWindow:     time.Minute,
		CompanyLimit:  10,
		CompanyWindow: time.Hour,
	}
}

func (c Config) Validate() error {
	if c.PublicLimit <= 0 || c.KeyLimit <= 0 || c.CompanyLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.PublicWindow <= 0 || c.KeyWindow <= 0 || c.CompanyWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	return nil
}
