package wego

import (
	"fmt"
	"strings"

	"github.com/wego-social/wego-tools/internal/xtime"
)

type Config struct {
	BaseURL    string         `toml:"base_url"`
	Token      string         `toml:"token"`
	Every      xtime.Duration `toml:"every"`
	Burst      int            `toml:"burst"`
	MaxRetries int            `toml:"max_retries"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n BaseURL: %s\n Token: %s\n Every: %s\n Burst: %d\n MaxRetries: %d",
		c.BaseURL,
		strings.Repeat("*", len(c.Token)),
		c.Every,
		c.Burst,
		c.MaxRetries,
	)
}
