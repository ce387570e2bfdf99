package config

import (
	"fmt"
	"strings"
)

// UploadsConfig holds the destination directory for ingested files. It is an
// explicit value injected at construction time, never read from global state.
type UploadsConfig struct {
	Dir string `koanf:"dir"`
}

// String returns a string representation of the uploads configuration.
func (c *UploadsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Uploads ---\n")
	b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	return b.String()
}

func (c *UploadsConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("uploads directory is not configured")
	}
	return nil
}
