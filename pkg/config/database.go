package config

import (
	"fmt"
	"strings"
	"time"
)

type DatabaseConfig struct {
	URI     string        `koanf:"uri"`
	Name    string        `koanf:"name"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *DatabaseConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("database URI is not configured")
	}
	if !isValidMongoURI(c.URI) {
		return fmt.Errorf("database URI must start with 'mongodb://': %s", c.URI)
	}
	if c.Name == "" {
		return fmt.Errorf("database name is not configured")
	}
	return nil
}

// isValidMongoURI checks if the provided URI is a valid MongoDB connection string
func isValidMongoURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") ||
		strings.HasPrefix(uri, "mongodb+srv://")
}
