package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAuth(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeServers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAuth() error {
	if value, ok := os.LookupEnv("PLEX_CREDS_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Auth.CredsFile = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Auth.CredsFile) == "" {
		c.Auth.CredsFile = defaultCredsFile
	}
	var err error
	if c.Auth.CredsFile, err = expandPath(c.Auth.CredsFile); err != nil {
		return fmt.Errorf("auth.creds_file: %w", err)
	}
	c.Auth.Username = strings.TrimSpace(c.Auth.Username)
	if c.Auth.Username == "" {
		if value, ok := os.LookupEnv("PLEX_USERNAME"); ok {
			c.Auth.Username = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeServers() {
	c.Source.URL = strings.TrimRight(strings.TrimSpace(c.Source.URL), "/")
	c.Destination.URL = strings.TrimRight(strings.TrimSpace(c.Destination.URL), "/")
	c.Source.Token = strings.TrimSpace(c.Source.Token)
	c.Destination.Token = strings.TrimSpace(c.Destination.Token)
	c.Source.Library = strings.TrimSpace(c.Source.Library)
	c.Destination.Library = strings.TrimSpace(c.Destination.Library)

	if c.Source.Token == "" {
		if value, ok := os.LookupEnv("PLEX_SOURCE_TOKEN"); ok {
			c.Source.Token = strings.TrimSpace(value)
		}
	}
	if c.Destination.Token == "" {
		if value, ok := os.LookupEnv("PLEX_DEST_TOKEN"); ok {
			c.Destination.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
