package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/cdzombak/plex-meta-migrator/internal/config"
	"github.com/cdzombak/plex-meta-migrator/internal/history"
	"github.com/cdzombak/plex-meta-migrator/internal/logging"
	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// log returns the shared logger, falling back to a no-op logger when the
// configuration failed to load.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) credsStore() (*plex.FileCredsStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return plex.NewFileCredsStore(cfg.Auth.CredsFile), nil
}

// clientIdentifier returns the cached X-Plex-Client-Identifier, generating
// and persisting one on first use.
func (c *commandContext) clientIdentifier() (string, error) {
	store, err := c.credsStore()
	if err != nil {
		return "", err
	}
	creds, err := plex.EnsureClientIdentifier(store)
	if err != nil {
		return "", err
	}
	return creds.ClientIdentifier, nil
}

func (c *commandContext) accountClient() (*plex.AccountClient, error) {
	clientID, err := c.clientIdentifier()
	if err != nil {
		return nil, err
	}
	return plex.NewAccountClient(clientID), nil
}

// openHistory opens the run-history store when history is enabled. A nil
// store with nil error means history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}
