package config

const (
	defaultCredsFile   = "~/.config/plex-meta-migrator/creds.json"
	defaultHistoryPath = "~/.local/share/plex-meta-migrator/history.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Auth: Auth{
			CredsFile: defaultCredsFile,
		},
		Matching: Matching{
			NormalizedFallback: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
