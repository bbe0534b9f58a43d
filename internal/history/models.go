package history

import "time"

// Mode names the kind of migration a run performed.
type Mode string

const (
	ModeMetadata Mode = "metadata"
	ModePlaylist Mode = "playlist"
)

// Run is one recorded migration run.
type Run struct {
	ID            int64
	Mode          Mode
	DryRun        bool
	SourceLabel   string
	DestLabel     string
	MatchedItems  int
	MigratedItems int
	CopiedFields  int
	ErrorCount    int
	StartedAt     time.Time
	FinishedAt    time.Time
}
