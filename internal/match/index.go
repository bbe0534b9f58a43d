package match

import "github.com/cdzombak/plex-meta-migrator/internal/services/plex"

// Index is a filename-keyed lookup over a library's items. It holds one map
// per matching stage.
type Index struct {
	exact      map[string]plex.Item
	normalized map[string]plex.Item
}

// BuildIndex indexes items by each of their part-file basenames. Filename
// uniqueness within a library is best-effort; on collision the later item
// wins.
func BuildIndex(items []plex.Item) *Index {
	idx := &Index{
		exact:      make(map[string]plex.Item, len(items)),
		normalized: make(map[string]plex.Item, len(items)),
	}
	for _, item := range items {
		for _, name := range item.Filenames() {
			idx.exact[name] = item
			if normalized := NormalizeFilename(name); normalized != "" {
				idx.normalized[normalized] = item
			}
		}
	}
	return idx
}

// Exact looks an item up by exact basename.
func (idx *Index) Exact(name string) (plex.Item, bool) {
	item, ok := idx.exact[name]
	return item, ok
}

// Normalized looks an item up by normalized basename.
func (idx *Index) Normalized(name string) (plex.Item, bool) {
	item, ok := idx.normalized[NormalizeFilename(name)]
	return item, ok
}

// Len reports how many distinct exact filenames are indexed.
func (idx *Index) Len() int {
	return len(idx.exact)
}
