// Package match joins two library item sets on filename.
//
// Every item exposes the basenames of its media part files. The join runs in
// two stages: an exact basename lookup first, then an optional pass over
// case-folded, NFC-normalized names for source items the exact pass missed.
// Playlist matching walks playlist items in order against the same index so
// the destination playlist preserves source ordering.
package match
