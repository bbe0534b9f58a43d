package plex

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// Tag is a single tag value on a tag-collection field (genre, director, ...).
type Tag struct {
	Tag string `xml:"tag,attr"`
}

// Field marks a metadata field as locked on the server.
type Field struct {
	Name   string `xml:"name,attr"`
	Locked bool   `xml:"locked,attr"`
}

// Part is one file backing a media item.
type Part struct {
	File string `xml:"file,attr"`
}

// Media groups the parts of one media version.
type Media struct {
	Parts []Part `xml:"Part"`
}

// Item is a library item (movie, show, track, ...) as returned by the
// server's library endpoints.
type Item struct {
	RatingKey             string `xml:"ratingKey,attr"`
	Type                  string `xml:"type,attr"`
	Title                 string `xml:"title,attr"`
	TitleSort             string `xml:"titleSort,attr"`
	OriginalTitle         string `xml:"originalTitle,attr"`
	Summary               string `xml:"summary,attr"`
	Tagline               string `xml:"tagline,attr"`
	Studio                string `xml:"studio,attr"`
	ContentRating         string `xml:"contentRating,attr"`
	OriginallyAvailableAt string `xml:"originallyAvailableAt,attr"`
	Rating                string `xml:"rating,attr"`
	AudienceRating        string `xml:"audienceRating,attr"`
	UserRating            string `xml:"userRating,attr"`
	Thumb                 string `xml:"thumb,attr"`
	Art                   string `xml:"art,attr"`
	Year                  int    `xml:"year,attr"`

	Media  []Media `xml:"Media"`
	Fields []Field `xml:"Field"`

	Genres      []Tag `xml:"Genre"`
	Directors   []Tag `xml:"Director"`
	Writers     []Tag `xml:"Writer"`
	Producers   []Tag `xml:"Producer"`
	Countries   []Tag `xml:"Country"`
	Collections []Tag `xml:"Collection"`
	Labels      []Tag `xml:"Label"`
	Moods       []Tag `xml:"Mood"`
	Styles      []Tag `xml:"Style"`
	Similar     []Tag `xml:"Similar"`
}

// Filenames returns the basename of every media part file on the item.
func (i Item) Filenames() []string {
	var names []string
	for _, media := range i.Media {
		for _, part := range media.Parts {
			file := strings.TrimSpace(part.File)
			if file == "" {
				continue
			}
			// Plex reports server-side paths; they may use either separator.
			name := path.Base(strings.ReplaceAll(file, `\`, "/"))
			if name != "" && name != "." && name != "/" {
				names = append(names, name)
			}
		}
	}
	return names
}

// DisplayName renders "Title (Year)" when the year is known.
func (i Item) DisplayName() string {
	if i.Year > 0 {
		return fmt.Sprintf("%s (%d)", i.Title, i.Year)
	}
	return i.Title
}

// TypeID maps the item type name to the numeric type Plex's edit endpoint
// expects.
func (i Item) TypeID() int {
	switch strings.ToLower(i.Type) {
	case "movie":
		return 1
	case "show":
		return 2
	case "season":
		return 3
	case "episode":
		return 4
	case "artist":
		return 8
	case "album":
		return 9
	case "track":
		return 10
	default:
		return 1
	}
}

// Section is a library section on a server.
type Section struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// Playlist is a playlist summary as returned by the playlists endpoint.
type Playlist struct {
	RatingKey    string `xml:"ratingKey,attr"`
	Title        string `xml:"title,attr"`
	PlaylistType string `xml:"playlistType,attr"`
	Smart        bool   `xml:"smart,attr"`
	LeafCount    int    `xml:"leafCount,attr"`
}

// ServerInfo identifies a Plex Media Server.
type ServerInfo struct {
	XMLName           xml.Name `xml:"MediaContainer"`
	FriendlyName      string   `xml:"friendlyName,attr"`
	MachineIdentifier string   `xml:"machineIdentifier,attr"`
	Version           string   `xml:"version,attr"`
}

type mediaContainer struct {
	XMLName     xml.Name   `xml:"MediaContainer"`
	Directories []Section  `xml:"Directory"`
	Videos      []Item     `xml:"Video"`
	Tracks      []Item     `xml:"Track"`
	Playlists   []Playlist `xml:"Playlist"`
}

// items flattens every item-shaped element in the container. Movie libraries
// return Video elements, music libraries Track elements; show libraries list
// Directory elements which carry no media parts and are skipped.
func (c mediaContainer) items() []Item {
	out := make([]Item, 0, len(c.Videos)+len(c.Tracks))
	out = append(out, c.Videos...)
	out = append(out, c.Tracks...)
	return out
}
