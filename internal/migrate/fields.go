package migrate

import (
	"strings"

	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

// FieldKind classifies how a metadata field is copied.
type FieldKind int

const (
	// KindScalar fields copy through a plain field.value edit.
	KindScalar FieldKind = iota
	// KindTags fields copy through tag-list edit parameters.
	KindTags
	// KindImage fields copy by re-uploading the image from the source server.
	KindImage
)

// FieldValue is one locked field on a source item together with its value.
type FieldValue struct {
	Name      string
	Kind      FieldKind
	Scalar    string
	Tags      []string
	ImagePath string
}

// Display formats the value for preview output.
func (v FieldValue) Display() string {
	switch v.Kind {
	case KindTags:
		if len(v.Tags) == 0 {
			return "(empty)"
		}
		return strings.Join(v.Tags, ", ")
	case KindImage:
		if v.ImagePath == "" {
			return "(empty)"
		}
		return v.ImagePath
	default:
		if v.Scalar == "" {
			return "(empty)"
		}
		return v.Scalar
	}
}

// scalarValue resolves a scalar field name against an item. sortTitle is an
// alias Plex sometimes reports for titleSort.
func scalarValue(item plex.Item, name string) (string, bool) {
	switch name {
	case "title":
		return item.Title, true
	case "titleSort", "sortTitle":
		return item.TitleSort, true
	case "originalTitle":
		return item.OriginalTitle, true
	case "summary":
		return item.Summary, true
	case "tagline":
		return item.Tagline, true
	case "studio":
		return item.Studio, true
	case "contentRating":
		return item.ContentRating, true
	case "originallyAvailableAt":
		return item.OriginallyAvailableAt, true
	case "rating":
		return item.Rating, true
	case "audienceRating":
		return item.AudienceRating, true
	case "userRating":
		return item.UserRating, true
	default:
		return "", false
	}
}

// tagValues resolves a tag-collection field name against an item.
func tagValues(item plex.Item, name string) ([]plex.Tag, bool) {
	switch name {
	case "genre":
		return item.Genres, true
	case "director":
		return item.Directors, true
	case "writer":
		return item.Writers, true
	case "producer":
		return item.Producers, true
	case "country":
		return item.Countries, true
	case "collection":
		return item.Collections, true
	case "label":
		return item.Labels, true
	case "mood":
		return item.Moods, true
	case "style":
		return item.Styles, true
	case "similar":
		return item.Similar, true
	default:
		return nil, false
	}
}

// LockedFields extracts every locked field on the item with its value.
// Locked fields the catalog does not know are carried as empty scalars so the
// lock still transfers.
func LockedFields(item plex.Item) []FieldValue {
	var fields []FieldValue
	for _, field := range item.Fields {
		if !field.Locked {
			continue
		}
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}

		switch name {
		case "thumb", "art":
			path := item.Thumb
			if name == "art" {
				path = item.Art
			}
			fields = append(fields, FieldValue{Name: name, Kind: KindImage, ImagePath: path})
			continue
		}

		if tags, ok := tagValues(item, name); ok {
			names := make([]string, 0, len(tags))
			for _, tag := range tags {
				if trimmed := strings.TrimSpace(tag.Tag); trimmed != "" {
					names = append(names, trimmed)
				}
			}
			fields = append(fields, FieldValue{Name: name, Kind: KindTags, Tags: names})
			continue
		}

		value, _ := scalarValue(item, name)
		fields = append(fields, FieldValue{Name: name, Kind: KindScalar, Scalar: value})
	}
	return fields
}
