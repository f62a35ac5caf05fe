package model

import "fmt"

// ArtifactKind identifies which of the per-date artifacts a cache entry holds.
type ArtifactKind int

const (
	// KindDefinition is the JSON metadata document.
	KindDefinition ArtifactKind = iota
	// Media is the binary associated with the definition.
	Media
)

// DefaultExtension is the file extension used when no better one is known.
func (k ArtifactKind) DefaultExtension() string {
	switch k {
	case KindDefinition:
		return ".json"
	case Media:
		return ".jpg"
	default:
		return ""
	}
}

func (k ArtifactKind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case Media:
		return "media"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CacheKey identifies one cached artifact.
type CacheKey struct {
	Date DateKey
	Kind ArtifactKind
}

func (k CacheKey) String() string {
	return k.Date.String() + "/" + k.Kind.String()
}
