package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-version"
)

// MediaKindImage is the only media type the pipeline downloads.
const MediaKindImage = "image"

// SupportedServiceVersions is the range of API service versions whose
// document shape the pipeline understands.
const SupportedServiceVersions = ">= 1, < 2"

// Definition is the parsed metadata for one astronomy picture of the day.
// It is immutable once parsed.
type Definition struct {
	Date           DateKey `json:"date"`
	Title          string  `json:"title"`
	Explanation    string  `json:"explanation"`
	MediaType      string  `json:"media_type"`
	URL            string  `json:"url"`
	HDURL          string  `json:"hdurl,omitempty"`
	Copyright      string  `json:"copyright,omitempty"`
	ServiceVersion string  `json:"service_version,omitempty"`
}

// IsImage reports whether the media type is downloadable.
func (d *Definition) IsImage() bool {
	return d.MediaType == MediaKindImage
}

// ParseDefinition decodes a definition document.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&def); err != nil {
		return nil, err
	}
	if def.Date.IsZero() {
		return nil, fmt.Errorf("definition has no date")
	}
	return &def, nil
}

// Marshal encodes the definition in the cache JSON shape.
func (d *Definition) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// CheckServiceVersion returns an error when v is set and falls outside
// SupportedServiceVersions. An empty v is accepted.
func CheckServiceVersion(v string) error {
	if v == "" {
		return nil
	}
	got, err := version.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid service version %q: %w", v, err)
	}
	constraint, err := version.NewConstraint(SupportedServiceVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(got) {
		return fmt.Errorf("service version %s not in supported range %q", got, SupportedServiceVersions)
	}
	return nil
}
