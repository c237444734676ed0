// Package models holds the experiment metadata attached to each
// analyzed sample. The pipeline treats these as pass-through tags: they
// end up in every report row but never influence detection.
package models

import (
	"path/filepath"
	"strings"
)

// unknownTag marks metadata fields that could not be parsed.
const unknownTag = "Unknown"

// SampleMeta is the experimental condition encoded in a sample
// filename: <prefix>_<CellLine>_<Radiation>_<NP>_<Dose>Gy.<ext>.
type SampleMeta struct {
	// CellLine is the cultured line identifier (e.g. A549, MCF7).
	CellLine string

	// Radiation is the irradiation condition tag.
	Radiation string

	// NP is the nanoparticle condition tag.
	NP string

	// Dose is the radiation dose with the "Gy" suffix stripped.
	Dose string
}

// Sample couples an image path with its parsed metadata.
type Sample struct {
	// Path is the image file location.
	Path string

	// Name is the base filename without extension, used as report key.
	Name string

	// Meta is the parsed experimental condition.
	Meta SampleMeta
}

// ParseSampleMeta extracts the metadata fields from a filename.
// Filenames that do not follow the underscore convention degrade to
// all-Unknown tags rather than failing the sample.
func ParseSampleMeta(filename string) SampleMeta {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, "_")
	if len(parts) < 5 {
		return SampleMeta{
			CellLine:  unknownTag,
			Radiation: unknownTag,
			NP:        unknownTag,
			Dose:      unknownTag,
		}
	}
	return SampleMeta{
		CellLine:  parts[1],
		Radiation: parts[2],
		NP:        parts[3],
		Dose:      strings.TrimSpace(strings.TrimSuffix(parts[4], "Gy")),
	}
}

// NewSample builds a Sample from an image path.
func NewSample(path string) Sample {
	base := filepath.Base(path)
	return Sample{
		Path: path,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Meta: ParseSampleMeta(base),
	}
}
