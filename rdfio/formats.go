// Package rdfio reads graph documents into a graph.Store and writes a store
// back out as Turtle, N-Triples or JSON-LD.
package rdfio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format specifies a serialization format.
type Format string

const (
	// FormatTurtle is Turtle (.ttl).
	FormatTurtle Format = "turtle"

	// FormatNTriples is N-Triples (.nt).
	FormatNTriples Format = "ntriples"

	// FormatJSONLD is JSON-LD (.jsonld). Write only.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about a format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string

	// Readable reports whether documents in this format can be loaded.
	Readable bool
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
		Readable:    true,
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
		Readable:    true,
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "jsonld", "json-ld":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, info := range FormatRegistry {
		if info.Extension == ext {
			return info.Name, nil
		}
	}
	return "", fmt.Errorf("no format for extension %q", ext)
}
