package rdfio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/c360studio/semspore/graph"
	"github.com/google/uuid"
	"github.com/knakk/rdf"
)

// prefixRe matches both "@prefix p: <iri> ." and SPARQL-style "PREFIX p: <iri>".
var prefixRe = regexp.MustCompile(`(?mi)^\s*@?prefix\s+([A-Za-z][\w.-]*)?:\s*<([^>]*)>`)

// LoadStats reports what a load added.
type LoadStats struct {
	Triples  int
	Prefixes int
}

// Load decodes a document and adds its triples and prefix bindings to st.
func Load(ctx context.Context, st graph.Store, r io.Reader, format Format) (LoadStats, error) {
	var stats LoadStats

	info, ok := GetFormatInfo(format)
	if !ok || !info.Readable {
		return stats, fmt.Errorf("unsupported input format: %s", format)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return stats, fmt.Errorf("read document: %w", err)
	}

	if format == FormatTurtle {
		for prefix, iri := range ScanPrefixes(data) {
			if err := st.Bind(ctx, prefix, iri); err != nil {
				return stats, fmt.Errorf("bind prefix %q: %w", prefix, err)
			}
			stats.Prefixes++
		}
	}

	triples, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return stats, err
	}
	if err := st.Add(ctx, triples...); err != nil {
		return stats, fmt.Errorf("add decoded triples: %w", err)
	}
	stats.Triples = len(triples)
	return stats, nil
}

// LoadFile loads a document, choosing the format from its extension.
func LoadFile(ctx context.Context, st graph.Store, path string) (LoadStats, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return LoadStats{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stats, err := Load(ctx, st, f, format)
	if err != nil {
		return stats, fmt.Errorf("load %s: %w", path, err)
	}
	return stats, nil
}

// Decode parses every triple of a document. Blank node labels are scoped to
// this call, so anonymous nodes from separate documents never share a label
// once added to the same store.
func Decode(r io.Reader, format Format) ([]graph.Triple, error) {
	var rf rdf.Format
	switch format {
	case FormatTurtle:
		rf = rdf.Turtle
	case FormatNTriples:
		rf = rdf.NTriples
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}

	scope := uuid.NewString()
	dec := rdf.NewTripleDecoder(r, rf)
	var out []graph.Triple
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
		out = append(out, graph.NewTriple(convertTerm(scope, t.Subj), convertTerm(scope, t.Pred), convertTerm(scope, t.Obj)))
	}
	return out, nil
}

// ScanPrefixes extracts prefix declarations from a Turtle document. The
// empty prefix is reported under "". Declarations inside comments or string
// literals are ignored.
func ScanPrefixes(data []byte) map[string]string {
	out := make(map[string]string)
	for _, m := range prefixRe.FindAllSubmatch(maskNonCode(data), -1) {
		out[string(m[1])] = string(m[2])
	}
	return out
}

func convertTerm(scope string, t rdf.Term) graph.Term {
	switch t.Type() {
	case rdf.TermIRI:
		return graph.IRI(t.String())
	case rdf.TermBlank:
		return graph.Blank(scope + "-" + strings.TrimPrefix(t.String(), "_:"))
	case rdf.TermLiteral:
		lit, ok := t.(rdf.Literal)
		if !ok {
			return graph.Literal(t.String())
		}
		if lang := lit.Lang(); lang != "" {
			return graph.LangLiteral(lit.String(), lang)
		}
		return graph.TypedLiteral(lit.String(), lit.DataType.String())
	default:
		return graph.Term{}
	}
}

// maskNonCode returns a copy of a Turtle document with comments and string
// literal contents replaced by spaces. Newlines and IRIs are kept, so line
// anchored matches still see every directive.
func maskNonCode(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	blank := func(i int) {
		if out[i] != '\n' {
			out[i] = ' '
		}
	}
	for i := 0; i < len(out); {
		switch c := out[i]; {
		case c == '<':
			for i++; i < len(out) && out[i] != '>' && out[i] != '\n'; i++ {
			}
			i++
		case c == '#':
			for ; i < len(out) && out[i] != '\n'; i++ {
				blank(i)
			}
		case c == '"' || c == '\'':
			quote := []byte{c}
			if i+2 < len(out) && out[i+1] == c && out[i+2] == c {
				quote = []byte{c, c, c}
			}
			i += len(quote)
			for i < len(out) {
				if out[i] == '\\' && i+1 < len(out) {
					blank(i)
					blank(i + 1)
					i += 2
					continue
				}
				if bytes.HasPrefix(out[i:], quote) {
					i += len(quote)
					break
				}
				if len(quote) == 1 && out[i] == '\n' {
					break
				}
				blank(i)
				i++
			}
		default:
			i++
		}
	}
	return out
}
