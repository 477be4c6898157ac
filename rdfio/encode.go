package rdfio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"sort"
	"strings"

	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// Write serializes the whole store in the given format.
func Write(ctx context.Context, st graph.Store, w io.Writer, format Format) error {
	triples, err := st.Match(ctx, graph.Term{}, graph.Term{}, graph.Term{})
	if err != nil {
		return fmt.Errorf("list triples: %w", err)
	}
	ns, err := st.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}
	prefixes := governance.DefaultPrefixes()
	maps.Copy(prefixes, ns)

	var out string
	switch format {
	case FormatTurtle:
		out = toTurtle(prefixes, triples)
	case FormatNTriples:
		out = toNTriples(triples)
	case FormatJSONLD:
		out, err = toJSONLD(prefixes, triples)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a Turtle writer with the given prefixes.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	return &TurtleWriter{prefixes: maps.Clone(prefixes)}
}

// WritePrefixes writes prefix declarations sorted by prefix.
func (w *TurtleWriter) WritePrefixes() {
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		fmt.Fprintf(&w.sb, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.sb.WriteString("\n")
}

// WriteSubject writes one subject block. Predicates keep the given order.
func (w *TurtleWriter) WriteSubject(subject graph.Term, triples []graph.Triple) {
	w.sb.WriteString(w.term(subject))
	w.sb.WriteString("\n")
	for i, t := range triples {
		pred := w.term(t.Predicate)
		if t.Predicate.Value == governance.RDFType {
			pred = "a"
		}
		terminator := " ;"
		if i == len(triples)-1 {
			terminator = " ."
		}
		fmt.Fprintf(&w.sb, "    %s %s%s\n", pred, w.term(t.Object), terminator)
	}
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

// term renders a term, compacting IRIs to prefixed names where the local
// part is a plain name.
func (w *TurtleWriter) term(t graph.Term) string {
	switch t.Kind {
	case graph.KindIRI:
		if qn, ok := w.compact(t.Value); ok {
			return qn
		}
		return t.String()
	case graph.KindLiteral:
		if t.Datatype != "" && t.Lang == "" {
			if qn, ok := w.compact(t.Datatype); ok {
				return `"` + graph.EscapeLiteral(t.Value) + `"^^` + qn
			}
		}
		return t.String()
	default:
		return t.String()
	}
}

func (w *TurtleWriter) compact(iri string) (string, bool) {
	best, bestNS := "", ""
	for prefix, ns := range w.prefixes {
		if ns == "" || !strings.HasPrefix(iri, ns) || len(ns) <= len(bestNS) {
			continue
		}
		best, bestNS = prefix, ns
	}
	if bestNS == "" {
		return "", false
	}
	local := iri[len(bestNS):]
	if !isPlainLocalName(local) {
		return "", false
	}
	return best + ":" + local, true
}

func isPlainLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// toTurtle serializes to Turtle grouped by subject.
func toTurtle(prefixes map[string]string, triples []graph.Triple) string {
	w := NewTurtleWriter(prefixes)
	w.WritePrefixes()
	for _, group := range groupBySubject(triples) {
		w.WriteSubject(group[0].Subject, group)
	}
	return w.String()
}

// toNTriples serializes one triple per line.
func toNTriples(triples []graph.Triple) string {
	var sb strings.Builder
	for _, t := range triples {
		sb.WriteString(t.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// toJSONLD serializes to expanded-IRI JSON-LD with a prefix context.
func toJSONLD(prefixes map[string]string, triples []graph.Triple) (string, error) {
	doc := JSONLDDocument{Context: make(map[string]any, len(prefixes))}
	for k, v := range prefixes {
		if k != "" {
			doc.Context[k] = v
		}
	}
	for _, group := range groupBySubject(triples) {
		node := JSONLDNode{ID: nodeID(group[0].Subject), Properties: make(map[string]any)}
		for _, t := range group {
			if t.Predicate.Value == governance.RDFType && t.Object.IsIRI() {
				node.Type = append(node.Type, t.Object.Value)
				continue
			}
			key := t.Predicate.Value
			val := jsonldValue(t.Object)
			switch existing := node.Properties[key].(type) {
			case nil:
				node.Properties[key] = val
			case []any:
				node.Properties[key] = append(existing, val)
			default:
				node.Properties[key] = []any{existing, val}
			}
		}
		doc.Graph = append(doc.Graph, node)
	}
	if doc.Graph == nil {
		doc.Graph = []JSONLDNode{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

func nodeID(t graph.Term) string {
	if t.Kind == graph.KindBlank {
		return "_:" + t.Value
	}
	return t.Value
}

func jsonldValue(t graph.Term) any {
	switch t.Kind {
	case graph.KindIRI, graph.KindBlank:
		return map[string]any{"@id": nodeID(t)}
	default:
		v := map[string]any{"@value": t.Value}
		if t.Lang != "" {
			v["@language"] = t.Lang
		} else if t.Datatype != "" {
			v["@type"] = t.Datatype
		}
		return v
	}
}

// groupBySubject splits sorted triples into runs sharing a subject.
func groupBySubject(triples []graph.Triple) [][]graph.Triple {
	var groups [][]graph.Triple
	for i := 0; i < len(triples); {
		j := i + 1
		for j < len(triples) && triples[j].Subject == triples[i].Subject {
			j++
		}
		groups = append(groups, triples[i:j])
		i = j
	}
	return groups
}
