// Package graph provides the triple model and the narrow repository interface
// through which the integration engine reads and mutates a knowledge graph.
package graph

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/semspore/vocabulary/governance"
)

// TermKind distinguishes the three RDF term kinds.
type TermKind uint8

const (
	// KindNone marks the zero Term, used as a wildcard in patterns.
	KindNone TermKind = iota
	KindIRI
	KindBlank
	KindLiteral
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "none"
	}
}

// Term is an RDF term. Terms are comparable and usable as map keys.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Blank returns a blank node term. A leading "_:" is stripped.
func Blank(id string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, "_:")}
}

// Literal returns a plain string literal.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral returns a literal with an explicit datatype.
// xsd:string is normalised to a plain literal.
func TypedLiteral(value, datatype string) Term {
	if datatype == governance.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: strings.ToLower(lang)}
}

// Integer returns an xsd:integer literal.
func Integer(v int) Term {
	return TypedLiteral(strconv.Itoa(v), governance.XSDInteger)
}

// Bool returns an xsd:boolean literal.
func Bool(v bool) Term {
	return TypedLiteral(strconv.FormatBool(v), governance.XSDBoolean)
}

// IsZero reports whether t is the wildcard term.
func (t Term) IsZero() bool {
	return t.Kind == KindNone
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool {
	return t.Kind == KindIRI
}

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool {
	return t.Kind == KindLiteral
}

// Int parses an integer literal.
func (t Term) Int() (int, bool) {
	if t.Kind != KindLiteral {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(t.Value))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool parses a boolean literal. Only "true"/"false" (any case) and "1"/"0" are accepted.
func (t Term) Bool() (bool, bool) {
	if t.Kind != KindLiteral {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(t.Value)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return "?"
	}
}

// EscapeLiteral escapes special characters for RDF serialization.
func EscapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// Triple is a subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple builds a triple.
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String renders the triple as an N-Triples line without the trailing newline.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Matches reports whether t satisfies the pattern; zero terms match anything.
func (t Triple) Matches(s, p, o Term) bool {
	return (s.IsZero() || s == t.Subject) &&
		(p.IsZero() || p == t.Predicate) &&
		(o.IsZero() || o == t.Object)
}

// compareTriples orders triples by subject, predicate, then object rendering.
func compareTriples(a, b Triple) int {
	if c := strings.Compare(a.Subject.String(), b.Subject.String()); c != 0 {
		return c
	}
	if c := strings.Compare(a.Predicate.String(), b.Predicate.String()); c != 0 {
		return c
	}
	return strings.Compare(a.Object.String(), b.Object.String())
}

// SortTriples sorts triples into the order Match implementations return.
func SortTriples(ts []Triple) {
	slices.SortFunc(ts, compareTriples)
}
