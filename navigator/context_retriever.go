package navigator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vytalcare/health-navigator/schema"
)

// RetrieveContextFunc is the pluggable retrieval hook supplied by the caller,
// e.g. a vector-similarity search. Implementations may return a ranked
// document list, a pre-formatted context string, or an arbitrary object; the
// adapter accepts all three without failing.
type RetrieveContextFunc func(ctx context.Context, query string) (any, error)

type contextKind int

const (
	contextDocuments contextKind = iota
	contextText
	contextRaw
)

// retrievedContext is the tagged variant the heterogeneous retrieval output
// is normalized into before rendering.
type retrievedContext struct {
	kind contextKind
	docs []schema.RetrievedDocument
	text string
	raw  any
}

// classifyContext normalizes a retrieval result into one of the three
// variants. Unknown shapes fall through to the raw variant.
func classifyContext(result any) retrievedContext {
	switch v := result.(type) {
	case []schema.RetrievedDocument:
		return retrievedContext{kind: contextDocuments, docs: v}
	case []any:
		docs := make([]schema.RetrievedDocument, 0, len(v))
		for _, item := range v {
			docs = append(docs, coerceDocument(item))
		}
		return retrievedContext{kind: contextDocuments, docs: docs}
	case []map[string]any:
		docs := make([]schema.RetrievedDocument, 0, len(v))
		for _, item := range v {
			docs = append(docs, coerceDocument(item))
		}
		return retrievedContext{kind: contextDocuments, docs: docs}
	case string:
		return retrievedContext{kind: contextText, text: v}
	default:
		return retrievedContext{kind: contextRaw, raw: result}
	}
}

// coerceDocument extracts title/url/summary from one result item. Fields may
// live directly on the item or nested under a "payload" property; "text" is
// accepted as an alias for "summary". Missing fields default rather than fail.
func coerceDocument(item any) schema.RetrievedDocument {
	if doc, ok := item.(schema.RetrievedDocument); ok {
		if doc.Title == "" {
			doc.Title = "Unknown"
		}
		return doc
	}

	fields, ok := item.(map[string]any)
	if !ok {
		return schema.RetrievedDocument{Title: "Unknown"}
	}

	if payload, ok := fields["payload"].(map[string]any); ok {
		fields = payload
	}

	summary := stringField(fields, "summary", "")
	if summary == "" {
		summary = stringField(fields, "text", "")
	}

	return schema.RetrievedDocument{
		Title:   stringField(fields, "title", "Unknown"),
		URL:     stringField(fields, "url", ""),
		Summary: summary,
	}
}

func stringField(fields map[string]any, key, fallback string) string {
	if value, ok := fields[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

// titleURLPattern recovers sources from a pre-formatted context string,
// best-effort. Zero matches is acceptable; sources are optional metadata.
var titleURLPattern = regexp.MustCompile(`TITLE:\s*(.+?)\nURL:\s*(.+?)\n`)

// renderContext turns a classified retrieval result into the plain-text
// context block plus the source records extracted from it.
func renderContext(rc retrievedContext) (string, []schema.SourceRef) {
	switch rc.kind {
	case contextDocuments:
		return renderDocuments(rc.docs)

	case contextText:
		var sources []schema.SourceRef
		for _, match := range titleURLPattern.FindAllStringSubmatch(rc.text, -1) {
			sources = append(sources, schema.SourceRef{
				Title: strings.TrimSpace(match[1]),
				URL:   strings.TrimSpace(match[2]),
			})
		}
		return rc.text, sources

	default:
		serialized, err := json.Marshal(rc.raw)
		if err != nil {
			return fmt.Sprintf("%v", rc.raw), nil
		}
		return string(serialized), nil
	}
}

// renderDocuments concatenates ranked documents into numbered source blocks.
// Input order is preserved: rank position signals authority to the model.
func renderDocuments(docs []schema.RetrievedDocument) (string, []schema.SourceRef) {
	if len(docs) == 0 {
		return "", nil
	}

	blocks := make([]string, 0, len(docs))
	sources := make([]schema.SourceRef, 0, len(docs))

	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("[SOURCE %d]\nTITLE: %s\nURL: %s\n\nSUMMARY:\n%s",
			i+1, doc.Title, doc.URL, doc.Summary))
		sources = append(sources, schema.SourceRef{Title: doc.Title, URL: doc.URL})
	}

	return strings.Join(blocks, "\n\n"), sources
}
