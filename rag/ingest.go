package rag

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2s"
)

const maxSectionDepth = 4

// Ingestor chunks markdown knowledge documents by heading section, embeds
// each section, and loads the result into the vector store.
type Ingestor struct {
	embedder Embedder
	store    *VectorStore
}

func NewIngestor(embedder Embedder, store *VectorStore) *Ingestor {
	return &Ingestor{embedder: embedder, store: store}
}

// IngestDir loads every .md file under dir. Files that fail to parse or
// embed are skipped with a log line; the corpus loads best-effort.
func (ing *Ingestor) IngestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		markdown, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read knowledge file", zap.String("path", path), zap.Error(err))
			continue
		}

		n, err := ing.IngestDocument(ctx, entry.Name(), markdown)
		if err != nil {
			logger.Error("Failed to ingest knowledge file", zap.String("path", path), zap.Error(err))
			continue
		}
		loaded += n
	}

	logger.Info("Knowledge corpus loaded", zap.String("dir", dir), zap.Int("chunks", loaded))
	return nil
}

// IngestDocument chunks one markdown document and stores its embedded
// sections. Returns the number of chunks stored.
func (ing *Ingestor) IngestDocument(ctx context.Context, fileName string, markdown []byte) (int, error) {
	sections, err := parseMarkdownSections(markdown)
	if err != nil {
		return 0, err
	}

	chunks := make([]Chunk, 0, len(sections))
	for _, sec := range sections {
		embedding, err := ing.embedder.Embed(ctx, sec.body)
		if err != nil {
			return 0, err
		}

		secHash := hash(fileName + strings.Join(sec.path, "|"))
		chunks = append(chunks, Chunk{
			ID:          fmt.Sprintf("%s-%s", fileName, secHash),
			Title:       sec.path[0],
			SourceURL:   "file://" + fileName,
			SectionPath: sec.path,
			Body:        sec.body,
			Embedding:   embedding,
		})
	}

	ing.store.Store(chunks)
	return len(chunks), nil
}

func hash(s string) string {
	h, _ := blake2s.New256(nil)
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))[:10]
}

type markdownSection struct {
	path []string
	body string
}

func parseMarkdownSections(md []byte) ([]markdownSection, error) {
	var out []markdownSection

	reader := text.NewReader(md)
	root := goldmark.DefaultParser().Parse(reader)

	var currentPath []string
	var buf bytes.Buffer

	flush := func() {
		if len(currentPath) > 0 && buf.Len() > 0 {
			dst := append([]string(nil), currentPath...)
			out = append(out, markdownSection{path: dst, body: buf.String()})
			buf.Reset()
		}
	}

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			flush()
			headingText := string(h.Text(md))
			level := h.Level
			if level <= maxSectionDepth {
				if len(currentPath) >= level {
					currentPath = currentPath[:level-1]
				}
				currentPath = append(currentPath, headingText)
			}
			return ast.WalkContinue, nil
		}
		if entering {
			segment := n.Text(md)
			if len(segment) > 0 {
				buf.Write(segment)
			}
			if n.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	flush()

	if len(out) == 0 {
		return nil, errors.New("no headings found")
	}
	return out, nil
}
