package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"medigenius/internal/llm"
)

const defaultChunkRunes = 1000

var ErrIngestNotConfigured = errors.New("knowledge ingest not configured")

// KnowledgeWriter guarda pasajes con su embedding.
type KnowledgeWriter interface {
	Add(ctx context.Context, title, content string, embedding []float32) (int64, error)
}

// KnowledgeIngester parte documentos en pasajes, los embebe y los guarda.
type KnowledgeIngester struct {
	logger   *zap.Logger
	embedder llm.Embedder
	writer   KnowledgeWriter
	maxRunes int
}

func NewKnowledgeIngester(logger *zap.Logger, embedder llm.Embedder, writer KnowledgeWriter, maxRunes int) *KnowledgeIngester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRunes <= 0 {
		maxRunes = defaultChunkRunes
	}
	return &KnowledgeIngester{logger: logger, embedder: embedder, writer: writer, maxRunes: maxRunes}
}

// Ingest devuelve cuántos pasajes se guardaron. Un error corta la carga del documento.
func (i *KnowledgeIngester) Ingest(ctx context.Context, title, text string) (int, error) {
	if i == nil || i.embedder == nil || i.writer == nil {
		return 0, ErrIngestNotConfigured
	}
	stored := 0
	for n, chunk := range ChunkText(text, i.maxRunes) {
		emb, err := i.embedder.Embed(ctx, chunk)
		if err != nil {
			return stored, fmt.Errorf("embed chunk %d of %q: %w", n, title, err)
		}
		if _, err := i.writer.Add(ctx, title, chunk, emb); err != nil {
			return stored, fmt.Errorf("store chunk %d of %q: %w", n, title, err)
		}
		stored++
	}
	i.logger.Info("document ingested", zap.String("title", title), zap.Int("passages", stored))
	return stored, nil
}

// ChunkText agrupa párrafos hasta maxRunes; un párrafo más largo se corta por palabras
// y una palabra más larga se corta por runas.
func ChunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = defaultChunkRunes
	}
	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece, sep string) {
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+utf8.RuneCountInString(sep+piece) > maxRunes {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(piece)
	}

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	for _, para := range strings.Split(normalized, "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxRunes {
			add(para, "\n\n")
			continue
		}
		flush()
		for _, word := range strings.Fields(para) {
			for _, piece := range splitRunes(word, maxRunes) {
				add(piece, " ")
			}
		}
		flush()
	}
	flush()
	return chunks
}

func splitRunes(word string, max int) []string {
	runes := []rune(word)
	if len(runes) <= max {
		return []string{word}
	}
	pieces := make([]string, 0, len(runes)/max+1)
	for len(runes) > max {
		pieces = append(pieces, string(runes[:max]))
		runes = runes[max:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
