// Package answer runs a query through selection, prompt rendering,
// generation and normalization.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/a-h/docqa/categories"
	"github.com/a-h/docqa/documents"
	"github.com/a-h/docqa/generate"
	"github.com/a-h/docqa/normalize"
	"github.com/a-h/docqa/prompt"
	"github.com/a-h/docqa/selection"
	"github.com/google/uuid"
)

type Query struct {
	Text     string
	Category string
}

type Result struct {
	Answer json.RawMessage
	// UsedFiles are the names of the documents rendered into the prompt.
	UsedFiles []string
}

func New(log *slog.Logger, table categories.Table, selector selection.Selector, builder prompt.Builder, generator generate.Generator, model string, forceJSON bool) Service {
	return Service{
		log:       log,
		table:     table,
		selector:  selector,
		builder:   builder,
		generator: generator,
		model:     model,
		forceJSON: forceJSON,
	}
}

type Service struct {
	log       *slog.Logger
	table     categories.Table
	selector  selection.Selector
	builder   prompt.Builder
	generator generate.Generator
	model     string
	forceJSON bool
}

// Answer returns either a result with an answer, or an *Error. UsedFiles is
// populated whenever the prompt was rendered, even if generation failed.
func (s Service) Answer(ctx context.Context, q Query) (r Result, err error) {
	log := s.log.With(slog.String("requestId", uuid.NewString()))

	dir, err := s.table.Open(q.Category)
	if err != nil {
		return r, categoryError(err)
	}
	log.Debug("category resolved", slog.String("category", q.Category), slog.String("dir", dir))

	paths := s.selector.Select(dir, q.Text)
	if len(paths) == 0 {
		return r, &Error{Kind: KindNoRelevantFiles, Err: fmt.Errorf("no relevant files found in %s", dir)}
	}

	docs, err := documents.LoadAll(ctx, paths)
	if err != nil {
		return r, &Error{Kind: KindDocumentReadFailure, Err: err}
	}

	p, err := s.builder.Build(docs, q.Text)
	if err != nil {
		return r, &Error{Kind: KindPromptFailure, Err: err}
	}
	r.UsedFiles = documents.Names(docs)
	log.Info("generating answer", slog.String("model", s.model), slog.Any("usedFiles", r.UsedFiles), slog.Int("promptLength", len(p)))

	raw, err := s.generator.Generate(ctx, s.model, p, s.forceJSON)
	if err != nil {
		return r, generateError(err)
	}
	r.Answer = normalize.Normalize(raw)
	return r, nil
}
