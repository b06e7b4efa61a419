// Package pipeline orchestrates the generation flow: introspect and enrich
// the schema, reindex the context store when the active database changed,
// retrieve grounding snippets, assemble the prompt, call the model, extract
// a SQL candidate, and validate it. Each request runs strictly sequentially;
// execution is a separate explicit step so generated SQL can be reviewed
// before it touches the database.
package pipeline

import (
	"context"
	"database/sql"
	"strings"

	"github.com/askdb/askdb/internal/contextstore"
	"github.com/askdb/askdb/internal/errors"
	"github.com/askdb/askdb/internal/executor"
	"github.com/askdb/askdb/internal/extract"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/logging"
	"github.com/askdb/askdb/internal/prompt"
	"github.com/askdb/askdb/internal/schema"
	"github.com/askdb/askdb/internal/validate"
)

// Options configures a pipeline
type Options struct {
	SampleLimit int
	RetrievalK  int
}

// Pipeline wires the generation components around one active database
type Pipeline struct {
	db         *sql.DB
	dbIdentity string
	store      *contextstore.Store
	llm        llm.Service
	template   prompt.Template
	enricher   *schema.Enricher
	exec       *executor.Executor
	retrievalK int
}

// Generation is the outcome of one question. SQL is populated even when the
// verdict is negative so callers can show what was rejected and why.
type Generation struct {
	Question      string
	SchemaContext string
	Snippets      []contextstore.Snippet
	Prompt        string
	RawCompletion string
	Reasoning     string
	SQL           string
	Verdict       validate.Verdict
}

// CannotAnswer reports whether the model declined the question
func (g *Generation) CannotAnswer() bool {
	return g.SQL == extract.CannotAnswer
}

// New creates a pipeline bound to the given database. dbIdentity keys the
// context store's schema snippets; it changes when the user points askdb at
// a different database file.
func New(
	db *sql.DB,
	dbIdentity string,
	store *contextstore.Store,
	service llm.Service,
	template prompt.Template,
	opts Options,
) *Pipeline {
	if opts.RetrievalK <= 0 {
		opts.RetrievalK = 3
	}

	return &Pipeline{
		db:         db,
		dbIdentity: dbIdentity,
		store:      store,
		llm:        service,
		template:   template,
		enricher:   schema.NewEnricher(db, opts.SampleLimit),
		exec:       executor.New(db),
		retrievalK: opts.RetrievalK,
	}
}

// Executor exposes the executor for manual-SQL callers that share this
// pipeline's session log
func (p *Pipeline) Executor() *executor.Executor {
	return p.exec
}

// SchemaContext introspects and enriches the active database schema
func (p *Pipeline) SchemaContext(ctx context.Context) string {
	return p.enricher.Render(ctx)
}

// Generate runs the full question-to-verdict flow. Contextual failures
// (introspection, sampling, retrieval) degrade and generation proceeds;
// completion failures halt the request.
func (p *Pipeline) Generate(ctx context.Context, question string) (*Generation, error) {
	gen := &Generation{Question: question}

	// Degrades to an error string on introspection failure
	gen.SchemaContext = p.enricher.Render(ctx)

	if err := p.store.SeedLogic(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeContextStore, "failed to seed context store")
	}

	if p.store.NeedsReindex(ctx, p.dbIdentity) {
		logging.WithField("database", p.dbIdentity).Debug("active database changed, reindexing schema")

		if err := p.store.ReindexSchema(ctx, gen.SchemaContext, p.dbIdentity); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeContextStore, "failed to index schema")
		}
	}

	snippets, err := p.store.Retrieve(ctx, question, p.retrievalK)
	if err != nil {
		// Retrieval is grounding, not safety: continue without context
		logging.WithField("question", question).WithError(err).
			Warn("context retrieval failed, continuing without snippets")

		snippets = nil
	}

	gen.Snippets = snippets

	gen.Prompt = p.template.Fill(prompt.Request{
		SchemaContext:    gen.SchemaContext,
		RetrievedContext: joinSnippets(snippets),
		UserQuestion:     question,
	})

	raw, err := p.llm.Complete(ctx, gen.Prompt)
	if err != nil {
		return nil, err
	}

	gen.RawCompletion = raw

	parsed := extract.Completion(raw)
	gen.Reasoning = parsed.Reasoning
	gen.SQL = parsed.SQL

	if gen.CannotAnswer() {
		gen.Verdict = validate.Verdict{
			Valid:  false,
			Reason: "the model determined the question cannot be answered from this schema",
		}
	} else {
		gen.Verdict = validate.Query(gen.SQL)
	}

	return gen, nil
}

// Execute runs a generated query. It refuses anything that did not pass
// validation: this is the only path from a generation to the engine.
func (p *Pipeline) Execute(ctx context.Context, gen *Generation) (*executor.Result, error) {
	if !gen.Verdict.Valid {
		return nil, errors.Newf(errors.ErrTypeValidation,
			"refusing to execute invalid query: %s", gen.Verdict.Reason)
	}

	return p.exec.Run(ctx, gen.SQL)
}

func joinSnippets(snippets []contextstore.Snippet) string {
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		texts = append(texts, s.Text)
	}

	return strings.Join(texts, "\n")
}
