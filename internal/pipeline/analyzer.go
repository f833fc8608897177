// Package pipeline turns a job posting into a structured profile. It obtains
// the text, normalizes it, runs the independent analysis stages concurrently
// and assembles the response.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-intel/internal/critique"
	"github.com/jonathan/job-intel/internal/ingestion"
	"github.com/jonathan/job-intel/internal/parsing"
	"github.com/jonathan/job-intel/internal/skills"
	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
)

// Fetcher retrieves the text of a posting URL.
type Fetcher = ingestion.Fetcher

// States of a single analysis.
const (
	StateStart     = "start"
	StateNormalize = "normalize"
	StateExtract   = "extract"
	StateSummarize = "summarize"
)

// ProgressEvent reports that an analysis entered a state.
type ProgressEvent struct {
	RequestID string `json:"request_id"`
	State     string `json:"state"`
	Message   string `json:"message"`
}

// ProgressCallback receives progress events on the calling goroutine.
type ProgressCallback func(event ProgressEvent)

// Analyzer runs the analysis pipeline. It holds no per-request state and is
// safe for concurrent use.
type Analyzer struct {
	tables     *taxonomy.Tables
	fetcher    Fetcher
	limits     critique.Thresholds
	logger     *zap.Logger
	onProgress ProgressCallback
	now        func() time.Time
	newID      func() string
}

type requestIDKey struct{}

// ContextWithRequestID makes Analyze use id instead of generating one, so a
// caller's request id and the response's agree.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the critique thresholds.
func WithThresholds(limits critique.Thresholds) Option {
	return func(a *Analyzer) { a.limits = limits }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(a *Analyzer) { a.onProgress = cb }
}

// New creates an Analyzer. fetcher may be nil when only text postings are
// analyzed.
func New(tables *taxonomy.Tables, fetcher Fetcher, opts ...Option) *Analyzer {
	if tables == nil {
		tables = taxonomy.Default()
	}
	a := &Analyzer{
		tables:  tables,
		fetcher: fetcher,
		limits:  critique.DefaultThresholds(),
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// stageResults holds one slot per stage. Each goroutine writes only its own
// slots.
type stageResults struct {
	explicit   []string
	hidden     []string
	categories map[string][]string
	focus      []types.FocusArea
	role       *types.RoleMatch
	alignment  *float64
	title      string
	hasTitle   bool
	critiques  []types.CritiqueItem
	quality    types.QualityReport
	salary     *types.SalaryRange
	interview  parsing.InterviewProcess
	experience types.Experience
	education  types.Education
	sections   []string
}

// Analyze profiles one posting. Errors are *ValidationError, *FetchError or
// *InternalError; see Kind.
func (a *Analyzer) Analyze(ctx context.Context, req *types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	started := a.now()
	if req == nil {
		return nil, &ValidationError{Field: "request", Message: "request is required"}
	}
	if err := req.Validate(); err != nil {
		fe := types.DescribeValidation(err)
		return nil, &ValidationError{Field: fe.Field, Message: fe.Message}
	}

	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		requestID = a.newID()
	}
	a.progress(requestID, StateStart, "obtaining posting text")
	doc, err := a.obtain(ctx, req)
	if err != nil {
		return nil, err
	}

	a.progress(requestID, StateNormalize, fmt.Sprintf("normalized %d characters", len(doc.Normalized)))

	a.progress(requestID, StateExtract, "running analysis stages")
	results, err := a.extract(doc, req.ResumeText)
	if err != nil {
		var internalErr *InternalError
		if errors.As(err, &internalErr) {
			a.logger.Error("analysis stage failed",
				zap.String("request_id", requestID),
				zap.String("stage", internalErr.Stage),
				zap.String("content_hash", doc.Metadata.Hash),
				zap.Error(internalErr.Cause),
			)
		}
		return nil, err
	}

	a.progress(requestID, StateSummarize, "assembling response")
	resp := assemble(requestID, doc, results, a.now())
	resp.Summary = Summarize(resp)

	a.logger.Info("posting analyzed",
		zap.String("request_id", requestID),
		zap.String("source", doc.Metadata.Source),
		zap.String("content_hash", doc.Metadata.Hash),
		zap.Int("skills", len(resp.ExplicitSkills)),
		zap.Int("critiques", len(resp.Critiques)),
		zap.Duration("duration", a.now().Sub(started)),
	)
	return resp, nil
}

// obtain resolves the request to a normalized document. Supplied text wins
// over a URL; a URL that cannot be fetched is never replaced by empty text.
func (a *Analyzer) obtain(ctx context.Context, req *types.AnalyzeRequest) (*ingestion.Document, error) {
	if req.JobPosting.Text != "" {
		doc, err := ingestion.FromText(req.JobPosting.Text)
		if err != nil {
			return nil, &ValidationError{Field: "job_posting.text", Message: "posting text is empty"}
		}
		return doc, nil
	}

	url := strings.TrimSpace(req.JobPosting.URL)
	doc, err := ingestion.FromURL(ctx, a.fetcher, url)
	if err != nil {
		a.logger.Warn("posting fetch failed", zap.String("url", truncate(url, 80)), zap.Error(err))
		return nil, &FetchError{URL: url, Cause: err}
	}
	return doc, nil
}

// extract runs the analysis stages concurrently. Stages only read doc and
// the tables.
func (a *Analyzer) extract(doc *ingestion.Document, resume *string) (*stageResults, error) {
	var (
		r     stageResults
		g     errgroup.Group
		text  = doc.Normalized
		table = a.tables
	)

	stage(&g, "skills", func() {
		r.explicit = skills.Extract(table, text)
		r.hidden = skills.InferHidden(table, r.explicit)
		r.categories = skills.Categorize(table, r.explicit)
		r.focus = skills.BuildFocusAreas(table, r.explicit)
		r.role = skills.IdentifyRole(table, r.explicit)
		if resume != nil && strings.TrimSpace(*resume) != "" {
			alignment := skills.Align(*resume, r.explicit)
			r.alignment = &alignment
		}
	})
	stage(&g, "title", func() {
		r.title, r.hasTitle = parsing.ExtractTitle(doc.Raw)
	})
	stage(&g, "critique", func() {
		r.critiques = critique.Critique(table, a.limits, text)
	})
	stage(&g, "quality", func() {
		r.quality = critique.ScoreQuality(table, a.limits, text)
	})
	stage(&g, "salary", func() {
		r.salary = parsing.ExtractSalary(text)
	})
	stage(&g, "interview", func() {
		r.interview = parsing.DetectInterviewProcess(table, text)
	})
	stage(&g, "experience", func() {
		r.experience = parsing.ExtractExperience(text)
		r.education = parsing.ExtractEducation(table, text)
	})
	stage(&g, "sections", func() {
		r.sections = ingestion.SplitSections(doc.Raw)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &r, nil
}

// stage runs fn on g, turning a panic into an InternalError naming the stage.
func stage(g *errgroup.Group, name string, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = &InternalError{Stage: name, Cause: fmt.Errorf("panic: %v\n%s", p, debug.Stack())}
			}
		}()
		fn()
		return nil
	})
}

func assemble(requestID string, doc *ingestion.Document, r *stageResults, now time.Time) *types.AnalyzeResponse {
	resp := &types.AnalyzeResponse{
		RequestID:       requestID,
		Role:            r.role,
		FocusAreas:      r.focus,
		ExplicitSkills:  r.explicit,
		HiddenSkills:    r.hidden,
		SkillCategories: r.categories,
		Critiques:       r.critiques,
		Quality:         r.quality,
		QualityScore:    float64(r.quality.Score) / 100,
		SalaryRange:     r.salary,
		InterviewStages: r.interview.Stages,
		InterviewRounds: r.interview.TotalRounds,
		Experience:      r.experience,
		Education:       r.education,
		Sections:        r.sections,
		ResumeAlignment: r.alignment,
		Source: types.SourceInfo{
			Kind:       doc.Metadata.Source,
			URL:        doc.Metadata.URL,
			Platform:   doc.Metadata.Platform,
			Hash:       doc.Metadata.Hash,
			FromCache:  doc.Metadata.FromCache,
			AnalyzedAt: now.UTC().Format(time.RFC3339),
		},
	}
	if r.hasTitle {
		title := r.title
		resp.Title = &title
	}
	if r.interview.Duration != "" {
		duration := r.interview.Duration
		resp.InterviewDuration = &duration
	}
	return resp
}

func (a *Analyzer) progress(requestID, state, message string) {
	if a.onProgress != nil {
		a.onProgress(ProgressEvent{RequestID: requestID, State: state, Message: message})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
