package pipeline

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/fishgrade/internal/config"
	"github.com/TobiSchelling/fishgrade/internal/database"
	"github.com/TobiSchelling/fishgrade/internal/ingest"
	"github.com/TobiSchelling/fishgrade/internal/interpret"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
)

// Report is the full interpretation of one AI response.
type Report struct {
	ID         int64                       `json:"id,omitempty"`
	Source     string                      `json:"source,omitempty"`
	Analysis   interpret.Analysis          `json:"analysis"`
	Assessment interpret.Assessment        `json:"assessment"`
	Confidence interpret.ConfidenceDisplay `json:"confidence"`
}

// Input is one response to interpret.
type Input struct {
	Source string
	Text   string
}

// BatchResult holds the results of an AnalyzeAll run.
type BatchResult struct {
	Reports []Report
	Valid   int
	Stored  int
}

// Pipeline ties interpretation, grading and storage together. The database
// is optional; without it nothing is persisted.
type Pipeline struct {
	cfg *config.Config
	db  *database.DB
}

// New creates a new pipeline. db may be nil.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{cfg: cfg, db: db}
}

// Interpret unwraps, parses and validates a raw AI response without storing it.
func Interpret(raw string) Report {
	text := ingest.StripTags(ingest.ExtractText(raw))
	a := interpret.Parse(text)
	return Report{
		Analysis:   a,
		Assessment: interpret.Validate(a),
		Confidence: interpret.FormatConfidence(a.Confidence),
	}
}

// Analyze interprets a response and stores it when a database is configured.
func (p *Pipeline) Analyze(source, raw string) (*Report, error) {
	r := Interpret(raw)
	r.Source = source

	if p.db == nil {
		return &r, nil
	}

	var src *string
	if source != "" {
		src = &source
	}
	id, err := p.db.InsertAnalysis(src, raw, r.Analysis, r.Assessment)
	if err != nil {
		return nil, fmt.Errorf("storing analysis: %w", err)
	}
	r.ID = id
	log.Printf("Stored analysis %d (score %d, %s)", id, r.Assessment.Score, r.Assessment.Quality)
	return &r, nil
}

// AnalyzeAll interprets many responses concurrently using the configured
// number of workers. Reports are returned in input order.
func (p *Pipeline) AnalyzeAll(ctx context.Context, inputs []Input) (*BatchResult, error) {
	reports := make([]Report, len(inputs))

	eg, ctx := errgroup.WithContext(ctx)
	if p.cfg.Grading.Workers > 0 {
		eg.SetLimit(p.cfg.Grading.Workers)
	}

	for i, in := range inputs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := p.Analyze(in.Source, in.Text)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Source, err)
			}
			reports[i] = *r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{Reports: reports}
	for _, r := range reports {
		if r.Assessment.IsValid {
			result.Valid++
		}
		if r.ID != 0 {
			result.Stored++
		}
	}
	log.Printf("Analyzed %d responses: %d valid, %d stored", len(reports), result.Valid, result.Stored)
	return result, nil
}

// Grade scores a sample and stores it. Without a database the sample is only scored.
func (p *Pipeline) Grade(label string, params organoleptic.Parameters) (*database.SampleRecord, error) {
	if p.db == nil {
		s, err := organoleptic.NewSample(params)
		if err != nil {
			return nil, err
		}
		rec := &database.SampleRecord{Parameters: params, Freshness: s.Freshness()}
		if label != "" {
			rec.Label = &label
		}
		return rec, nil
	}

	var lbl *string
	if label != "" {
		lbl = &label
	}
	rec, err := p.db.InsertSample(lbl, params)
	if err != nil {
		return nil, err
	}
	log.Printf("Stored sample %d: %.1f %s", rec.ID, rec.Freshness.Score, rec.Freshness.Category)
	return rec, nil
}

// GradeAll scores many samples concurrently without storing them.
func (p *Pipeline) GradeAll(ctx context.Context, samples []organoleptic.Parameters) ([]organoleptic.Freshness, error) {
	return organoleptic.GradeBatch(ctx, samples, p.cfg.Grading.Workers)
}

// EditSample changes one grade of a stored sample and returns the updated row.
func (p *Pipeline) EditSample(id int64, param organoleptic.Parameter, value int) (*database.SampleRecord, error) {
	if p.db == nil {
		return nil, fmt.Errorf("editing samples requires a database")
	}
	rec, err := p.db.UpdateSampleParameter(id, param, value)
	if err != nil {
		return nil, err
	}
	log.Printf("Sample %d: %s = %d, now %.1f %s", id, param, value, rec.Freshness.Score, rec.Freshness.Category)
	return rec, nil
}
