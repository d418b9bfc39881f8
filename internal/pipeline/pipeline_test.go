package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/TobiSchelling/fishgrade/internal/config"
	"github.com/TobiSchelling/fishgrade/internal/database"
	"github.com/TobiSchelling/fishgrade/internal/interpret"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
)

const tunaText = `**Species:** Yellowfin Tuna
Confidence: 88%
Characteristics:
- Torpedo shaped body
- Bright yellow finlets
- Long pectoral fins
Habitat: Tropical and subtropical open ocean waters worldwide`

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInterpret(t *testing.T) {
	r := Interpret(tunaText)

	if r.Analysis.Species == nil || *r.Analysis.Species != "Yellowfin Tuna" {
		t.Errorf("expected species Yellowfin Tuna, got %v", r.Analysis.Species)
	}
	if r.Confidence.Percentage != "88%" || r.Confidence.Level != interpret.QualityHigh {
		t.Errorf("unexpected confidence display %+v", r.Confidence)
	}
	if !r.Assessment.IsValid {
		t.Errorf("expected valid assessment, got %+v", r.Assessment)
	}
}

func TestInterpretUnwrapsEnvelope(t *testing.T) {
	raw := `{"analysis": "Species: Milkfish\nConfidence: 55%"}`
	r := Interpret(raw)
	if r.Analysis.Species == nil || *r.Analysis.Species != "Milkfish" {
		t.Errorf("expected species from envelope, got %v", r.Analysis.Species)
	}
	if r.Confidence.Level != interpret.QualityLow {
		t.Errorf("expected low confidence level, got %s", r.Confidence.Level)
	}
}

func TestInterpretStripsHTML(t *testing.T) {
	r := Interpret("<p>Species: <b>Barramundi</b></p><p>Confidence: 70%</p>")
	if r.Analysis.Species == nil || *r.Analysis.Species != "Barramundi" {
		t.Errorf("expected species without tags, got %v", r.Analysis.Species)
	}
	if r.Analysis.Confidence == nil || *r.Analysis.Confidence != 70 {
		t.Errorf("expected confidence 70, got %v", r.Analysis.Confidence)
	}
}

func TestAnalyzeWithoutDB(t *testing.T) {
	p := New(nil, nil)
	r, err := p.Analyze("cli", tunaText)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.ID != 0 {
		t.Errorf("expected no ID without a database, got %d", r.ID)
	}
	if r.Source != "cli" {
		t.Errorf("expected source cli, got %q", r.Source)
	}
}

func TestAnalyzeStores(t *testing.T) {
	db := openTestDB(t)
	p := New(nil, db)

	r, err := p.Analyze("upload.txt", tunaText)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("expected stored ID")
	}

	rec, err := db.GetAnalysis(r.ID)
	if err != nil || rec == nil {
		t.Fatalf("GetAnalysis: %v, %v", rec, err)
	}
	if rec.RawText != tunaText {
		t.Error("expected raw response to be stored unmodified")
	}
	if rec.Assessment.Score != r.Assessment.Score {
		t.Errorf("stored score %d, report score %d", rec.Assessment.Score, r.Assessment.Score)
	}
}

func TestAnalyzeAllKeepsOrder(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()
	cfg.Grading.Workers = 3
	p := New(cfg, db)

	var inputs []Input
	for i := 0; i < 10; i++ {
		inputs = append(inputs, Input{
			Source: fmt.Sprintf("resp-%d", i),
			Text:   fmt.Sprintf("Species: Fish number %d\nConfidence: %d%%", i, 50+i),
		})
	}

	result, err := p.AnalyzeAll(context.Background(), inputs)
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if result.Stored != len(inputs) {
		t.Errorf("expected %d stored, got %d", len(inputs), result.Stored)
	}
	for i, r := range result.Reports {
		if r.Source != inputs[i].Source {
			t.Errorf("report %d has source %q", i, r.Source)
		}
		if r.Analysis.Confidence == nil || *r.Analysis.Confidence != 50+i {
			t.Errorf("report %d has confidence %v", i, r.Analysis.Confidence)
		}
	}
}

func TestAnalyzeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil).AnalyzeAll(ctx, []Input{{Text: tunaText}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGradeAndEditSample(t *testing.T) {
	db := openTestDB(t)
	p := New(nil, db)

	rec, err := p.Grade("crate 7", organoleptic.Parameters{Eye: 9, Gill: 9, Slime: 9, Flesh: 9, Odor: 4, Texture: 9})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if rec.ID == 0 || rec.Freshness.Category != organoleptic.Prima {
		t.Errorf("expected stored Prima sample, got %+v", rec)
	}

	edited, err := p.EditSample(rec.ID, organoleptic.Eye, 1)
	if err != nil {
		t.Fatalf("EditSample: %v", err)
	}
	// (1+9+9+9+9)/5 = 7.4
	if edited.Freshness.Score != 7.4 || edited.Freshness.Category != organoleptic.Baik {
		t.Errorf("expected {7.4 Baik}, got %+v", edited.Freshness)
	}
}

func TestGradeWithoutDB(t *testing.T) {
	p := New(nil, nil)
	rec, err := p.Grade("", organoleptic.Parameters{Eye: 5, Gill: 5, Slime: 5, Flesh: 5, Odor: 5, Texture: 5})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if rec.Freshness.Score != 5 || rec.Label != nil {
		t.Errorf("unexpected record %+v", rec)
	}

	if _, err := p.EditSample(1, organoleptic.Eye, 5); err == nil {
		t.Error("expected error editing without a database")
	}
}

func TestGradeAll(t *testing.T) {
	p := New(nil, nil)
	got, err := p.GradeAll(context.Background(), []organoleptic.Parameters{
		{Eye: 9, Gill: 9, Slime: 9, Flesh: 9, Odor: 9, Texture: 9},
		{Eye: 4, Gill: 4, Slime: 4, Flesh: 4, Odor: 4, Texture: 4},
	})
	if err != nil {
		t.Fatalf("GradeAll: %v", err)
	}
	if got[0].Category != organoleptic.Prima || got[1].Category != organoleptic.Invalid {
		t.Errorf("unexpected results %+v", got)
	}
}
