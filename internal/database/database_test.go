package database

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/TobiSchelling/fishgrade/internal/interpret"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func uniform(v int) organoleptic.Parameters {
	return organoleptic.Parameters{Eye: v, Gill: v, Slime: v, Flesh: v, Odor: v, Texture: v}
}

const tunaText = `Species: Yellowfin Tuna
Confidence: 85%
Characteristics:
- Torpedo shaped body
- Yellow finlets
- Long pectoral fins
Habitat: Open ocean waters`

func TestInsertAndGetAnalysis(t *testing.T) {
	db := openTestDB(t)
	a := interpret.Parse(tunaText)
	v := interpret.Validate(a)

	id, err := db.InsertAnalysis(ptr("camera-1"), tunaText, a, v)
	if err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero analysis ID")
	}

	got, err := db.GetAnalysis(id)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got == nil {
		t.Fatal("expected analysis, got nil")
	}
	if got.RawText != tunaText {
		t.Errorf("raw text not preserved: %q", got.RawText)
	}
	if got.Source == nil || *got.Source != "camera-1" {
		t.Errorf("expected source camera-1, got %v", got.Source)
	}
	if got.Analysis.Species == nil || *got.Analysis.Species != *a.Species {
		t.Errorf("species mismatch: %v", got.Analysis.Species)
	}
	if got.Analysis.Confidence == nil || *got.Analysis.Confidence != 85 {
		t.Errorf("expected confidence 85, got %v", got.Analysis.Confidence)
	}
	if len(got.Analysis.Characteristics) != len(a.Characteristics) {
		t.Errorf("expected %d characteristics, got %v", len(a.Characteristics), got.Analysis.Characteristics)
	}
	if len(got.Analysis.Sections) != len(a.Sections) {
		t.Errorf("expected %d sections, got %v", len(a.Sections), got.Analysis.Sections)
	}
	if got.Analysis.Kind != interpret.KindExtracted {
		t.Errorf("expected extracted kind, got %s", got.Analysis.Kind)
	}
	if got.Assessment.Score != v.Score || got.Assessment.Quality != v.Quality || got.Assessment.IsValid != v.IsValid {
		t.Errorf("assessment mismatch: got %+v, want %+v", got.Assessment, v)
	}
}

func TestGetAnalysisNullableFields(t *testing.T) {
	db := openTestDB(t)
	a := interpret.Parse("nothing useful")
	v := interpret.Validate(a)

	id, err := db.InsertAnalysis(nil, "nothing useful", a, v)
	if err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	got, err := db.GetAnalysis(id)
	if err != nil || got == nil {
		t.Fatalf("GetAnalysis: %v, %v", got, err)
	}
	if got.Source != nil || got.Analysis.Species != nil || got.Analysis.Confidence != nil {
		t.Errorf("expected absent fields to stay nil, got %+v", got)
	}
	if got.Assessment.Issues == nil || len(got.Assessment.Issues) != len(v.Issues) {
		t.Errorf("issues mismatch: got %v, want %v", got.Assessment.Issues, v.Issues)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetAnalysis(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing analysis")
	}
}

func TestListAndDeleteAnalyses(t *testing.T) {
	db := openTestDB(t)
	a := interpret.Parse(tunaText)
	v := interpret.Validate(a)
	first, _ := db.InsertAnalysis(nil, tunaText, a, v)
	second, _ := db.InsertAnalysis(nil, tunaText, a, v)

	list, err := db.ListAnalyses(0)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}
	if list[0].ID != second {
		t.Errorf("expected newest first, got %d", list[0].ID)
	}

	limited, _ := db.ListAnalyses(1)
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}

	found, err := db.FindAnalysesBySpecies("yellowfin TUNA")
	if err != nil {
		t.Fatalf("FindAnalysesBySpecies: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected case-insensitive species match, got %d", len(found))
	}

	deleted, err := db.DeleteAnalysis(first)
	if err != nil || !deleted {
		t.Fatalf("DeleteAnalysis: %v, %v", deleted, err)
	}
	deleted, _ = db.DeleteAnalysis(first)
	if deleted {
		t.Error("expected second delete to report nothing deleted")
	}
}

func TestInsertSample(t *testing.T) {
	db := openTestDB(t)
	p := uniform(9)
	p.Odor = 4

	s, err := db.InsertSample(ptr("tuna A"), p)
	if err != nil {
		t.Fatalf("InsertSample: %v", err)
	}
	if s.Parameters != p {
		t.Errorf("parameters not preserved: %+v", s.Parameters)
	}
	if s.Freshness.Score != 9 || s.Freshness.Category != organoleptic.Prima {
		t.Errorf("expected {9 Prima}, got %+v", s.Freshness)
	}
	if s.Label == nil || *s.Label != "tuna A" {
		t.Errorf("expected label, got %v", s.Label)
	}
}

func TestInsertSampleOutOfRange(t *testing.T) {
	db := openTestDB(t)
	p := uniform(5)
	p.Gill = 10
	if _, err := db.InsertSample(nil, p); !errors.Is(err, organoleptic.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestUpdateSampleParameter(t *testing.T) {
	db := openTestDB(t)
	s, _ := db.InsertSample(nil, uniform(9))

	updated, err := db.UpdateSampleParameter(s.ID, organoleptic.Eye, 1)
	if err != nil {
		t.Fatalf("UpdateSampleParameter: %v", err)
	}
	if updated.Parameters.Eye != 1 {
		t.Errorf("expected eye 1, got %d", updated.Parameters.Eye)
	}
	// (1+9*5)/6 = 7.666...
	if updated.Freshness.Score != 7.7 || updated.Freshness.Category != organoleptic.Baik {
		t.Errorf("expected {7.7 Baik}, got %+v", updated.Freshness)
	}

	stored, _ := db.GetSample(s.ID)
	if stored.Freshness != updated.Freshness || stored.Parameters != updated.Parameters {
		t.Errorf("stored row %+v does not match update result %+v", stored, updated)
	}
}

func TestUpdateSampleParameterRejected(t *testing.T) {
	db := openTestDB(t)
	s, _ := db.InsertSample(nil, uniform(6))

	if _, err := db.UpdateSampleParameter(s.ID, organoleptic.Flesh, 0); !errors.Is(err, organoleptic.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := db.UpdateSampleParameter(s.ID, organoleptic.Parameter("Fin"), 5); !errors.Is(err, organoleptic.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
	if _, err := db.UpdateSampleParameter(12345, organoleptic.Eye, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	stored, _ := db.GetSample(s.ID)
	if stored.Parameters != uniform(6) || stored.Freshness.Score != 6 {
		t.Errorf("rejected updates must not change the row, got %+v", stored)
	}
}

func TestUpdateSampleParameterConcurrent(t *testing.T) {
	db := openTestDB(t)
	s, _ := db.InsertSample(nil, uniform(5))

	var wg sync.WaitGroup
	for i, param := range organoleptic.AllParameters {
		wg.Add(1)
		go func(param organoleptic.Parameter, v int) {
			defer wg.Done()
			if _, err := db.UpdateSampleParameter(s.ID, param, v); err != nil {
				t.Errorf("update %s: %v", param, err)
			}
		}(param, 6+i%3)
	}
	wg.Wait()

	stored, _ := db.GetSample(s.ID)
	want := organoleptic.CalculateFreshness(stored.Parameters)
	if stored.Freshness != want {
		t.Errorf("stored freshness %+v does not match grades %+v", stored.Freshness, stored.Parameters)
	}
	for i, param := range organoleptic.AllParameters {
		if got := stored.Parameters.Get(param); got != 6+i%3 {
			t.Errorf("lost update on %s: got %d", param, got)
		}
	}
}

func TestListAndDeleteSamples(t *testing.T) {
	db := openTestDB(t)
	db.InsertSample(nil, uniform(9))
	db.InsertSample(nil, uniform(8))
	low, _ := db.InsertSample(nil, uniform(2))

	all, err := db.ListSamples("")
	if err != nil {
		t.Fatalf("ListSamples: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(all))
	}
	if all[0].ID != low.ID {
		t.Errorf("expected newest first")
	}

	busuk, _ := db.ListSamples(organoleptic.Busuk)
	if len(busuk) != 1 || busuk[0].ID != low.ID {
		t.Errorf("expected only the Busuk sample, got %+v", busuk)
	}

	deleted, err := db.DeleteSample(low.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteSample: %v, %v", deleted, err)
	}
	if got, _ := db.GetSample(low.ID); got != nil {
		t.Error("expected sample to be gone")
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)

	empty, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats on empty db: %v", err)
	}
	if empty.Analyses != 0 || empty.Samples != 0 || empty.AvgScore != 0 {
		t.Errorf("expected zero stats, got %+v", empty)
	}

	a := interpret.Parse(tunaText)
	db.InsertAnalysis(nil, tunaText, a, interpret.Validate(a))
	empty2 := interpret.Parse("")
	db.InsertAnalysis(nil, "", empty2, interpret.Validate(empty2))

	db.InsertSample(nil, uniform(9))
	db.InsertSample(nil, uniform(7))
	db.InsertSample(nil, uniform(4))

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Analyses != 2 || stats.ValidAnalyses != 1 {
		t.Errorf("expected 2 analyses with 1 valid, got %+v", stats)
	}
	if stats.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", stats.Samples)
	}
	if stats.AvgScore != 8 {
		t.Errorf("expected average 8 over graded samples, got %v", stats.AvgScore)
	}
	if stats.ByCategory[organoleptic.Prima] != 1 || stats.ByCategory[organoleptic.Invalid] != 1 {
		t.Errorf("unexpected category counts %v", stats.ByCategory)
	}
}
