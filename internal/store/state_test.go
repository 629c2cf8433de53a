package store

import (
	"testing"

	"github.com/seenimoa/disciplineviz/pkg/models"
)

func recs(values ...float64) []models.Record {
	out := make([]models.Record, len(values))
	for i, v := range values {
		out[i] = models.Record{"value": v, "Students": v * 2, "Enrollment": v * 4}
	}
	return out
}

func TestNewStateSelectsAll(t *testing.T) {
	s := NewState()
	if len(s.Selected) != 5 {
		t.Fatalf("Selected: got %d, want 5", len(s.Selected))
	}
	if len(s.Data) != 0 {
		t.Errorf("Data should start empty, got %d entries", len(s.Data))
	}
	if s.Phase != PhaseInitializing {
		t.Errorf("Phase: got %q", s.Phase)
	}
	if s.Loading {
		t.Error("Loading should start false")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := NewState()
	s.Data[models.CategoryBlack] = recs(1)

	next := Reduce(s, Deselected{Category: models.CategoryBlack})

	if !s.IsSelected(models.CategoryBlack) {
		t.Error("input Selected was mutated")
	}
	if _, ok := s.Data[models.CategoryBlack]; !ok {
		t.Error("input Data was mutated")
	}
	if next.IsSelected(models.CategoryBlack) {
		t.Error("Black should be deselected in the result")
	}
}

func TestReduceFetchLifecycle(t *testing.T) {
	s := Reduce(NewState(), Cleared{})
	s.Err = "previous failure"

	s = Reduce(s, FetchStarted{Category: models.CategoryHispanic, Token: 1})
	if !s.Loading || s.Phase != PhaseLoading {
		t.Fatalf("after start: Loading=%v Phase=%q", s.Loading, s.Phase)
	}
	if s.Err != "" {
		t.Errorf("error should be cleared at fetch start, got %q", s.Err)
	}
	if s.IsSelected(models.CategoryHispanic) {
		t.Error("category must not be selected before the fetch succeeds")
	}

	s = Reduce(s, FetchSucceeded{Category: models.CategoryHispanic, Records: recs(5, 6), Token: 1})
	if s.Loading || s.Phase != PhaseReady {
		t.Fatalf("after success: Loading=%v Phase=%q", s.Loading, s.Phase)
	}
	if !s.IsSelected(models.CategoryHispanic) {
		t.Error("category should be selected after success")
	}
	if got := s.Data[models.CategoryHispanic]; len(got) != 2 || got[0].Value() != 5 || got[1].Value() != 6 {
		t.Errorf("records: got %v", got)
	}
}

func TestReduceFetchFailureKeepsSelection(t *testing.T) {
	s := Reduce(NewState(), Deselected{Category: models.CategoryBlack})
	before := len(s.Selected)

	s = Reduce(s, FetchStarted{Category: models.CategoryBlack, Token: 7})
	s = Reduce(s, FetchFailed{Category: models.CategoryBlack, Err: "Failed to fetch data", Token: 7})

	if len(s.Selected) != before || s.IsSelected(models.CategoryBlack) {
		t.Errorf("selection changed on failure: %v", s.Selected)
	}
	if s.Err != "Failed to fetch data" {
		t.Errorf("Err: got %q", s.Err)
	}
	if s.Loading {
		t.Error("Loading should be cleared after failure")
	}
	if s.Phase != PhaseErrored {
		t.Errorf("Phase: got %q, want errored", s.Phase)
	}
}

func TestReduceStaleTokensIgnored(t *testing.T) {
	s := Reduce(NewState(), Cleared{})
	s = Reduce(s, FetchStarted{Category: models.CategoryBlack, Token: 1})
	s = Reduce(s, FetchStarted{Category: models.CategoryBlack, Token: 2})

	// The superseded fetch resolves first and must be dropped.
	s = Reduce(s, FetchSucceeded{Category: models.CategoryBlack, Records: recs(99), Token: 1})
	if s.IsSelected(models.CategoryBlack) {
		t.Fatal("stale result was applied")
	}
	if !s.Loading {
		t.Error("newer fetch is still pending, Loading should stay true")
	}

	s = Reduce(s, FetchSucceeded{Category: models.CategoryBlack, Records: recs(1), Token: 2})
	if got := s.Data[models.CategoryBlack]; len(got) != 1 || got[0].Value() != 1 {
		t.Errorf("records: got %v", got)
	}

	// A failure after Cleared is equally stale.
	s = Reduce(s, FetchStarted{Category: models.CategoryHispanic, Token: 3})
	s = Reduce(s, Cleared{})
	s = Reduce(s, FetchFailed{Category: models.CategoryHispanic, Err: "late", Token: 3})
	if s.Err != "" {
		t.Errorf("stale failure set error %q", s.Err)
	}
}

func TestReduceClear(t *testing.T) {
	s := NewState()
	s.Data[models.CategoryBlack] = recs(1)
	s = Reduce(s, LoadAllStarted{Token: 4})
	s = Reduce(s, Cleared{})

	if len(s.Selected) != 0 || len(s.Data) != 0 {
		t.Errorf("Clear left Selected=%v Data=%v", s.Selected, s.Data)
	}
	if s.Loading || s.BatchToken() != 0 {
		t.Error("Clear should invalidate the pending batch")
	}
}

func TestReduceLoadAll(t *testing.T) {
	all := map[models.Category][]models.Record{}
	for i, c := range models.AllCategories() {
		all[c] = recs(float64(i))
	}

	s := Reduce(NewState(), LoadAllStarted{Token: 1})
	if s.Phase != PhaseLoading {
		t.Fatalf("Phase: got %q", s.Phase)
	}
	ok := Reduce(s, LoadAllSucceeded{Data: all, Token: 1})
	if len(ok.Data) != 5 || len(ok.Selected) != 5 {
		t.Errorf("success: Data=%d Selected=%d", len(ok.Data), len(ok.Selected))
	}
	if ok.Phase != PhaseReady {
		t.Errorf("Phase: got %q", ok.Phase)
	}

	failed := Reduce(s, LoadAllFailed{Err: "Failed to fetch data", Token: 1})
	if len(failed.Data) != 0 {
		t.Errorf("failure kept %d entries", len(failed.Data))
	}
	if failed.Err == "" || failed.Phase != PhaseErrored {
		t.Errorf("failure: Err=%q Phase=%q", failed.Err, failed.Phase)
	}

	stale := Reduce(s, LoadAllSucceeded{Data: all, Token: 99})
	if len(stale.Data) != 0 {
		t.Error("stale batch result was applied")
	}
}

func TestReduceLoadAllSkipsDeselected(t *testing.T) {
	all := map[models.Category][]models.Record{}
	for _, c := range models.AllCategories() {
		all[c] = recs(1)
	}
	s := Reduce(NewState(), LoadAllStarted{Token: 1})
	s = Reduce(s, Deselected{Category: models.CategoryLowIncome})
	s = Reduce(s, LoadAllSucceeded{Data: all, Token: 1})

	if _, ok := s.Data[models.CategoryLowIncome]; ok {
		t.Error("data for a deselected category should not be stored")
	}
	if len(s.Data) != len(s.Selected) {
		t.Errorf("data keys (%d) should equal selection (%d)", len(s.Data), len(s.Selected))
	}
}

func TestReduceLoadAllRestoresSelection(t *testing.T) {
	all := map[models.Category][]models.Record{}
	for _, c := range models.AllCategories() {
		all[c] = recs(1)
	}
	s := Reduce(NewState(), Cleared{})
	s = Reduce(s, LoadAllStarted{Token: 1})
	if len(s.Selected) != 5 {
		t.Fatalf("Selected after start: got %v, want every category", s.Selected)
	}
	s = Reduce(s, LoadAllSucceeded{Data: all, Token: 1})
	if len(s.Data) != 5 || len(s.Selected) != 5 {
		t.Errorf("after success: Data=%d Selected=%v", len(s.Data), s.Selected)
	}
	for i, c := range models.AllCategories() {
		if s.Selected[i] != c {
			t.Errorf("Selected[%d]: got %q, want %q", i, s.Selected[i], c)
		}
	}
}

func TestReAddedCategoryIsAppended(t *testing.T) {
	s := NewState()
	s = Reduce(s, Deselected{Category: models.CategoryAllStudents})
	s = Reduce(s, FetchStarted{Category: models.CategoryAllStudents, Token: 1})
	s = Reduce(s, FetchSucceeded{Category: models.CategoryAllStudents, Records: recs(1), Token: 1})

	last := s.Selected[len(s.Selected)-1]
	if last != models.CategoryAllStudents {
		t.Errorf("re-added category should be last, got order %v", s.Selected)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewState()
	s.Data[models.CategoryBlack] = recs(1)
	c := s.Clone()
	c.Data[models.CategoryBlack][0]["value"] = 42.0
	c.Selected[0] = "Mutated"
	if s.Data[models.CategoryBlack][0].Value() != 1 {
		t.Error("Clone shares records with the original")
	}
	if s.Selected[0] == "Mutated" {
		t.Error("Clone shares Selected with the original")
	}
}
