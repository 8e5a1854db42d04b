package service

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubExperimentRepo struct {
	byID     map[string]*domain.Experiment
	seq      int
	writes   int    // successful Create/Update/Delete calls
	findErr  error  // if set, FindByID returns this error
	updateFn func() // called inside Update before the version check
}

func newStubExperimentRepo() *stubExperimentRepo {
	return &stubExperimentRepo{byID: make(map[string]*domain.Experiment)}
}

func cloneExperiment(e *domain.Experiment) *domain.Experiment {
	clone := *e
	clone.TargetWords = append([]domain.TargetWord(nil), e.TargetWords...)
	return &clone
}

func (r *stubExperimentRepo) Create(_ context.Context, e *domain.Experiment) (*domain.Experiment, error) {
	r.seq++
	clone := cloneExperiment(e)
	clone.ID = "exp-" + strconv.Itoa(r.seq)
	r.byID[clone.ID] = clone
	r.writes++
	return cloneExperiment(clone), nil
}

func (r *stubExperimentRepo) FindByID(_ context.Context, id string) (*domain.Experiment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExperimentNotFound
	}
	return cloneExperiment(e), nil
}

// List mirrors the Mongo filter and newest-first sort.
func (r *stubExperimentRepo) List(_ context.Context, f ports.ExperimentFilter) ([]*domain.Experiment, error) {
	var out []*domain.Experiment
	for _, e := range r.byID {
		if f.OwnerID != "" && e.OwnerID != f.OwnerID {
			continue
		}
		if f.ActiveOnly && !e.IsActive {
			continue
		}
		out = append(out, cloneExperiment(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubExperimentRepo) Update(_ context.Context, id string, version int64, u ports.ExperimentUpdate) (*domain.Experiment, error) {
	if r.updateFn != nil {
		r.updateFn()
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExperimentNotFound
	}
	if e.Version != version {
		return nil, domain.ErrConcurrentUpdate
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.StoryTheme != nil {
		e.StoryTheme = *u.StoryTheme
	}
	if u.TargetWords != nil {
		e.TargetWords = append([]domain.TargetWord(nil), (*u.TargetWords)...)
	}
	if u.IsActive != nil {
		e.IsActive = *u.IsActive
	}
	if u.GeneratedStory != nil {
		e.GeneratedStory = *u.GeneratedStory
	}
	if u.AudioURL != nil {
		e.AudioURL = *u.AudioURL
	}
	e.Version++
	r.writes++
	return cloneExperiment(e), nil
}

func (r *stubExperimentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrExperimentNotFound
	}
	delete(r.byID, id)
	r.writes++
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	teacher      = domain.Identity{UserID: "teacher-1", Username: "tess", Role: domain.RoleTeacher}
	otherTeacher = domain.Identity{UserID: "teacher-2", Username: "otto", Role: domain.RoleTeacher}
	participant  = domain.Identity{UserID: "participant-1", Username: "pat", Role: domain.RoleParticipant}
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func newExperimentSvc(repo *stubExperimentRepo) *ExperimentService {
	return NewExperimentService(repo, zerolog.Nop())
}

func mustCreate(t *testing.T, svc *ExperimentService, caller domain.Identity, in ports.CreateExperimentInput) *domain.Experiment {
	t.Helper()
	exp, err := svc.Create(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return exp
}

func basicInput() ports.CreateExperimentInput {
	return ports.CreateExperimentInput{
		Title:       "T",
		StoryTheme:  "S",
		TargetWords: []domain.TargetWord{{Word: "a", Definition: "b"}},
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestExperimentService_Create_Defaults(t *testing.T) {
	svc := newExperimentSvc(newStubExperimentRepo())

	exp := mustCreate(t, svc, teacher, basicInput())

	if exp.ID == "" || exp.OwnerID != teacher.UserID {
		t.Fatalf("unexpected identity fields: %+v", exp)
	}
	if exp.IsActive {
		t.Fatalf("new experiments must be inactive")
	}
	if exp.GeneratedStory != "" || exp.AudioURL != "" {
		t.Fatalf("new experiments must have empty content")
	}
	if exp.CreatedAt.IsZero() || exp.Version != 1 {
		t.Fatalf("expected createdAt and version 1, got %+v", exp)
	}
}

func TestExperimentService_Create_Validation(t *testing.T) {
	svc := newExperimentSvc(newStubExperimentRepo())

	cases := map[string]ports.CreateExperimentInput{
		"empty title":      {Title: " ", StoryTheme: "S"},
		"empty theme":      {Title: "T", StoryTheme: ""},
		"empty word":       {Title: "T", StoryTheme: "S", TargetWords: []domain.TargetWord{{Word: "", Definition: "d"}}},
		"empty definition": {Title: "T", StoryTheme: "S", TargetWords: []domain.TargetWord{{Word: "w", Definition: ""}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), teacher, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestExperimentService_CreateThenGetPublic_RoundTrip(t *testing.T) {
	svc := newExperimentSvc(newStubExperimentRepo())
	exp := mustCreate(t, svc, teacher, basicInput())

	pub, err := svc.GetPublic(context.Background(), participant, exp.ID)
	if err != nil {
		t.Fatalf("GetPublic: %v", err)
	}
	if !reflect.DeepEqual(pub.TargetWords, []domain.TargetWord{{Word: "a", Definition: "b"}}) {
		t.Fatalf("unexpected target words: %+v", pub.TargetWords)
	}
	if pub.GeneratedStory != "" || pub.AudioURL != "" {
		t.Fatalf("expected empty content, got %+v", pub)
	}
}

func TestExperimentService_GetPublic_NotFound(t *testing.T) {
	svc := newExperimentSvc(newStubExperimentRepo())
	if _, err := svc.GetPublic(context.Background(), participant, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestExperimentService_ListOwnedAndAvailable(t *testing.T) {
	repo := newStubExperimentRepo()
	svc := newExperimentSvc(repo)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	mine1 := mustCreate(t, svc, teacher, basicInput())
	mine2 := mustCreate(t, svc, teacher, basicInput())
	theirs := mustCreate(t, svc, otherTeacher, basicInput())

	if _, err := svc.Update(context.Background(), otherTeacher, theirs.ID, ports.UpdateExperimentInput{IsActive: boolPtr(true)}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	owned, err := svc.ListOwned(context.Background(), teacher)
	if err != nil {
		t.Fatalf("ListOwned: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != mine2.ID || owned[1].ID != mine1.ID {
		t.Fatalf("expected own experiments newest first, got %+v", owned)
	}

	avail, err := svc.ListAvailable(context.Background(), participant)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(avail) != 1 || avail[0].ID != theirs.ID {
		t.Fatalf("expected only the active experiment, got %+v", avail)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestExperimentService_Update_PartialKeepsOtherFields(t *testing.T) {
	repo := newStubExperimentRepo()
	svc := newExperimentSvc(repo)
	in := basicInput()
	in.Description = "keep me"
	exp := mustCreate(t, svc, teacher, in)

	updated, err := svc.Update(context.Background(), teacher, exp.ID, ports.UpdateExperimentInput{IsActive: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.IsActive || updated.Title != "T" || updated.Description != "keep me" {
		t.Fatalf("unexpected experiment after partial update: %+v", updated)
	}
}

func TestExperimentService_Update_EmptyTitleRejected(t *testing.T) {
	repo := newStubExperimentRepo()
	svc := newExperimentSvc(repo)
	exp := mustCreate(t, svc, teacher, basicInput())

	if _, err := svc.Update(context.Background(), teacher, exp.ID, ports.UpdateExperimentInput{Title: strPtr("")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExperimentService_Update_NonOwnerDoesNotMutate(t *testing.T) {
	repo := newStubExperimentRepo()
	svc := newExperimentSvc(repo)
	exp := mustCreate(t, svc, teacher, basicInput())
	before := cloneExperiment(repo.byID[exp.ID])
	writes := repo.writes

	_, err := svc.Update(context.Background(), otherTeacher, exp.ID, ports.UpdateExperimentInput{Title: strPtr("hijacked"), IsActive: boolPtr(true)})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if !reflect.DeepEqual(before, repo.byID[exp.ID]) || repo.writes != writes {
		t.Fatalf("entity changed after rejected update")
	}
}

func TestExperimentService_Update_NotFound(t *testing.T) {
	svc := newExperimentSvc(newStubExperimentRepo())
	_, err := svc.Update(context.Background(), teacher, "nope", ports.UpdateExperimentInput{Title: strPtr("x")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExperimentService_Update_WordsChangeClearsContent(t *testing.T) {
	repo := newStubExperimentRepo()
	svc := newExperimentSvc(repo)
	exp := mustCreate(t, svc, teacher, basicInput())
	repo.byID[exp.ID].GeneratedStory = "a story with __a__ in it that is certainly long enough"
	repo.byID[exp.ID].AudioURL = "/audio/x.mp3"

	same := []domain.TargetWord{{Word: "a", Definition: "new definition"}}
	updated, err := svc.Update(context.Background(), teacher, exp.ID, ports.UpdateExperimentInput{TargetWords: &same})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.GeneratedStory == "" {
		t.Fatalf("editing only a definition should keep generated content")
	}

	changed := []domain.TargetWord{{Word: "z", Definition: "zed"}}
	updated, err = svc.Update(context.Background(), teacher, exp.ID, ports.UpdateExperimentInput{TargetWords: &changed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.GeneratedStory != "" || updated.AudioURL != "" {
		t.Fatalf("changing target words must clear stale content, got %+v", updated)
	}
}

func TestExperimentService_Delete(t *testing.T) {
	repo := newStubExperimentRepo()
	svc := newExperimentSvc(repo)
	exp := mustCreate(t, svc, teacher, basicInput())

	if err := svc.Delete(context.Background(), otherTeacher, exp.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, ok := repo.byID[exp.ID]; !ok {
		t.Fatalf("experiment deleted by non-owner")
	}

	if err := svc.Delete(context.Background(), teacher, exp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), teacher, exp.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
