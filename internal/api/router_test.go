package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/service"
	"github.com/wordlab/study-api/internal/infrastructure/content"
)

type testAPI struct {
	e           *echo.Echo
	experiments *memExperiments
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	tokens := service.NewTokenManager("test-secret", time.Hour)
	experiments := newMemExperiments()
	expSvc := service.NewExperimentService(experiments, log)
	reg := prometheus.NewRegistry()

	e := NewRouter(Dependencies{
		Auth:        service.NewAuthService(&memUsers{}, tokens, log),
		Tokens:      tokens,
		Experiments: expSvc,
		Content: service.NewContentService(experiments,
			content.NewFallbackStoryGenerator(log),
			content.NewFallbackAudioGenerator(log),
			"en", log),
		Sessions:   service.NewSessionService(&memSessions{}, expSvc, log),
		Registerer: reg,
		Gatherer:   reg,
		Logger:     log,
	})
	return &testAPI{e: e, experiments: experiments}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}

// signup registers and logs in, returning the token.
func (a *testAPI) signup(t *testing.T, username, role string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"pw-`+username+`","role":"`+role+`"}`)
	expectStatus(t, rec, http.StatusCreated)

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"`+username+`","password":"pw-`+username+`"}`)
	expectStatus(t, rec, http.StatusOK)
	return decode[struct {
		Token string `json:"token"`
	}](t, rec).Token
}

const twoWordExperiment = `{"title":"Climbing","description":"A mountain story","storyTheme":"mountains","targetWords":[
	{"word":"perseverance","definition":"continued effort despite difficulty"},
	{"word":"cognitive","definition":"relating to thinking"}]}`

func (a *testAPI) createExperiment(t *testing.T, token string) domain.Experiment {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/experiments", token, twoWordExperiment)
	expectStatus(t, rec, http.StatusCreated)
	return decode[domain.Experiment](t, rec)
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"ada","email":"ada@example.com","password":"pw","role":"teacher"}`)
	expectStatus(t, rec, http.StatusCreated)
	reg := decode[map[string]any](t, rec)
	if reg["message"] == nil || reg["user"] == nil {
		t.Fatalf("unexpected register body: %v", reg)
	}

	// same email, different username
	rec = a.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"ada2","email":"ada@example.com","password":"pw","role":"teacher"}`)
	expectStatus(t, rec, http.StatusConflict)

	rec = a.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"x","email":"x@example.com","password":"pw","role":"admin"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = a.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"x","password":"pw","role":"teacher"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"ada","password":"wrong"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
	if msg := decode[map[string]string](t, rec)["message"]; msg != "invalid credentials" {
		t.Fatalf("unexpected message %q", msg)
	}

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"nobody","password":"pw"}`)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"ada@example.com","password":"pw"}`)
	expectStatus(t, rec, http.StatusOK)
	if decode[map[string]any](t, rec)["token"] == "" {
		t.Fatalf("expected a token when logging in by email")
	}
}

func TestExperimentRoutes_AccessControl(t *testing.T) {
	a := newTestAPI(t)
	teacher := a.signup(t, "prof", domain.RoleTeacher)
	student := a.signup(t, "sam", domain.RoleParticipant)

	expectStatus(t, a.do(t, http.MethodGet, "/api/experiments", "", ""), http.StatusUnauthorized)
	expectStatus(t, a.do(t, http.MethodGet, "/api/experiments", "garbage", ""), http.StatusUnauthorized)
	expectStatus(t, a.do(t, http.MethodPost, "/api/experiments", student, twoWordExperiment), http.StatusForbidden)
	expectStatus(t, a.do(t, http.MethodGet, "/api/experiments/available", teacher, ""), http.StatusForbidden)

	rec := a.do(t, http.MethodPost, "/api/experiments", teacher, `{"title":"","storyTheme":"sea"}`)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestExperimentLifecycle(t *testing.T) {
	a := newTestAPI(t)
	teacher := a.signup(t, "prof", domain.RoleTeacher)
	rival := a.signup(t, "rival", domain.RoleTeacher)
	student := a.signup(t, "sam", domain.RoleParticipant)

	exp := a.createExperiment(t, teacher)
	if exp.IsActive || exp.GeneratedStory != "" || exp.AudioURL != "" {
		t.Fatalf("new experiment must be an inactive draft: %+v", exp)
	}

	// Generate content.
	rec := a.do(t, http.MethodPost, "/api/experiments/"+exp.ID+"/generate-content", teacher, "")
	expectStatus(t, rec, http.StatusOK)
	gen := decode[struct {
		Message    string            `json:"message"`
		Experiment domain.Experiment `json:"experiment"`
	}](t, rec)
	for _, w := range []string{"__perseverance__", "__cognitive__"} {
		if !strings.Contains(gen.Experiment.GeneratedStory, w) {
			t.Fatalf("story missing %s: %q", w, gen.Experiment.GeneratedStory)
		}
	}
	if gen.Experiment.AudioURL != "/audio/experiment_"+exp.ID+"_full.mp3" {
		t.Fatalf("unexpected audio url %q", gen.Experiment.AudioURL)
	}

	// A different teacher can neither generate, edit nor delete.
	before := *a.experiments.byID[exp.ID]
	expectStatus(t, a.do(t, http.MethodPost, "/api/experiments/"+exp.ID+"/generate-content", rival, ""), http.StatusForbidden)
	expectStatus(t, a.do(t, http.MethodPut, "/api/experiments/"+exp.ID, rival, `{"title":"mine"}`), http.StatusForbidden)
	expectStatus(t, a.do(t, http.MethodDelete, "/api/experiments/"+exp.ID, rival, ""), http.StatusForbidden)
	if after := a.experiments.byID[exp.ID]; after.Title != before.Title || after.Version != before.Version {
		t.Fatalf("experiment changed after forbidden requests")
	}

	// Not yet active, so not listed.
	rec = a.do(t, http.MethodGet, "/api/experiments/available", student, "")
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]domain.PublicExperiment](t, rec); len(list) != 0 {
		t.Fatalf("inactive experiments must not be listed: %+v", list)
	}

	rec = a.do(t, http.MethodPut, "/api/experiments/"+exp.ID, teacher, `{"isActive":true}`)
	expectStatus(t, rec, http.StatusOK)
	if upd := decode[domain.Experiment](t, rec); !upd.IsActive || upd.GeneratedStory != gen.Experiment.GeneratedStory {
		t.Fatalf("activation must keep content: %+v", upd)
	}

	rec = a.do(t, http.MethodGet, "/api/experiments/available", student, "")
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]map[string]any](t, rec); len(list) != 1 || list[0]["ownerId"] != nil || list[0]["isActive"] != nil {
		t.Fatalf("expected one public projection, got %+v", list)
	}

	rec = a.do(t, http.MethodGet, "/api/experiments/"+exp.ID, student, "")
	expectStatus(t, rec, http.StatusOK)
	pub := decode[domain.PublicExperiment](t, rec)
	if pub.Title != "Climbing" || pub.Description != "A mountain story" || len(pub.TargetWords) != 2 {
		t.Fatalf("unexpected public view: %+v", pub)
	}

	rec = a.do(t, http.MethodGet, "/api/experiments", teacher, "")
	expectStatus(t, rec, http.StatusOK)
	if owned := decode[[]domain.Experiment](t, rec); len(owned) != 1 {
		t.Fatalf("expected one owned experiment, got %d", len(owned))
	}

	expectStatus(t, a.do(t, http.MethodDelete, "/api/experiments/"+exp.ID, teacher, ""), http.StatusOK)
	expectStatus(t, a.do(t, http.MethodGet, "/api/experiments/"+exp.ID, student, ""), http.StatusNotFound)
}

func TestGenerateContent_NoTargetWords(t *testing.T) {
	a := newTestAPI(t)
	teacher := a.signup(t, "prof", domain.RoleTeacher)

	rec := a.do(t, http.MethodPost, "/api/experiments", teacher, `{"title":"Empty","storyTheme":"sea","targetWords":[]}`)
	expectStatus(t, rec, http.StatusCreated)
	exp := decode[domain.Experiment](t, rec)

	rec = a.do(t, http.MethodPost, "/api/experiments/"+exp.ID+"/generate-content", teacher, "")
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[map[string]string](t, rec)["message"]; msg != domain.ErrNoTargetWords.Msg {
		t.Fatalf("unexpected message %q", msg)
	}
	if stored := a.experiments.byID[exp.ID]; stored.Version != exp.Version {
		t.Fatalf("failed generation must not write")
	}
}

func TestSessionFlow(t *testing.T) {
	a := newTestAPI(t)
	teacher := a.signup(t, "prof", domain.RoleTeacher)
	student := a.signup(t, "sam", domain.RoleParticipant)
	other := a.signup(t, "olga", domain.RoleParticipant)
	exp := a.createExperiment(t, teacher)

	expectStatus(t, a.do(t, http.MethodPost, "/api/experiments/"+exp.ID+"/sessions", student, `{}`), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodPost, "/api/experiments/"+exp.ID+"/sessions", student, `{"condition":"placebo"}`), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodPost, "/api/experiments/missing/sessions", student, `{"condition":"control"}`), http.StatusNotFound)

	rec := a.do(t, http.MethodPost, "/api/experiments/"+exp.ID+"/sessions", student, `{"condition":"treatment"}`)
	expectStatus(t, rec, http.StatusCreated)
	started := decode[struct {
		Session    domain.StudySession     `json:"session"`
		Experiment domain.PublicExperiment `json:"experiment"`
	}](t, rec)
	if started.Session.Stage != domain.StageConsent || started.Experiment.ID != exp.ID {
		t.Fatalf("unexpected start: %+v", started)
	}
	path := "/api/sessions/" + started.Session.ID

	expectStatus(t, a.do(t, http.MethodPost, path+"/advance", student, `{"consent":false}`), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodPost, path+"/advance", other, `{"consent":true}`), http.StatusForbidden)
	expectStatus(t, a.do(t, http.MethodGet, path, other, ""), http.StatusForbidden)

	want := []domain.Stage{domain.StagePriorKnowledge, domain.StageGapFill, domain.StageTranscription, domain.StageComplete, domain.StageComplete}
	for i, stage := range want {
		body := ""
		if i == 0 {
			body = `{"consent":true}`
		}
		rec = a.do(t, http.MethodPost, path+"/advance", student, body)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[domain.StudySession](t, rec).Stage; got != stage {
			t.Fatalf("advance %d: expected %s, got %s", i+1, stage, got)
		}
	}

	rec = a.do(t, http.MethodGet, path, student, "")
	expectStatus(t, rec, http.StatusOK)
	if s := decode[domain.StudySession](t, rec); s.Stage != domain.StageComplete || s.ConsentedAt == nil {
		t.Fatalf("unexpected stored session: %+v", s)
	}
	expectStatus(t, a.do(t, http.MethodGet, "/api/sessions/unknown", student, ""), http.StatusNotFound)
}

func TestOpsRoutes(t *testing.T) {
	a := newTestAPI(t)

	expectStatus(t, a.do(t, http.MethodGet, "/health", "", ""), http.StatusOK)
	expectStatus(t, a.do(t, http.MethodGet, "/api/health", "", ""), http.StatusOK)
	expectStatus(t, a.do(t, http.MethodGet, "/health/ready", "", ""), http.StatusOK)

	rec := a.do(t, http.MethodGet, "/metrics", "", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected http metrics, got %q", rec.Body.String())
	}

	rec = a.do(t, http.MethodGet, "/nope", "", "")
	expectStatus(t, rec, http.StatusNotFound)
	if decode[map[string]string](t, rec)["message"] == "" {
		t.Fatalf("expected message envelope for unknown routes")
	}
}
