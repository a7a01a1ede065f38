package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
	"github.com/quizforge/quizforge/internal/storage"
)

// newTestServer wires the API the same way the gateway does, minus the
// operational middleware, over in-memory storage.
func newTestServer(t *testing.T, generatorURL string) *httptest.Server {
	t.Helper()

	records := storage.NewMemRecords()
	roster, err := auth.NewRoster(auth.DefaultSeeds())
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	sessions := auth.NewSessionManager(roster, records)
	tokens := auth.NewTokenService("test-secret")
	classes := quiz.NewClassRepo(records)
	ledger := quiz.NewAttemptLedger(records, sessions)
	gen := genai.NewClient(generatorURL)

	r := chi.NewRouter()
	r.Post("/auth/login", api.LoginHandler(sessions, tokens))
	r.Post("/auth/logout", api.LogoutHandler(sessions))
	r.With(auth.OptionalJWT(tokens)).Get("/nav/{target}", api.NavHandler())

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(tokens))
		pr.With(rbac.Require("class:create")).
			Post("/classes", api.CreateClassHandler(classes, nil))
		pr.With(rbac.Require("class:delete")).
			Delete("/classes/{classID}", api.DeleteClassHandler(classes, nil))
		pr.With(rbac.Require("quiz:ingest")).
			Post("/classes/{classID}/quizzes", api.IngestQuizHandler(classes))
		pr.With(rbac.Require("quiz:ingest")).
			Post("/classes/{classID}/quizzes/generate", api.GenerateFromFileHandler(classes, gen, nil))
		pr.With(rbac.Require("quiz:ingest")).
			Post("/classes/{classID}/quizzes/generate-youtube", api.GenerateFromYouTubeHandler(classes, gen))
		pr.With(rbac.Require("class:view")).
			Get("/classes", api.ListClassesHandler(classes))
		pr.With(rbac.Require("class:view")).
			Get("/classes/{classID}", api.GetClassHandler(classes))
		pr.With(rbac.Require("class:view")).
			Get("/classes/{classID}/quizzes/{quizKey}", api.GetQuizHandler(classes))
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.SubmitAttemptHandler(classes, ledger, nil))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(ledger))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/summary", api.AttemptSummaryHandler(ledger))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("login decode: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatalf("empty token")
	}
	return out.AccessToken
}

func call(t *testing.T, token, method, url string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

const docJSON = `{"questions":[
	{"question":"Q1?","options":["A","B"],"correctAnswer":"A","explanation":"because"},
	{"question":"Q2?","options":["A","B"],"correctAnswer":"B"}
]}`

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	login(t, srv, "prof", "pass")

	resp, _ := http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(`{"username":"prof","password":"wrong"}`))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(`{"username":"","password":""}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty credentials: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(`{broken`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newTestServer(t, "")

	resp := call(t, "", http.MethodGet, srv.URL+"/classes", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", resp.StatusCode)
	}
	resp = call(t, "not-a-token", http.MethodGet, srv.URL+"/classes", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", resp.StatusCode)
	}
}

func TestRoleEnforcement(t *testing.T) {
	srv := newTestServer(t, "")
	learner := login(t, srv, "stu1", "pass1")
	instructor := login(t, srv, "prof", "pass")

	// learners cannot author
	resp := call(t, learner, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"Hack"}`))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("learner create class: status %d", resp.StatusCode)
	}
	resp = call(t, learner, http.MethodDelete, srv.URL+"/classes/c-1?confirm=true", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("learner delete class: status %d", resp.StatusCode)
	}
	resp = call(t, learner, http.MethodPost, srv.URL+"/classes/c-1/quizzes", strings.NewReader(docJSON))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("learner ingest quiz: status %d", resp.StatusCode)
	}

	// instructors cannot sit quizzes
	resp = call(t, instructor, http.MethodPost, srv.URL+"/attempts", strings.NewReader(`{}`))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("instructor submit attempt: status %d", resp.StatusCode)
	}

	// both can browse
	for _, tok := range []string{learner, instructor} {
		resp = call(t, tok, http.MethodGet, srv.URL+"/classes", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list classes: status %d", resp.StatusCode)
		}
	}
}

func TestClassLifecycle(t *testing.T) {
	srv := newTestServer(t, "")
	instructor := login(t, srv, "prof", "pass")
	learner := login(t, srv, "stu1", "pass1")

	resp := call(t, instructor, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"Biology"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create class: status %d", resp.StatusCode)
	}
	var class quiz.Class
	decode(t, resp, &class)
	if class.Name != "Biology" || class.ID == "" {
		t.Fatalf("unexpected class: %+v", class)
	}

	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"   "}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank class name: status %d", resp.StatusCode)
	}

	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes/"+class.ID+"/quizzes", strings.NewReader(docJSON))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest quiz: status %d", resp.StatusCode)
	}
	var created quiz.Quiz
	decode(t, resp, &created)
	if created.ClassName != "Biology" || created.NumQuestions != 2 {
		t.Fatalf("provenance missing: %+v", created)
	}

	// learner view has the answer key stripped
	resp = call(t, learner, http.MethodGet, srv.URL+"/classes/"+class.ID+"/quizzes/0", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("learner get quiz: status %d", resp.StatusCode)
	}
	var redacted quiz.Quiz
	decode(t, resp, &redacted)
	for i, q := range redacted.Questions {
		if q.CorrectAnswer != "" || q.Explanation != "" {
			t.Fatalf("question %d leaked key to learner", i)
		}
	}

	// instructor view keeps it
	resp = call(t, instructor, http.MethodGet, srv.URL+"/classes/"+class.ID+"/quizzes/0", nil)
	var full quiz.Quiz
	decode(t, resp, &full)
	if full.Questions[0].CorrectAnswer != "A" {
		t.Fatalf("instructor view redacted: %+v", full.Questions[0])
	}

	// delete demands explicit confirmation
	resp = call(t, instructor, http.MethodDelete, srv.URL+"/classes/"+class.ID, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete: status %d", resp.StatusCode)
	}
	resp = call(t, instructor, http.MethodDelete, srv.URL+"/classes/"+class.ID+"?confirm=true", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("confirmed delete: status %d", resp.StatusCode)
	}
	resp = call(t, instructor, http.MethodGet, srv.URL+"/classes/"+class.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted class still served: status %d", resp.StatusCode)
	}
}

func TestIngestRejectsUnwinnableQuiz(t *testing.T) {
	srv := newTestServer(t, "")
	instructor := login(t, srv, "prof", "pass")

	resp := call(t, instructor, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"Bio"}`))
	var class quiz.Class
	decode(t, resp, &class)

	bad := `{"questions":[{"question":"Q?","options":["A","B"],"correctAnswer":"C"}]}`
	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes/"+class.ID+"/quizzes", strings.NewReader(bad))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("answer outside options accepted: status %d", resp.StatusCode)
	}

	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes/c-missing/quizzes", strings.NewReader(docJSON))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown class: status %d", resp.StatusCode)
	}
}

func TestAttemptFlow(t *testing.T) {
	srv := newTestServer(t, "")
	instructor := login(t, srv, "prof", "pass")
	learner := login(t, srv, "stu1", "pass1")

	resp := call(t, instructor, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"Biology"}`))
	var class quiz.Class
	decode(t, resp, &class)
	call(t, instructor, http.MethodPost, srv.URL+"/classes/"+class.ID+"/quizzes", strings.NewReader(docJSON))

	// partial submissions never reach the ledger
	partial := fmt.Sprintf(`{"classId":%q,"quizId":"0","selections":{"0":"A"}}`, class.ID)
	resp = call(t, learner, http.MethodPost, srv.URL+"/attempts", strings.NewReader(partial))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("partial submission: status %d", resp.StatusCode)
	}

	full := fmt.Sprintf(`{"classId":%q,"quizId":"0","selections":{"0":"A","1":"A"}}`, class.ID)
	resp = call(t, learner, http.MethodPost, srv.URL+"/attempts", strings.NewReader(full))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	var result struct {
		Attempt    quiz.Attempt       `json:"attempt"`
		Review     []quiz.ReviewState `json:"review"`
		Percentage int                `json:"percentage"`
	}
	decode(t, resp, &result)
	if result.Attempt.Score != 1 || result.Attempt.TotalQuestions != 2 || result.Percentage != 50 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Review[0] != quiz.ReviewCorrect || result.Review[1] != quiz.ReviewIncorrect {
		t.Fatalf("unexpected review: %v", result.Review)
	}

	// the learner sees their own ledger
	resp = call(t, learner, http.MethodGet, srv.URL+"/attempts", nil)
	var attempts []quiz.Attempt
	decode(t, resp, &attempts)
	if len(attempts) != 1 {
		t.Fatalf("own ledger: %d attempts", len(attempts))
	}

	// another learner sees an empty one
	other := login(t, srv, "stu2", "pass2")
	resp = call(t, other, http.MethodGet, srv.URL+"/attempts", nil)
	decode(t, resp, &attempts)
	if len(attempts) != 0 {
		t.Fatalf("foreign ledger leaked: %d attempts", len(attempts))
	}

	// a learner cannot read someone else's ledger via user_id
	resp = call(t, other, http.MethodGet, srv.URL+"/attempts?user_id=2", nil)
	decode(t, resp, &attempts)
	if len(attempts) != 0 {
		t.Fatalf("user_id override worked for a learner")
	}

	// the instructor can (stu1 has account id 2)
	resp = call(t, instructor, http.MethodGet, srv.URL+"/attempts?user_id=2", nil)
	decode(t, resp, &attempts)
	if len(attempts) != 1 {
		t.Fatalf("instructor view: %d attempts", len(attempts))
	}

	resp = call(t, learner, http.MethodGet, srv.URL+"/attempts/summary", nil)
	var summary quiz.Summary
	decode(t, resp, &summary)
	if summary.Score != 1 || summary.Total != 2 || summary.Percentage != 50 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// unknown quiz
	missing := fmt.Sprintf(`{"classId":%q,"quizId":"99","selections":{"0":"A","1":"A"}}`, class.ID)
	resp = call(t, learner, http.MethodPost, srv.URL+"/attempts", strings.NewReader(missing))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown quiz: status %d", resp.StatusCode)
	}
}

func TestNavEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	resp := call(t, "", http.MethodGet, srv.URL+"/nav/instructor", nil)
	var out struct {
		View string `json:"view"`
	}
	decode(t, resp, &out)
	if out.View != "login" {
		t.Fatalf("anonymous nav: %q", out.View)
	}

	learner := login(t, srv, "stu1", "pass1")
	resp = call(t, learner, http.MethodGet, srv.URL+"/nav/landing", nil)
	decode(t, resp, &out)
	if out.View != "learner" {
		t.Fatalf("learner nav: %q", out.View)
	}

	instructor := login(t, srv, "prof", "pass")
	resp = call(t, instructor, http.MethodGet, srv.URL+"/nav/login", nil)
	decode(t, resp, &out)
	if out.View != "instructor" {
		t.Fatalf("instructor nav: %q", out.View)
	}
}

func TestGenerateFromFileEndpoint(t *testing.T) {
	generator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-quiz" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, docJSON)
	}))
	defer generator.Close()

	srv := newTestServer(t, generator.URL)
	instructor := login(t, srv, "prof", "pass")

	resp := call(t, instructor, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"Bio"}`))
	var class quiz.Class
	decode(t, resp, &class)

	upload := func(filename string) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, _ := mw.CreateFormFile("file", filename)
		io.WriteString(part, "content")
		mw.Close()

		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/classes/"+class.ID+"/quizzes/generate", &buf)
		req.Header.Set("Authorization", "Bearer "+instructor)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	if resp := upload("lecture.pdf"); resp.StatusCode != http.StatusCreated {
		t.Fatalf("pdf upload: status %d", resp.StatusCode)
	}
	if resp := upload("notes.txt"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("txt upload: status %d", resp.StatusCode)
	}
}

func TestGenerateFromYouTubeEndpoint(t *testing.T) {
	generator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-quiz-from-youtube" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, docJSON)
	}))
	defer generator.Close()

	srv := newTestServer(t, generator.URL)
	instructor := login(t, srv, "prof", "pass")

	resp := call(t, instructor, http.MethodPost, srv.URL+"/classes", strings.NewReader(`{"name":"Bio"}`))
	var class quiz.Class
	decode(t, resp, &class)

	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes/"+class.ID+"/quizzes/generate-youtube",
		strings.NewReader(`{"url":"https://youtu.be/abc"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("youtube generate: status %d", resp.StatusCode)
	}

	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes/"+class.ID+"/quizzes/generate-youtube",
		strings.NewReader(`{"url":"https://vimeo.com/1"}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad url: status %d", resp.StatusCode)
	}

	resp = call(t, instructor, http.MethodPost, srv.URL+"/classes/c-missing/quizzes/generate-youtube",
		strings.NewReader(`{"url":"https://youtu.be/abc"}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing class: status %d", resp.StatusCode)
	}
}
