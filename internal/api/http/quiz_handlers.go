package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
	"github.com/quizforge/quizforge/internal/storage"
)

// POST /classes/{classID}/quizzes ingests a ready-made quiz document. The
// document is untrusted; the repository validates before anything persists.
func IngestQuizHandler(repo *quiz.ClassRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q, err := addQuiz(w, repo, chi.URLParam(r, "classID"), doc)
		if err != nil {
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// POST /classes/{classID}/quizzes/generate — multipart upload, field "file".
func GenerateFromFileHandler(repo *quiz.ClassRepo, gen *genai.Client, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := chi.URLParam(r, "classID")
		if _, ok := repo.GetClass(classID); !ok {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload", http.StatusBadRequest)
			return
		}

		doc, err := gen.FromFile(r.Context(), hdr.Filename, bytes.NewReader(data))
		if errors.Is(err, genai.ErrUnsupportedFile) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if blobs != nil {
			// retain the source document for audit; best-effort
			_, _ = blobs.Put(storage.UploadKey(classID, hdr.Filename), bytes.NewReader(data))
		}

		q, err := addQuiz(w, repo, classID, doc)
		if err != nil {
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// POST /classes/{classID}/quizzes/generate-youtube  { "url": "..." }
func GenerateFromYouTubeHandler(repo *quiz.ClassRepo, gen *genai.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := chi.URLParam(r, "classID")
		if _, ok := repo.GetClass(classID); !ok {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		doc, err := gen.FromYouTube(r.Context(), req.URL)
		if errors.Is(err, genai.ErrInvalidYouTubeURL) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		q, err := addQuiz(w, repo, classID, doc)
		if err != nil {
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// GET /classes/{classID}/quizzes/{quizKey} — learners get the redacted view.
func GetQuizHandler(repo *quiz.ClassRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := repo.GetQuiz(chi.URLParam(r, "classID"), chi.URLParam(r, "quizKey"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if rbac.RoleFromContext(r.Context()) != "instructor" {
			q = quiz.Redact(q)
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// addQuiz writes the HTTP error itself and returns a non-nil error to signal
// the caller to stop.
func addQuiz(w http.ResponseWriter, repo *quiz.ClassRepo, classID string, doc quiz.Quiz) (quiz.Quiz, error) {
	q, err := repo.AddQuiz(classID, doc)
	if errors.Is(err, quiz.ErrClassNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return quiz.Quiz{}, err
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return quiz.Quiz{}, err
	}
	return q, nil
}
