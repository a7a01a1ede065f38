package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
	syncx "github.com/quizforge/quizforge/internal/sync"
)

func CreateClassHandler(repo *quiz.ClassRepo, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		c, err := repo.CreateClass(req.Name)
		if errors.Is(err, quiz.ErrNameRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		appendEvent(r, events, syncx.TypeClassCreated, c.ID, c)
		writeJSON(w, http.StatusCreated, c)
	}
}

func ListClassesHandler(repo *quiz.ClassRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classes := repo.ListClasses()
		if rbac.RoleFromContext(r.Context()) != "instructor" {
			for i, c := range classes {
				classes[i] = quiz.RedactClass(c)
			}
		}
		writeJSON(w, http.StatusOK, classes)
	}
}

func GetClassHandler(repo *quiz.ClassRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := repo.GetClass(chi.URLParam(r, "classID"))
		if !ok {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}
		if rbac.RoleFromContext(r.Context()) != "instructor" {
			c = quiz.RedactClass(c)
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /classes/{classID}?confirm=true — deletion is irreversible, so the
// confirmation decision travels with the request.
func DeleteClassHandler(repo *quiz.ClassRepo, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirm := r.URL.Query().Get("confirm")
		if confirm != "true" && confirm != "1" {
			http.Error(w, "confirmation required", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "classID")
		deleted, err := repo.DeleteClass(id, true)
		if err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		if deleted {
			appendEvent(r, events, syncx.TypeClassDeleted, id, nil)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// appendEvent is best-effort; losing an event never fails the request.
func appendEvent(r *http.Request, events *syncx.EventRepo, typ, key string, payload interface{}) {
	if events == nil {
		return
	}
	data := "{}"
	if payload != nil {
		if buf, err := json.Marshal(payload); err == nil {
			data = string(buf)
		}
	}
	_ = events.Append(r.Context(), syncx.Event{Type: typ, Key: key, DataJSON: data})
}
