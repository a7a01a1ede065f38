package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
	syncx "github.com/quizforge/quizforge/internal/sync"
)

// POST /attempts  { "classId": "...", "quizId": "...", "selections": {"0": "A"} }
// Scoring happens server-side against the full (unredacted) quiz document;
// partial submissions are rejected before anything is recorded.
func SubmitAttemptHandler(repo *quiz.ClassRepo, ledger *quiz.AttemptLedger, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClassID    string            `json:"classId"`
			QuizID     string            `json:"quizId"`
			Selections map[string]string `json:"selections"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ClassID == "" || req.QuizID == "" {
			http.Error(w, "classId and quizId required", http.StatusBadRequest)
			return
		}

		q, err := repo.GetQuiz(req.ClassID, req.QuizID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		sel := quiz.Selections{}
		for k, v := range req.Selections {
			idx, err := strconv.Atoi(k)
			if err != nil {
				http.Error(w, "bad selection index: "+k, http.StatusBadRequest)
				return
			}
			sel[idx] = v
		}
		if !quiz.CanSubmit(q, sel) {
			http.Error(w, "all questions must be answered", http.StatusBadRequest)
			return
		}

		res := quiz.Score(q, sel)
		sub := rbac.SubjectFromContext(r.Context())
		a, ok := ledger.WithIdentity(quiz.Identity(sub)).Record(req.ClassID, req.QuizID, res.CorrectCount, res.Total)
		if !ok {
			http.Error(w, "record attempt", http.StatusInternalServerError)
			return
		}
		appendEvent(r, events, syncx.TypeAttemptRecorded, a.ID, a)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"attempt":    a,
			"review":     quiz.Review(q, sel),
			"percentage": quiz.Percentage(res.CorrectCount, res.Total),
		})
	}
}

// GET /attempts?class_id=...&user_id=...
// Callers without attempt:view-all only ever see their own ledger.
func ListAttemptsHandler(ledger *quiz.AttemptLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := scopedLedger(ledger, r)
		var list []quiz.Attempt
		if classID := strings.TrimSpace(r.URL.Query().Get("class_id")); classID != "" {
			list = view.ForClass(classID)
		} else {
			list = view.List()
		}
		if list == nil {
			list = []quiz.Attempt{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /attempts/summary?class_id=...
func AttemptSummaryHandler(ledger *quiz.AttemptLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := scopedLedger(ledger, r)
		if classID := strings.TrimSpace(r.URL.Query().Get("class_id")); classID != "" {
			writeJSON(w, http.StatusOK, quiz.Summarize(view.ForClass(classID)))
			return
		}
		writeJSON(w, http.StatusOK, view.Summary())
	}
}

func scopedLedger(ledger *quiz.AttemptLedger, r *http.Request) *quiz.AttemptLedger {
	sub := rbac.SubjectFromContext(r.Context())
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if rbac.RoleFromContext(r.Context()) != "instructor" || userID == "" {
		userID = sub
	}
	return ledger.WithIdentity(quiz.Identity(userID))
}
