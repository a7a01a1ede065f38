package quiz

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quizforge/quizforge/internal/storage"
)

const classesRecordKey = "classes"

// ClassRepo owns every Class and Quiz lifetime. The whole collection is one
// durable record, read once at construction and rewritten synchronously by
// each mutation before it returns.
type ClassRepo struct {
	store storage.RecordStore
	now   func() time.Time

	mu      sync.RWMutex
	classes []Class
}

func NewClassRepo(store storage.RecordStore) *ClassRepo {
	r := &ClassRepo{store: store, now: time.Now}
	r.classes = loadClasses(store)
	return r
}

// loadClasses treats a missing or unparsable record as an empty collection;
// startup never fails on corrupt state.
func loadClasses(store storage.RecordStore) []Class {
	data, err := store.Load(classesRecordKey)
	if err != nil {
		return nil
	}
	var classes []Class
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil
	}
	return classes
}

// CreateClass appends a new class with a fresh timestamp-derived id and an
// empty quiz sequence. Whitespace-only names are rejected before any state
// changes.
func (r *ClassRepo) CreateClass(name string) (Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Class{}, ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c := Class{
		ID:      "c-" + strconv.FormatInt(r.now().UnixMilli(), 10),
		Name:    name,
		Quizzes: []Quiz{},
	}
	r.classes = append(r.classes, c)
	if err := r.saveLocked(); err != nil {
		return Class{}, err
	}
	return c, nil
}

// DeleteClass removes the class and its quizzes. Irreversible, so it only
// acts when the caller confirmed; a stale id is a no-op. Attempts recorded
// against the class stay in the ledger as orphaned references.
func (r *ClassRepo) DeleteClass(id string, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.classes {
		if c.ID == id {
			r.classes = append(r.classes[:i], r.classes[i+1:]...)
			if err := r.saveLocked(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// AddQuiz validates an untrusted document, stamps it with class provenance,
// and appends it to the class's quiz sequence.
func (r *ClassRepo) AddQuiz(classID string, doc Quiz) (Quiz, error) {
	if err := ValidateDocument(doc); err != nil {
		return Quiz{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.classes {
		if r.classes[i].ID != classID {
			continue
		}
		doc.ClassID = classID
		doc.ClassName = r.classes[i].Name
		doc.CreatedAt = r.now().UTC()
		doc.NumQuestions = len(doc.Questions)
		r.classes[i].Quizzes = append(r.classes[i].Quizzes, doc)
		if err := r.saveLocked(); err != nil {
			return Quiz{}, err
		}
		return doc, nil
	}
	return Quiz{}, ErrClassNotFound
}

func (r *ClassRepo) ListClasses() []Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Class, len(r.classes))
	copy(out, r.classes)
	return out
}

func (r *ClassRepo) GetClass(id string) (Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

// GetQuiz resolves a quiz inside a class by its key: explicit id when the
// document carries one, position index otherwise.
func (r *ClassRepo) GetQuiz(classID, quizKey string) (Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.classes {
		if c.ID != classID {
			continue
		}
		for i, q := range c.Quizzes {
			if q.Key(i) == quizKey {
				return q, nil
			}
		}
		return Quiz{}, ErrQuizNotFound
	}
	return Quiz{}, ErrClassNotFound
}

// saveLocked serializes the full collection; mutation implies durability, so
// every mutating operation calls this before returning.
func (r *ClassRepo) saveLocked() error {
	data, err := json.Marshal(r.classes)
	if err != nil {
		return err
	}
	return r.store.Save(classesRecordKey, data)
}
