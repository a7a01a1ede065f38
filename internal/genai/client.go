package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

var (
	// ErrUnsupportedFile rejects uploads before any network traffic.
	ErrUnsupportedFile = errors.New("unsupported file type: expected pdf, ppt or pptx")
	// ErrInvalidYouTubeURL rejects references before any network traffic.
	ErrInvalidYouTubeURL = errors.New("invalid YouTube URL")
	// ErrEmptyDocument means the generator answered 2xx with no questions.
	ErrEmptyDocument = errors.New("generator returned no questions")
)

var youtubePattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)

var allowedExts = map[string]bool{".pdf": true, ".ppt": true, ".pptx": true}

// Client talks to the external quiz generation service. The service is an
// external collaborator: it either yields a quiz document or a failure
// reason, exactly once per request. Retries and cancellation are the
// caller's concern.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// FromFile submits an uploaded document for generation. The extension gate
// runs client-side so an unsupported file never reaches the wire.
func (c *Client) FromFile(ctx context.Context, filename string, r io.Reader) (quiz.Quiz, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return quiz.Quiz{}, ErrUnsupportedFile
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return quiz.Quiz{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return quiz.Quiz{}, err
	}
	if err := mw.Close(); err != nil {
		return quiz.Quiz{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/generate-quiz", &body)
	if err != nil {
		return quiz.Quiz{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// FromYouTube submits a video reference for generation after the client-side
// pattern gate.
func (c *Client) FromYouTube(ctx context.Context, url string) (quiz.Quiz, error) {
	if !youtubePattern.MatchString(url) {
		return quiz.Quiz{}, ErrInvalidYouTubeURL
	}

	payload, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return quiz.Quiz{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/generate-quiz-from-youtube", bytes.NewReader(payload))
	if err != nil {
		return quiz.Quiz{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (quiz.Quiz, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("quiz generator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the server's detail message is surfaced verbatim when present
		var failure struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Detail != "" {
			return quiz.Quiz{}, errors.New(failure.Detail)
		}
		return quiz.Quiz{}, fmt.Errorf("quiz generation failed: %s", resp.Status)
	}

	var doc quiz.Quiz
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode quiz document: %w", err)
	}
	if len(doc.Questions) == 0 {
		return quiz.Quiz{}, ErrEmptyDocument
	}
	return doc, nil
}
