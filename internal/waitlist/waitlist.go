// Package waitlist accepts waitlist sign-ups. Submissions are validated and
// logged; nothing is persisted.
package waitlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// Submission is the JSON body of a waitlist request.
type Submission struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Role    string `json:"role" validate:"required,max=100"`
	Company string `json:"company" validate:"required,max=200"`
}

func (s *Submission) trim() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Role = strings.TrimSpace(s.Role)
	s.Company = strings.TrimSpace(s.Company)
}

// Recorder receives accepted submissions.
type Recorder interface {
	Record(ctx context.Context, s Submission) error
}

// LogRecorder writes accepted submissions to a logger.
type LogRecorder struct {
	Logger *zap.Logger
}

func (r LogRecorder) Record(_ context.Context, s Submission) error {
	r.Logger.Info("waitlist submission",
		zap.String("name", s.Name),
		zap.String("email", s.Email),
		zap.String("role", s.Role),
		zap.String("company", s.Company),
	)
	return nil
}

type response struct {
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Handler serves POST submissions; every other method gets 405.
type Handler struct {
	recorder Recorder
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler returns a Handler passing accepted submissions to recorder.
func NewHandler(recorder Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		recorder: recorder,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, response{Error: "method not allowed"})
		return
	}

	var s Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid JSON body"})
		return
	}
	s.trim()

	if err := h.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, response{Error: "missing or invalid fields", Fields: fieldMessages(verrs)})
			return
		}
		h.logger.Error("validate waitlist submission", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, response{Error: "something went wrong, please try again"})
		return
	}

	if err := h.recorder.Record(r.Context(), s); err != nil {
		h.logger.Error("record waitlist submission", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, response{Error: "something went wrong, please try again"})
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "Thanks! You're on the waitlist."})
}

var fieldNames = map[string]string{
	"Name":    "name",
	"Email":   "email",
	"Role":    "role",
	"Company": "company",
}

func fieldMessages(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fieldNames[fe.Field()]
		switch fe.Tag() {
		case "required":
			out[field] = "is required"
		case "email":
			out[field] = "must be a valid email address"
		case "max":
			out[field] = "is too long"
		default:
			out[field] = "is invalid"
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
