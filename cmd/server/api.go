package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/trustedapp/site/internal/pricing"
	"github.com/trustedapp/site/internal/store"
)

const maxAPIBodyBytes = 64 << 10

type estimateResponse struct {
	Input     any                     `json:"input"`
	Result    pricing.Result          `json:"result"`
	Waterfall []pricing.WaterfallStep `json:"waterfall"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *server) handleAPIEstimate(w http.ResponseWriter, r *http.Request) {
	var patch store.Patch
	if err := decodeJSONBody(w, r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}

	calc := store.NewAdvanced(s.tables.Matrix())
	if err := calc.Apply(patch); err != nil {
		s.writeEstimateError(w, err)
		return
	}

	result, err := calc.Results()
	if err != nil {
		s.writeEstimateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, estimateResponse{
		Input:     calc.Input(),
		Result:    result,
		Waterfall: pricing.Waterfall(result.Breakdown),
	})
}

func (s *server) handleAPIQuickEstimate(w http.ResponseWriter, r *http.Request) {
	var patch store.QuickPatch
	if err := decodeJSONBody(w, r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}

	quick, err := store.NewQuick(s.tables.Seniority())
	if err != nil {
		s.writeEstimateError(w, err)
		return
	}
	if err := quick.Apply(patch); err != nil {
		s.writeEstimateError(w, err)
		return
	}

	result := quick.Result()
	writeJSON(w, http.StatusOK, estimateResponse{
		Input:     quick.Input(),
		Result:    result,
		Waterfall: pricing.Waterfall(result.Breakdown),
	})
}

func (s *server) writeEstimateError(w http.ResponseWriter, err error) {
	var de *pricing.DomainError
	if errors.As(err, &de) {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: de.Error(), Field: de.Field})
		return
	}
	s.logger.Error("derive estimate", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to calculate estimate"})
}

// decodeJSONBody decodes a single JSON object into dst. An empty body leaves
// dst untouched.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
