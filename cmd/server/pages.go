package main

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/trustedapp/site/internal/estimates"
	"github.com/trustedapp/site/internal/pricing"
	"github.com/trustedapp/site/internal/store"
)

const (
	sharingCookieName = "ta_sharing_panel"
	sharingCookieAge  = 365 * 24 * 60 * 60
	estimatesPageSize = 50
)

type formOptions struct {
	ContentTypes   []pricing.ContentType
	Roles          []pricing.Role
	Rarities       []pricing.Rarity
	SessionLengths []pricing.SessionLength
	AddOns         []pricing.AddOn
	Stages         []pricing.Stage
}

var options = formOptions{
	ContentTypes:   pricing.ContentTypes,
	Roles:          pricing.Roles,
	Rarities:       pricing.Rarities,
	SessionLengths: pricing.SessionLengths,
	AddOns:         pricing.AddOns,
	Stages:         pricing.Stages,
}

type homeViewData struct {
	baseViewData
	Options        formOptions
	Quick          pricing.QuickInput
	QuickResult    pricing.Result
	MaxRarityLevel int
}

type sampleLink struct {
	Title     string
	Query     template.URL
	AnnualNet float64
}

type calculatorViewData struct {
	baseViewData
	Options     formOptions
	Input       pricing.Input
	Result      pricing.Result
	Waterfall   []pricing.WaterfallStep
	Query       template.URL
	ShowSharing bool
	Samples     []sampleLink
}

type estimateViewData struct {
	baseViewData
	Title     string
	CreatedAt time.Time
	Input     pricing.Input
	Result    pricing.Result
	Waterfall []pricing.WaterfallStep
	Query     template.URL
}

type estimateListItem struct {
	ID             string
	Title          string
	CreatedAt      time.Time
	TotalAnnualNet float64
}

type estimatesViewData struct {
	baseViewData
	Query     string
	Estimates []estimateListItem
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	seniority := s.tables.Seniority()
	quick, err := store.NewQuick(seniority)
	if err != nil {
		s.logger.Error("create quick estimator", zap.Error(err))
		http.Error(w, "failed to create estimator", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	view := homeViewData{Options: options, MaxRarityLevel: seniority.MaxRarityLevel}

	patch, err := parseQuickForm(r.URL.Query())
	if err == nil {
		err = quick.Apply(patch)
	}
	if err != nil {
		status = http.StatusBadRequest
		view.ErrorMessage = userMessage(err)
	}

	view.Quick = quick.Input()
	view.QuickResult = quick.Result()
	s.renderTemplate(w, status, "home.html", view)
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	calc := store.NewAdvanced(s.tables.Matrix())

	status := http.StatusOK
	view := calculatorViewData{Options: options, ShowSharing: sharingPreference(r)}

	patch, err := parseCalculatorForm(r.URL.Query())
	if err == nil {
		err = calc.Apply(patch)
	}
	if err != nil {
		status = http.StatusBadRequest
		view.ErrorMessage = userMessage(err)
	}

	result, err := calc.Results()
	if err != nil {
		s.logger.Error("derive calculator results", zap.Error(err))
		http.Error(w, "failed to calculate estimate", http.StatusInternalServerError)
		return
	}

	view.Input = calc.Input()
	view.Result = result
	view.Waterfall = pricing.Waterfall(result.Breakdown)
	view.Query = template.URL(calculatorQuery(view.Input).Encode())
	view.ShowSharing = view.ShowSharing || view.Input.AllowShare
	view.Samples = s.sampleLinks(r)

	s.renderTemplate(w, status, "calculator.html", view)
}

func (s *server) sampleLinks(r *http.Request) []sampleLink {
	samples, err := s.estimates.Samples(r.Context())
	if err != nil {
		s.logger.Warn("load sample estimates", zap.Error(err))
		return nil
	}

	links := make([]sampleLink, 0, len(samples))
	for _, e := range samples {
		in, result, err := s.derive(e)
		if err != nil {
			s.logger.Warn("derive sample estimate", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		links = append(links, sampleLink{
			Title:     e.Title,
			Query:     template.URL(calculatorQuery(in).Encode()),
			AnnualNet: result.Totals.TotalAnnualNet,
		})
	}
	return links
}

func (s *server) handleSharingPreference(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	value := "0"
	if r.FormValue("show") == "1" {
		value = "1"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sharingCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   sharingCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	target := "/calculator"
	if back, err := url.ParseQuery(r.FormValue("return")); err == nil && len(back) > 0 {
		target += "?" + back.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func sharingPreference(r *http.Request) bool {
	cookie, err := r.Cookie(sharingCookieName)
	if err != nil {
		return false
	}
	return cookie.Value == "1"
}

func (s *server) handleEstimateSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values, err := url.ParseQuery(r.FormValue("query"))
	if err != nil {
		http.Error(w, "invalid estimate", http.StatusBadRequest)
		return
	}

	calc := store.NewAdvanced(s.tables.Matrix())
	patch, err := parseCalculatorForm(values)
	if err == nil {
		err = calc.Apply(patch)
	}
	if err != nil {
		http.Error(w, userMessage(err), http.StatusBadRequest)
		return
	}

	saved, err := s.estimates.Save(r.Context(), r.FormValue("title"), calc.Input())
	if err != nil {
		s.logger.Error("save estimate", zap.Error(err))
		http.Error(w, "failed to save estimate", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/estimates/"+saved.ID, http.StatusSeeOther)
}

func (s *server) handleEstimateDetail(w http.ResponseWriter, r *http.Request) {
	e, err := s.estimates.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, estimates.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("load estimate", zap.Error(err))
		http.Error(w, "failed to load estimate", http.StatusInternalServerError)
		return
	}

	in, result, err := s.derive(e)
	if err != nil {
		s.logger.Error("derive saved estimate", zap.String("id", e.ID), zap.Error(err))
		http.Error(w, "failed to calculate estimate", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "estimate.html", estimateViewData{
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		Input:     in,
		Result:    result,
		Waterfall: pricing.Waterfall(result.Breakdown),
		Query:     template.URL(calculatorQuery(in).Encode()),
	})
}

func (s *server) handleEstimatesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	saved, err := s.estimates.List(r.Context(), query, estimatesPageSize)
	if err != nil {
		s.logger.Error("list estimates", zap.Error(err))
		http.Error(w, "failed to load estimates", http.StatusInternalServerError)
		return
	}

	items := make([]estimateListItem, 0, len(saved))
	for _, e := range saved {
		_, result, err := s.derive(e)
		if err != nil {
			s.logger.Warn("derive saved estimate", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		items = append(items, estimateListItem{
			ID:             e.ID,
			Title:          e.Title,
			CreatedAt:      e.CreatedAt,
			TotalAnnualNet: result.Totals.TotalAnnualNet,
		})
	}

	s.renderTemplate(w, http.StatusOK, "estimates.html", estimatesViewData{
		Query:     query,
		Estimates: items,
	})
}

// derive recomputes a saved estimate against the current rate matrix.
func (s *server) derive(e estimates.Estimate) (pricing.Input, pricing.Result, error) {
	in, err := e.Input()
	if err != nil {
		return pricing.Input{}, pricing.Result{}, err
	}
	result, err := pricing.Derive(in, s.tables.Matrix())
	if err != nil {
		return pricing.Input{}, pricing.Result{}, err
	}
	return in, result, nil
}
