package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Simplici0/margin/internal/logging"
	"github.com/Simplici0/margin/internal/pricing"
	"github.com/Simplici0/margin/internal/profile"
	"github.com/Simplici0/margin/internal/quoteform"
	"github.com/Simplici0/margin/internal/report"
)

type option struct {
	Value string
	Label string
}

type calculatorViewData struct {
	baseViewData
	Profile   profile.Profile
	Profiles  []string
	Plans     []option
	Cycles    []option
	Durations []int
	Values    url.Values
	Premium   bool
	Report    *report.Report
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	s.calculate(w, r, r.URL.Query())
}

func (s *server) handleCalculatorSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.calculate(w, r, r.PostForm)
}

func (s *server) calculate(w http.ResponseWriter, r *http.Request, form url.Values) {
	defaults, err := s.catalog.Load(r.Context())
	if err != nil {
		logging.Error("load catalog", zap.Error(err))
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	prof := s.profiles.Get(form.Get(quoteform.KeyProfile))
	data := calculatorViewData{
		Profile:   prof,
		Profiles:  s.profiles.Names(),
		Plans:     planOptions(prof),
		Cycles:    cycleOptions(),
		Durations: pricing.Durations,
	}

	in, err := quoteform.Parse(form, defaults, prof)
	if err != nil {
		var verr *quoteform.ValidationError
		if !errors.As(err, &verr) {
			logging.Error("parse quote form", zap.Error(err))
			http.Error(w, "failed to parse form", http.StatusInternalServerError)
			return
		}
		data.ErrorMessage = verr.Error()
		data.Values = mergeValues(quoteform.Encode(quoteform.DefaultInput(defaults, prof)), form)
		data.Premium = data.Values.Get(quoteform.KeyPlan) == string(pricing.PlanPremium)
		s.renderTemplate(w, http.StatusBadRequest, "calculator.html", data)
		return
	}

	rep := report.Build(in, pricing.Compute(in))
	data.Values = quoteform.Encode(in)
	data.Values.Set(quoteform.KeyProfile, prof.Name)
	data.Premium = in.Plan == pricing.PlanPremium
	data.Report = &rep

	s.renderTemplate(w, http.StatusOK, "calculator.html", data)
}

// mergeValues overlays the submitted form on base so a rejected form keeps what the user typed.
func mergeValues(base, submitted url.Values) url.Values {
	for key := range submitted {
		base.Set(key, submitted.Get(key))
	}
	return base
}

func planOptions(p profile.Profile) []option {
	plans := p.AllowedPlans()
	options := make([]option, 0, len(plans))
	for _, plan := range plans {
		options = append(options, option{Value: string(plan), Label: plan.Label()})
	}
	return options
}

func cycleOptions() []option {
	options := make([]option, 0, len(pricing.BillingCycles))
	for _, c := range pricing.BillingCycles {
		options = append(options, option{Value: string(c), Label: c.Label()})
	}
	return options
}

func (s *server) handleAPIQuote(w http.ResponseWriter, r *http.Request) {
	form, err := decodeJSONForm(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	defaults, err := s.catalog.Load(r.Context())
	if err != nil {
		logging.Error("load catalog", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load catalog"})
		return
	}

	prof := s.profiles.Get(form.Get(quoteform.KeyProfile))
	in, err := quoteform.Parse(form, defaults, prof)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, report.NewResult(prof.Name, in, pricing.Compute(in)))
}

// decodeJSONForm reads a flat JSON object into form values so the API and
// the HTML form share one parser.
func decodeJSONForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	form := url.Values{}
	for key, value := range body {
		switch v := value.(type) {
		case nil:
		case string:
			form.Set(key, v)
		case json.Number:
			form.Set(key, v.String())
		default:
			return nil, fmt.Errorf("field %s must be a string or number", key)
		}
	}
	return form, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("encode json response", zap.Error(err))
	}
}
