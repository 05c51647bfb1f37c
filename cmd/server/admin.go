package main

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/logging"
	"github.com/Simplici0/margin/internal/quoteform"
	"github.com/Simplici0/margin/internal/report"
)

type priceRow struct {
	Field string
	Plan  string
	Cycle string
	Price string
	Shown string
}

type catalogViewData struct {
	baseViewData
	Prices []priceRow
	Rates  url.Values
}

func (s *server) handleAdminCatalog(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.catalog.Load(r.Context())
	if err != nil {
		logging.Error("load catalog", zap.Error(err))
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_catalog.html", catalogViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Prices: priceRows(defaults),
		Rates:  quoteform.EncodeRates(defaults.Rates),
	})
}

func priceRows(d catalog.Defaults) []priceRow {
	rows := make([]priceRow, 0, len(d.Prices))
	for _, key := range catalog.Keys() {
		price := d.ListPrice(key.Plan, key.Cycle)
		rows = append(rows, priceRow{
			Field: quoteform.PriceField(key),
			Plan:  key.Plan.Label(),
			Cycle: key.Cycle.Label(),
			Price: price.String(),
			Shown: report.Currency(price),
		})
	}
	return rows
}

func (s *server) handleAdminPricesSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	prices, err := quoteform.ParsePrices(r.PostForm)
	if err != nil {
		redirectAdmin(w, r, "error", err.Error())
		return
	}

	for _, key := range catalog.Keys() {
		price, ok := prices[key]
		if !ok {
			continue
		}
		if err := s.catalog.SetPrice(r.Context(), key, price); err != nil {
			logging.Error("save list price", zap.Error(err))
			http.Error(w, "failed to save list price", http.StatusInternalServerError)
			return
		}
	}

	redirectAdmin(w, r, "success", "List prices saved.")
}

func (s *server) handleAdminRatesSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	rates, err := quoteform.ParseRates(r.PostForm)
	if err != nil {
		var verr *quoteform.ValidationError
		if errors.As(err, &verr) {
			redirectAdmin(w, r, "error", verr.Error())
			return
		}
		http.Error(w, "invalid rates", http.StatusBadRequest)
		return
	}

	if err := s.catalog.SetRates(r.Context(), rates); err != nil {
		logging.Error("save rates", zap.Error(err))
		http.Error(w, "failed to save rates", http.StatusInternalServerError)
		return
	}

	redirectAdmin(w, r, "success", "Rates saved.")
}

func redirectAdmin(w http.ResponseWriter, r *http.Request, kind, message string) {
	http.Redirect(w, r, "/admin/catalog?"+kind+"="+url.QueryEscape(message), http.StatusSeeOther)
}
