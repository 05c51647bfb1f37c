package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/quoteform"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuoteText(t *testing.T) {
	out, err := run(t, "quote",
		"--plan", "plus",
		"--cycle", "monthly",
		"--duration", "1",
		"--labor-first-hours", "2",
	)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	for _, expected := range []string{"44.90%", "$275.50", "PASS: Margin meets or exceeds 40%."} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, out)
		}
	}
}

func TestQuoteJSON(t *testing.T) {
	out, err := run(t, "quote",
		"--plan", "premium",
		"--cycle", "yearly",
		"--discount", "10",
		"--accounts", "3",
		"--new-accounts", "3",
		"--format", "json",
	)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	var got struct {
		NetPricePerCycle decimal.Decimal `json:"net_price_per_cycle"`
		LaborCost        decimal.Decimal `json:"labor_cost"`
		ContractorCost   decimal.Decimal `json:"contractor_cost"`
		TotalCost        decimal.Decimal `json:"total_cost"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !got.NetPricePerCycle.Equal(decimal.NewFromInt(15300)) {
		t.Fatalf("net = %s, want 15300", got.NetPricePerCycle)
	}
	if !got.LaborCost.Equal(decimal.NewFromInt(4959)) {
		t.Fatalf("labor = %s, want 4959", got.LaborCost)
	}
	if !got.ContractorCost.Equal(decimal.NewFromInt(900)) || !got.TotalCost.Equal(decimal.NewFromInt(5859)) {
		t.Fatalf("unexpected cost: contractor %s total %s", got.ContractorCost, got.TotalCost)
	}
}

func TestQuoteRejectsInvalidInput(t *testing.T) {
	_, err := run(t, "quote", "--accounts", "0")
	if !errors.Is(err, quoteform.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := run(t, "quote", "--format", "yaml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestSeedThenCatalogFromDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "margin.db")

	out, err := run(t, "migrate", "--db", dbPath)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "database at version 1") {
		t.Fatalf("unexpected migrate output: %s", out)
	}

	out, err = run(t, "seed", "--db", dbPath)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "inserted 7 row(s)") {
		t.Fatalf("unexpected seed output: %s", out)
	}

	out, err = run(t, "seed", "--db", dbPath)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if !strings.Contains(out, "inserted 0 row(s)") {
		t.Fatalf("reseed should insert nothing: %s", out)
	}

	out, err = run(t, "catalog", "--db", dbPath)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, expected := range []string{"$17,000.00", "$8,071.20", "$137.75/h", "40.00%"} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected catalog to contain %q, got:\n%s", expected, out)
		}
	}
}

func TestProfilesAndVersion(t *testing.T) {
	out, err := run(t, "profiles")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	for _, name := range []string{"full", "plus-support", "premium-onboarding", "sales"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected profile %q in output:\n%s", name, out)
		}
	}

	out, err = run(t, "version")
	if err != nil || !strings.HasPrefix(out, "margin version ") {
		t.Fatalf("unexpected version output %q (%v)", out, err)
	}
}
