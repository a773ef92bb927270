package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/rental-portfolio/internal/analysis"
	"github.com/iwvelando/rental-portfolio/internal/config"
	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/internal/server"
	"github.com/iwvelando/rental-portfolio/pkg/output"
	"github.com/iwvelando/rental-portfolio/pkg/testutil"
	"go.uber.org/zap"
)

const testConfigPath = "../test_config.yaml"

// runTestConfig loads and runs the test configuration exactly as main() does.
func runTestConfig(t testing.TB) (*config.Configuration, *analysis.Report) {
	t.Helper()

	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Fatalf("unexpected configuration warnings: %v", warnings)
	}

	snapshot, err := conf.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}

	settings, err := analysis.SettingsFromConfiguration(conf)
	if err != nil {
		t.Fatalf("SettingsFromConfiguration() error = %v", err)
	}

	engine, err := analysis.NewEngine(zap.NewNop(), settings)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	report, err := engine.Run(snapshot, conf.Report, testutil.ReferenceNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return conf, report
}

// TestMainIntegrationBaseline checks the headline figures of the test portfolio.
func TestMainIntegrationBaseline(t *testing.T) {
	_, report := runTestConfig(t)

	s := report.Summary
	baselineChecks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"total value", s.TotalValue, 600000},
		{"total debt", s.TotalDebt, 300000},
		{"total equity", s.TotalEquity, 300000},
		{"income", s.Income, 4500},
		{"expenses", s.Expenses, 800},
		{"cash flow", s.CashFlow, 3700},
	}
	for _, check := range baselineChecks {
		if !testutil.ApproxEqual(check.got, check.expected, 0.01) {
			t.Errorf("%s = %.2f, expected %.2f", check.name, check.got, check.expected)
		}
	}

	if len(report.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(report.Properties))
	}
	for _, m := range report.Properties {
		if !m.IRRDeterminable {
			t.Errorf("IRR for %s should be determinable", m.Name)
		}
	}

	if len(report.Refinance) != 2 {
		t.Fatalf("expected 2 refinanced mortgages, got %d", len(report.Refinance))
	}
	for _, r := range report.Refinance {
		if len(r.Comparisons) != 2 {
			t.Errorf("%s: expected the 2 configured scenarios, got %d", r.Label, len(r.Comparisons))
		}
		if r.Best == nil || r.Best.Scenario.Name != "30 year fixed" {
			t.Errorf("%s: best = %+v", r.Label, r.Best)
		}
	}

	if report.Paydown == nil {
		t.Fatal("expected a paydown comparison")
	}
	if report.Paydown.Avalanche.Model != paydown.ModelRolling || report.Paydown.Avalanche.ExtraPayment != 500 {
		t.Errorf("avalanche plan = %+v", report.Paydown.Avalanche)
	}
	if !report.Paydown.Snowball.Payable() || !report.Paydown.Avalanche.Payable() {
		t.Error("both plans should pay off the test mortgages")
	}

	if report.PayoffTarget == nil || !report.PayoffTarget.Converged || report.PayoffTarget.Achieved > 180 {
		t.Errorf("payoff target = %+v", report.PayoffTarget)
	}

	if len(report.LeaseExpirations) == 0 {
		t.Error("expected an upcoming lease expiration")
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}
}

func TestJSONOutputFormat(t *testing.T) {
	conf, report := runTestConfig(t)

	var buf bytes.Buffer
	if err := output.Write(&buf, conf.Output.Format, report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc struct {
		Range struct {
			Start string `json:"start"`
		} `json:"range"`
		Refinance []struct {
			Comparisons []struct {
				BreakEvenMonths *float64 `json:"break_even_months"`
			} `json:"comparisons"`
		} `json:"refinance"`
		PayoffTarget map[string]interface{} `json:"payoff_target"`
		Warnings     []string               `json:"warnings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if !strings.HasPrefix(doc.Range.Start, "2024-08-01") {
		t.Errorf("range start = %s", doc.Range.Start)
	}
	if doc.PayoffTarget == nil {
		t.Error("expected payoff_target in output")
	}

	// The 15 year scenario raises both payments.
	nulls := 0
	for _, r := range doc.Refinance {
		for _, c := range r.Comparisons {
			if c.BreakEvenMonths == nil {
				nulls++
			}
		}
	}
	if nulls != 2 {
		t.Errorf("expected 2 null break-evens, got %d", nulls)
	}
	if len(doc.Warnings) != 2 {
		t.Errorf("expected a warning per null break-even, got %v", doc.Warnings)
	}
}

func TestPrettyOutputFormat(t *testing.T) {
	_, report := runTestConfig(t)

	var buf bytes.Buffer
	if err := output.WritePretty(&buf, report); err != nil {
		t.Fatalf("WritePretty() error = %v", err)
	}
	text := buf.String()

	for _, fragment := range []string{
		"=== Portfolio report 2024-08-01..2024-08-31 ===",
		"--- Refinance: First Federal ---",
		"--- Refinance: Credit Union ---",
		"30 year fixed",
		"avalanche (rolling, $500.00 extra)",
		"--- Payoff target (15y) ---",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("pretty output missing %q", fragment)
		}
	}
}

// TestServerMatchesCLI uploads the test snapshot and expects the same summary
// the command line path produces.
func TestServerMatchesCLI(t *testing.T) {
	conf, report := runTestConfig(t)

	settings, err := analysis.SettingsFromConfiguration(conf)
	if err != nil {
		t.Fatalf("SettingsFromConfiguration() error = %v", err)
	}
	engine, err := analysis.NewEngine(zap.NewNop(), settings)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	handler := server.NewHandler(zap.NewNop(), engine, server.Options{})

	data, err := os.ReadFile(conf.ResolvePath(conf.Portfolio.File))
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "test_portfolio.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	fields := map[string]string{
		"period": conf.Report.Period,
		"start":  conf.Report.CustomStart,
		"end":    conf.Report.CustomEnd,
		"now":    testutil.ReferenceNow.Format("2006-01-02T15:04:05Z07:00"),
	}
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatalf("failed to write field %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Summary struct {
			TotalValue float64 `json:"total_value"`
			CashFlow   float64 `json:"cash_flow"`
			ROI        float64 `json:"roi"`
		} `json:"summary"`
		PayoffTarget struct {
			Value float64 `json:"value"`
		} `json:"payoff_target"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Summary.TotalValue != report.Summary.TotalValue || resp.Summary.CashFlow != report.Summary.CashFlow {
		t.Errorf("server summary %+v differs from CLI summary %+v", resp.Summary, report.Summary)
	}
	if !testutil.ApproxEqual(resp.Summary.ROI, report.Summary.ROI, 1e-9) {
		t.Errorf("server ROI %v differs from CLI ROI %v", resp.Summary.ROI, report.Summary.ROI)
	}
	if resp.PayoffTarget.Value != report.PayoffTarget.Value {
		t.Errorf("server payoff target %v differs from CLI %v", resp.PayoffTarget.Value, report.PayoffTarget.Value)
	}
}
