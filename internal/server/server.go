package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/iwvelando/rental-portfolio/internal/analysis"
	"github.com/iwvelando/rental-portfolio/internal/optimizer"
	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/internal/refinance"
	"github.com/iwvelando/rental-portfolio/internal/reports"
	"github.com/iwvelando/rental-portfolio/internal/telemetry"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/datetime"
	"github.com/iwvelando/rental-portfolio/pkg/loans"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"github.com/iwvelando/rental-portfolio/pkg/optimization"
	"github.com/iwvelando/rental-portfolio/pkg/output"
	"github.com/iwvelando/rental-portfolio/pkg/records"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type handler struct {
	logger        *zap.Logger
	engine        *analysis.Engine
	maxUploadSize int64
	version       string
	tracer        trace.Tracer
	now           func() time.Time
}

// Options tune the handler. Zero values select defaults.
type Options struct {
	MaxUploadSize int64
	Version       string
	// Now is the clock used for reporting windows and alerts.
	Now func() time.Time
}

// NewHandler constructs the HTTP handler that serves the analysis API. A nil
// engine runs every request with default settings.
func NewHandler(logger *zap.Logger, engine *analysis.Engine, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if engine == nil {
		var err error
		engine, err = analysis.NewEngine(logger, analysis.Settings{})
		if err != nil {
			panic(fmt.Sprintf("failed to prepare default analysis engine: %v", err))
		}
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &handler{
		logger:        logger,
		engine:        engine,
		maxUploadSize: opts.MaxUploadSize,
		version:       trimmedVersion,
		tracer:        telemetry.Tracer("github.com/iwvelando/rental-portfolio/internal/server"),
		now:           opts.Now,
	}

	router := mux.NewRouter()
	router.Use(h.assignRequestID, h.instrument)

	api := router.PathPrefix("/api").Subrouter()

	// Full portfolio report (JSON, YAML or multipart snapshot upload)
	api.HandleFunc("/report", h.handleReport).Methods(http.MethodPost)

	// Single-loan calculators
	api.HandleFunc("/amortization", h.handleAmortization).Methods(http.MethodPost)
	api.HandleFunc("/refinance", h.handleRefinance).Methods(http.MethodPost)

	// Multi-loan payoff comparison
	api.HandleFunc("/paydown", h.handlePaydown).Methods(http.MethodPost)

	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	router.Handle("/metrics", telemetry.Handler()).Methods(http.MethodGet)

	return router
}

func (h *handler) assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeName(r)
		start := time.Now()

		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRoute(route),
				attribute.String("request.id", RequestID(r.Context())),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(semconv.HTTPResponseStatusCode(rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		telemetry.Requests.WithLabelValues(route, telemetry.StatusClass(rec.status)).Inc()
		telemetry.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type reportPayload struct {
	Snapshot records.Snapshot      `json:"snapshot" yaml:"snapshot"`
	Request  reports.ReportRequest `json:"request" yaml:"request"`
	// Now overrides the server clock, e.g. to reproduce an earlier report.
	Now string `json:"now,omitempty" yaml:"now,omitempty"`
}

type reportResponse struct {
	output.Document
	RequestID string `json:"request_id"`
	Duration  string `json:"duration"`
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	start := time.Now()

	var payload reportPayload
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		status, err := h.decodeUpload(w, r, &payload)
		if err != nil {
			h.respondErrorWithOp(w, r, status, err.Error(), op)
			return
		}
	} else if status, err := h.decodeBody(w, r, &payload, true); err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}

	now := h.now()
	if payload.Now != "" {
		parsed, ok := datetime.ParseDate(payload.Now)
		if !ok {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("invalid now %q", payload.Now), op)
			return
		}
		now = parsed
	}

	_, span := h.tracer.Start(r.Context(), "analysis.Run")
	report, err := h.engine.Run(payload.Snapshot, payload.Request, now)
	span.End()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, reports.ErrInvalidPeriod) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}

	doc := output.NewDocument(report)
	h.countWarnings(r, doc.Warnings)

	elapsed := time.Since(start)
	h.logger.Info("report computed",
		zap.String("op", op),
		zap.String("request_id", RequestID(r.Context())),
		zap.String("range", report.Range.String()),
		zap.Int("properties", len(report.Properties)),
		zap.Int("warnings", len(doc.Warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, reportResponse{
		Document:  doc,
		RequestID: RequestID(r.Context()),
		Duration:  elapsed.String(),
	})
}

// decodeUpload reads a snapshot file from a multipart form. The reporting
// window comes from the period, start and end form values.
func (h *handler) decodeUpload(w http.ResponseWriter, r *http.Request, payload *reportPayload) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds limit of %d bytes", h.maxUploadSize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to parse upload: %v", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return http.StatusBadRequest, errors.New("missing snapshot file")
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.decodeUpload"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to read snapshot: %v", err)
	}

	snapshot, err := records.DecodeYAML(buf.Bytes())
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("error reading snapshot data, %v", err)
	}

	payload.Snapshot = snapshot
	payload.Request = reports.ReportRequest{
		Period:      r.FormValue("period"),
		CustomStart: r.FormValue("start"),
		CustomEnd:   r.FormValue("end"),
	}
	payload.Now = r.FormValue("now")
	return http.StatusOK, nil
}

type amortizationPayload struct {
	Balance        float64 `json:"balance"`
	Rate           float64 `json:"rate"`
	TermMonths     int     `json:"term_months"`
	ExtraPrincipal float64 `json:"extra_principal,omitempty"`
}

type amortizationResponse struct {
	MonthlyPayment float64             `json:"monthly_payment"`
	Months         int                 `json:"months"`
	TotalInterest  float64             `json:"total_interest"`
	TotalPrincipal float64             `json:"total_principal"`
	FirstMonth     loans.MonthSplit    `json:"first_month"`
	Schedule       []loans.ScheduleRow `json:"schedule"`
}

func (h *handler) handleAmortization(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAmortization"

	var payload amortizationPayload
	if status, err := h.decodeBody(w, r, &payload, false); err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}
	switch {
	case payload.Balance <= 0:
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "balance must be positive", op)
		return
	case payload.TermMonths <= 0:
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "term_months must be positive", op)
		return
	case payload.TermMonths > constants.MaxAmortizationMonths:
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("term_months cannot exceed %d", constants.MaxAmortizationMonths), op)
		return
	case payload.Rate < 0:
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "rate cannot be negative", op)
		return
	}

	generator := loans.NewAmortizationScheduleGenerator(h.logger)
	schedule, err := generator.GenerateWithExtraPrincipal(payload.Balance, payload.Rate, payload.TermMonths, payload.ExtraPrincipal)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, amortizationResponse{
		MonthlyPayment: mathutil.RoundCents(loans.MonthlyPayment(payload.Balance, loans.MonthlyRate(payload.Rate), payload.TermMonths)),
		Months:         len(schedule),
		TotalInterest:  mathutil.RoundCents(loans.TotalInterest(schedule)),
		TotalPrincipal: mathutil.RoundCents(loans.TotalPrincipal(schedule)),
		FirstMonth:     loans.AmortizationMonth(payload.Balance, payload.Rate, payload.TermMonths),
		Schedule:       schedule,
	})
}

type refinancePayload struct {
	Loan      refinance.CurrentLoan `json:"loan"`
	Scenarios []refinance.Scenario  `json:"scenarios,omitempty"`
	Policy    *refinance.Policy     `json:"policy,omitempty"`
}

type refinanceResponse struct {
	Current        refinance.CurrentLoan      `json:"current"`
	CurrentPayment float64                    `json:"current_payment"`
	Comparisons    []output.RefinanceDocument `json:"comparisons"`
	Best           *output.RefinanceDocument  `json:"best,omitempty"`
	Warnings       []string                   `json:"warnings,omitempty"`
}

func (h *handler) handleRefinance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRefinance"

	var payload refinancePayload
	if status, err := h.decodeBody(w, r, &payload, false); err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}
	if payload.Loan.Balance <= 0 || payload.Loan.RemainingTermMonths <= 0 {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "loan balance and remaining_term_months must be positive", op)
		return
	}

	settings := h.engine.Settings()
	policy := settings.Policy
	if payload.Policy != nil {
		policy = payload.Policy.Normalize()
	}
	scenarios := payload.Scenarios
	if len(scenarios) == 0 {
		scenarios = settings.Scenarios
	}
	if len(scenarios) == 0 {
		scenarios = refinance.DefaultScenarios(payload.Loan, policy)
	}

	comparisons := refinance.Analyze(payload.Loan, scenarios, policy)
	docs, warnings := output.NewRefinanceDocuments("loan", comparisons)

	response := refinanceResponse{
		Current:        payload.Loan,
		CurrentPayment: mathutil.RoundCents(payload.Loan.Payment()),
		Comparisons:    docs,
		Warnings:       warnings,
	}
	if best, ok := refinance.Best(comparisons); ok {
		doc := output.NewRefinanceDocument(best)
		response.Best = &doc
	}
	h.countWarnings(r, warnings)
	h.writeJSON(w, http.StatusOK, response)
}

type paydownPayload struct {
	Loans        []paydown.Loan `json:"loans"`
	ExtraPayment *float64       `json:"extra_payment,omitempty"`
	Model        string         `json:"model,omitempty"`
	// Strategy and TargetMonths request a payoff-target search.
	Strategy     string `json:"strategy,omitempty"`
	TargetMonths int    `json:"target_months,omitempty"`
}

type paydownResponse struct {
	output.PaydownDocument
	PayoffTarget *optimization.Summary `json:"payoff_target,omitempty"`
	Warnings     []string              `json:"warnings,omitempty"`
}

func (h *handler) handlePaydown(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePaydown"

	var payload paydownPayload
	if status, err := h.decodeBody(w, r, &payload, false); err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}
	if len(payload.Loans) == 0 {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "at least one loan is required", op)
		return
	}

	settings := h.engine.Settings()
	extra := settings.ExtraPayment
	if payload.ExtraPayment != nil {
		extra = *payload.ExtraPayment
	}

	simulator := h.engine.Simulator()
	if payload.Model != "" {
		model, err := paydown.ParseModel(payload.Model)
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
			return
		}
		simulator = paydown.NewSimulator(h.logger, settings.MaxMonths, model)
	}

	cmp, err := simulator.Compare(payload.Loans, extra)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	doc, warnings := output.NewPaydownDocument(cmp)
	response := paydownResponse{PaydownDocument: doc, Warnings: warnings}

	targetMonths := payload.TargetMonths
	if targetMonths == 0 {
		targetMonths = settings.TargetMonths
	}
	if targetMonths > 0 {
		strategy := settings.TargetStrategy
		if payload.Strategy != "" {
			if strategy, err = paydown.ParseStrategy(payload.Strategy); err != nil {
				h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
				return
			}
		}
		runner, err := optimizer.NewRunner(h.logger, simulator)
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
			return
		}
		summary, err := runner.RequiredExtraPayment(payload.Loans, optimizer.Target{
			Strategy:      strategy,
			TargetMonths:  targetMonths,
			BaselineExtra: extra,
		})
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), op)
			return
		}
		response.PayoffTarget = &summary
	}

	h.countWarnings(r, warnings)
	h.writeJSON(w, http.StatusOK, response)
}

// decodeBody reads a request body bounded by the upload limit. YAML bodies
// are accepted only when allowYAML is set; everything else is strict JSON.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, allowYAML bool) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds limit of %d bytes", h.maxUploadSize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to read request: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return http.StatusBadRequest, errors.New("request body is empty")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if allowYAML && strings.Contains(mediaType, "yaml") {
		if err := yaml.Unmarshal(data, v); err != nil {
			return http.StatusBadRequest, fmt.Errorf("failed to decode request: %v", err)
		}
		return http.StatusOK, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return http.StatusBadRequest, fmt.Errorf("failed to decode request: %v", err)
	}
	return http.StatusOK, nil
}

func (h *handler) countWarnings(r *http.Request, warnings []string) {
	if len(warnings) > 0 {
		telemetry.Warnings.WithLabelValues(routeName(r)).Add(float64(len(warnings)))
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("analysis request failed",
		zap.String("op", op),
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	span := trace.SpanFromContext(r.Context())
	span.SetStatus(codes.Error, msg)
	telemetry.CalculationErrors.WithLabelValues(routeName(r), errorType(status)).Inc()

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func errorType(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusBadRequest:
		return "invalid_request"
	default:
		return "internal"
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
