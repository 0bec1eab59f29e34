package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/baro-ai/legal-api/internal/config"
	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	requireStatus(t, w, http.StatusOK)
	body := decodeJSON[map[string]string](t, w)
	assert.Equal(t, map[string]string{"status": "healthy", "app": "BARO AI", "version": "v1"}, body)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = s.do(t, http.MethodGet, "/", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "Welcome to BARO AI")
}

func TestReady(t *testing.T) {
	w := newTestServer(t).do(t, http.MethodGet, "/ready", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "v1.2.3", decodeJSON[map[string]string](t, w)["model_version"])

	w = newTestServer(t, withoutModel()).do(t, http.MethodGet, "/ready", "", nil)
	requireStatus(t, w, http.StatusServiceUnavailable)
	assert.Equal(t, "ML model not available", decodeEnvelope(t, w).Message)
}

func TestAuth(t *testing.T) {
	body := `{"case_text":"Dispute over land boundary with neighbour"}`

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "missing key", headers: nil, want: http.StatusUnauthorized},
		{name: "unknown key", headers: map[string]string{HeaderAPIKey: "stolen-key-999"}, want: http.StatusUnauthorized},
		{name: "second allowed key", headers: map[string]string{HeaderAPIKey: "dev-key-456"}, want: http.StatusOK},
		{name: "allowed key", headers: authed(), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, http.MethodPost, "/legal/analyze", body, tt.headers)
			requireStatus(t, w, tt.want)
			if tt.want != http.StatusUnauthorized {
				return
			}

			env := decodeEnvelope(t, w)
			assert.True(t, env.Error)
			assert.Equal(t, "Invalid or missing API key", env.Message)
			assert.Equal(t, "/legal/analyze", env.Path)
			assert.Empty(t, env.Details)
			assert.Contains(t, messages(s.logs, zapcore.WarnLevel),
				"BaroException: Invalid or missing API key | Path: /legal/analyze")
		})
	}
}

func TestAuth_LogsMaskedKey(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/legal/analyze", `{}`, map[string]string{HeaderAPIKey: "stolen-key-999"})

	entries := s.logs.FilterMessage("rejected API key").All()
	require.Len(t, entries, 1)
	masked := entries[0].ContextMap()["api_key"]
	assert.Equal(t, "st**********99", masked)
	for _, e := range s.logs.All() {
		assert.NotContains(t, e.Message, "stolen-key-999")
	}
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/legal/analyze",
		`{"case_text":"Dispute about land PROPERTY boundary"}`, authed())
	requireStatus(t, w, http.StatusOK)

	got := decodeJSON[domain.CaseResponse](t, w)
	assert.Equal(t, domain.CaseResponse{
		Success:    true,
		Category:   "Property Law",
		Confidence: 0.89,
		Urgency:    domain.LevelMedium,
	}, got)
}

func TestClassifyFIR(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.FIRResponse
	}{
		{
			name: "theft reported",
			body: `{"description":"mobile phone theft reported","location":"Bangalore","severity":"medium"}`,
			want: domain.FIRResponse{Success: true, CrimeType: "IPC 379 - Theft", Confidence: 0.92, Severity: domain.LevelMedium},
		},
		{
			name: "severity defaults to medium",
			body: `{"description":"My mobile phone was stolen near the market","location":"Delhi"}`,
			want: domain.FIRResponse{Success: true, CrimeType: "IPC 379 - Theft", Confidence: 0.92, Severity: domain.LevelMedium},
		},
		{
			name: "no keyword falls through",
			body: `{"description":"Loud music played all night","location":"Goa","severity":"low"}`,
			want: domain.FIRResponse{Success: true, CrimeType: "IPC General Section", Confidence: 0.65, Severity: domain.LevelLow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestServer(t).do(t, http.MethodPost, "/legal/fir-classify", tt.body, authed())
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, tt.want, decodeJSON[domain.FIRResponse](t, w))
		})
	}
}

func TestLegal_ModelUnavailable(t *testing.T) {
	s := newTestServer(t, withoutModel())
	w := s.do(t, http.MethodPost, "/legal/fir-classify",
		`{"description":"Assault outside the station","location":"Pune","severity":"high"}`, authed())
	requireStatus(t, w, http.StatusServiceUnavailable)
	assert.Equal(t, "ML model not available", decodeEnvelope(t, w).Message)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   []domain.ErrorDetail
	}{
		{
			name:   "two violated body fields",
			method: http.MethodPost,
			target: "/legal/analyze",
			body:   `{"case_text":"short","urgency":"urgent"}`,
			want: []domain.ErrorDetail{
				{Field: "body -> case_text", Message: "String should have at least 10 characters", Type: "min"},
				{Field: "body -> urgency", Message: "Input should be 'low', 'medium' or 'high'", Type: "oneof"},
			},
		},
		{
			name:   "missing required fields",
			method: http.MethodPost,
			target: "/legal/fir-classify",
			body:   `{}`,
			want: []domain.ErrorDetail{
				{Field: "body -> description", Message: "Field required", Type: "required"},
				{Field: "body -> location", Message: "Field required", Type: "required"},
			},
		},
		{
			name:   "malformed json",
			method: http.MethodPost,
			target: "/legal/analyze",
			body:   `{"case_text":`,
			want: []domain.ErrorDetail{
				{Field: "body", Message: "JSON decode error", Type: "json_invalid"},
			},
		},
		{
			name:   "wrong json type",
			method: http.MethodPost,
			target: "/legal/analyze",
			body:   `{"case_text":12345678901}`,
			want: []domain.ErrorDetail{
				{Field: "body -> case_text", Message: "Input should be a valid string", Type: "type_error"},
			},
		},
		{
			name:   "type error alongside a rule violation",
			method: http.MethodPost,
			target: "/legal/analyze",
			body:   `{"case_text":"short","urgency":5}`,
			want: []domain.ErrorDetail{
				{Field: "body -> urgency", Message: "Input should be a valid string", Type: "type_error"},
				{Field: "body -> case_text", Message: "String should have at least 10 characters", Type: "min"},
			},
		},
		{
			name:   "empty urgency",
			method: http.MethodPost,
			target: "/legal/analyze",
			body:   `{"case_text":"Dispute about land boundary","urgency":""}`,
			want: []domain.ErrorDetail{
				{Field: "body -> urgency", Message: "Input should be 'low', 'medium' or 'high'", Type: "oneof"},
			},
		},
		{
			name:   "null urgency",
			method: http.MethodPost,
			target: "/legal/analyze",
			body:   `{"case_text":"Dispute about land boundary","urgency":null}`,
			want: []domain.ErrorDetail{
				{Field: "body -> urgency", Message: "Input should be a valid string", Type: "null_error"},
			},
		},
		{
			name:   "empty severity",
			method: http.MethodPost,
			target: "/legal/fir-classify",
			body:   `{"description":"mobile phone theft reported","location":"Bangalore","severity":""}`,
			want: []domain.ErrorDetail{
				{Field: "body -> severity", Message: "Input should be 'low', 'medium' or 'high'", Type: "oneof"},
			},
		},
		{
			name:   "null severity alongside a short location",
			method: http.MethodPost,
			target: "/legal/fir-classify",
			body:   `{"description":"mobile phone theft reported","location":"B","severity":null}`,
			want: []domain.ErrorDetail{
				{Field: "body -> location", Message: "String should have at least 2 characters", Type: "min"},
				{Field: "body -> severity", Message: "Input should be a valid string", Type: "null_error"},
			},
		},
		{
			name:   "non-positive path id",
			method: http.MethodGet,
			target: "/users/-1",
			want: []domain.ErrorDetail{
				{Field: "path -> user_id", Message: "Input should be greater than 0", Type: "gt"},
			},
		},
		{
			name:   "non-integer path id",
			method: http.MethodGet,
			target: "/users/abc",
			want: []domain.ErrorDetail{
				{Field: "path", Message: `Input should be a valid integer, unable to parse "abc"`, Type: "parsing"},
			},
		},
		{
			name:   "missing query",
			method: http.MethodGet,
			target: "/search",
			want: []domain.ErrorDetail{
				{Field: "query -> q", Message: "Field required", Type: "required"},
			},
		},
		{
			name:   "page out of range",
			method: http.MethodGet,
			target: "/search?q=contract&page=0&limit=500",
			want: []domain.ErrorDetail{
				{Field: "query -> page", Message: "Input should be greater than or equal to 1", Type: "gte"},
				{Field: "query -> limit", Message: "Input should be less than or equal to 100", Type: "lte"},
			},
		},
		{
			name:   "blank prediction text",
			method: http.MethodPost,
			target: "/predict",
			body:   `{"text":"    "}`,
			want: []domain.ErrorDetail{
				{Field: "body -> text", Message: "Text cannot be empty or whitespace", Type: "notblank"},
			},
		},
		{
			name:   "threshold out of range",
			method: http.MethodPost,
			target: "/predict/bert?threshold=2",
			want: []domain.ErrorDetail{
				{Field: "query -> threshold", Message: "Input should be less than or equal to 1", Type: "lte"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, tt.method, tt.target, tt.body, authed())
			requireStatus(t, w, http.StatusUnprocessableEntity)

			env := decodeEnvelope(t, w)
			assert.True(t, env.Error)
			assert.Equal(t, "Validation failed", env.Message)
			assert.Equal(t, strings.SplitN(tt.target, "?", 2)[0], env.Path)
			assert.Equal(t, tt.want, env.Details)

			warns := messages(s.logs, zapcore.WarnLevel)
			require.NotEmpty(t, warns)
			assert.True(t, strings.HasPrefix(warns[0], "Validation Error: ["), warns[0])
		})
	}
}

func TestUnexpectedErrors(t *testing.T) {
	const secret = "dsn=postgres://admin:hunter2@db"

	tests := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{
			name:    "panic with string",
			handler: func(c *gin.Context) { panic("connection failed: " + secret) },
		},
		{
			name:    "panic with error",
			handler: func(c *gin.Context) { panic(errors.New(secret)) },
		},
		{
			name:    "returned error",
			handler: func(c *gin.Context) { abortWith(c, errors.New(secret)) },
		},
		{
			name: "failure after partial setup",
			handler: func(c *gin.Context) {
				c.Header("X-Partial", "1")
				abortWith(c, domain.WrapError("lookup", errors.New(secret)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.router.GET("/boom", tt.handler)

			w := s.do(t, http.MethodGet, "/boom", "", nil)
			requireStatus(t, w, http.StatusInternalServerError)
			assert.NotContains(t, w.Body.String(), "hunter2")

			env := decodeEnvelope(t, w)
			assert.Equal(t, domain.ErrorResponse{
				Error:   true,
				Message: "Internal server error. Please contact support.",
				Path:    "/boom",
			}, env)

			errs := messages(s.logs, zapcore.ErrorLevel)
			require.Len(t, errs, 4, "%q", errs)
			assert.True(t, strings.HasPrefix(errs[0], "Unhandled Exception: "), errs[0])
			assert.Contains(t, errs[0], secret)
			assert.True(t, strings.HasPrefix(errs[1], "Traceback: "), errs[1])
			assert.True(t, strings.HasPrefix(errs[2], "Request failed: GET /boom | Error: "), errs[2])
			assert.True(t, strings.HasPrefix(errs[3], "XX GET /boom | Status: 500 | Time: "), errs[3])
		})
	}
}

func TestProcessTimeHeader(t *testing.T) {
	s := newTestServer(t)
	s.router.GET("/boom", func(c *gin.Context) { panic("boom") })
	s.router.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		target  string
		headers map[string]string
		want    int
	}{
		{target: "/health", want: http.StatusOK},
		{target: "/empty", want: http.StatusNoContent},
		{target: "/users/0", want: http.StatusUnprocessableEntity},
		{target: "/error-demo?should_fail=true", want: http.StatusBadRequest},
		{target: "/nowhere", want: http.StatusNotFound},
		{target: "/boom", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.target, "", tt.headers)
			requireStatus(t, w, tt.want)

			raw := w.Header().Get(HeaderProcessTime)
			require.NotEmpty(t, raw)
			secs, err := strconv.ParseFloat(raw, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, secs, 0.0)
		})
	}
}

func TestLogging_OneLinePerOutcome(t *testing.T) {
	tests := []struct {
		target string
		level  zapcore.Level
		prefix string
	}{
		{target: "/health", level: zapcore.InfoLevel, prefix: "OK GET /health | Status: 200 | Time: "},
		{target: "/error-demo?should_fail=true", level: zapcore.WarnLevel, prefix: "!! GET /error-demo | Status: 400 | Time: "},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			s := newTestServer(t)
			s.do(t, http.MethodGet, tt.target, "", nil)

			var exits []string
			for _, m := range messages(s.logs, tt.level) {
				if strings.HasPrefix(m, tt.prefix[:2]) {
					exits = append(exits, m)
				}
			}
			require.Len(t, exits, 1)
			assert.True(t, strings.HasPrefix(exits[0], tt.prefix), exits[0])
			assert.Regexp(t, `Time: \d+\.\d{3}s$`, exits[0])

			entries := s.logs.FilterMessageSnippet("→ GET ").All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
			assert.Contains(t, entries[0].Message, "| Client: 192.0.2.1")

			assert.Empty(t, s.logs.FilterMessageSnippet("Request failed").All())
		})
	}
}

func TestLoggingMiddleware_PanicWithoutDispatch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/raw", func(c *gin.Context) { panic("unguarded") })
	s := &testServer{router: r, logs: logs}

	assert.PanicsWithValue(t, "unguarded", func() {
		s.do(t, http.MethodGet, "/raw", "", nil)
	})
	assert.Contains(t, messages(logs, zapcore.ErrorLevel), "Request failed: GET /raw | Error: unguarded")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/nowhere", "", nil)
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, domain.ErrorResponse{Error: true, Message: "Not Found", Path: "/nowhere"}, decodeEnvelope(t, w))

	w = s.do(t, http.MethodDelete, "/health", "", nil)
	requireStatus(t, w, http.StatusMethodNotAllowed)
	assert.Equal(t, "Method Not Allowed", decodeEnvelope(t, w).Message)
}

func TestUsersAndSearch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/users/123", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, domain.User{UserID: 123, Name: "User 123", Email: "user123@baro.ai", Role: "lawyer"},
		decodeJSON[domain.User](t, w))

	w = s.do(t, http.MethodGet, "/search?q=contract&page=2", "", nil)
	requireStatus(t, w, http.StatusOK)
	res := decodeJSON[domain.SearchResponse](t, w)
	assert.Equal(t, "contract", res.Query)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 42, res.TotalResults)
	require.Len(t, res.Results, 3)
	assert.Equal(t, domain.SearchResult{ID: 1, Title: "Result 1 matching 'contract'", Type: "case"}, res.Results[0])
}

func TestPredict(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.PredictionResponse
	}{
		{
			name: "spam with defaults",
			body: `{"text":"  Buy now, limited offer  "}`,
			want: domain.PredictionResponse{Success: true, Prediction: "spam", Confidence: 0.9, ModelVersion: "v1"},
		},
		{
			name: "ham with explicit version",
			body: `{"text":"see you at the hearing","model_version":"v2"}`,
			want: domain.PredictionResponse{Success: true, Prediction: "ham", Confidence: 0.65, ModelVersion: "v2"},
		},
		{
			name: "below threshold",
			body: `{"text":"see you at the hearing","confidence_threshold":0.8}`,
			want: domain.PredictionResponse{Success: true, Prediction: "uncertain", Confidence: 0.65, ModelVersion: "v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestServer(t).do(t, http.MethodPost, "/predict", tt.body, nil)
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, tt.want, decodeJSON[domain.PredictionResponse](t, w))
		})
	}
}

func TestPredict_MaxLengthAfterTrim(t *testing.T) {
	s := newTestServer(t, withConfig(func(cfg *config.Config) { cfg.Model.MaxPredictionLength = 5 }))

	w := s.do(t, http.MethodPost, "/predict", `{"text":"   hello   "}`, nil)
	requireStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodPost, "/predict", `{"text":"hello world"}`, nil)
	requireStatus(t, w, http.StatusUnprocessableEntity)
	assert.Equal(t, []domain.ErrorDetail{
		{Field: "body -> text", Message: "String should have at most 5 characters", Type: "max"},
	}, decodeEnvelope(t, w).Details)
}

func TestPredictWithModel(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/predict/bert?threshold=0.7", `{"text":"contract review"}`, nil)
	requireStatus(t, w, http.StatusOK)
	got := decodeJSON[map[string]any](t, w)
	assert.Equal(t, "bert", got["model_name"])
	assert.Equal(t, 0.7, got["threshold"])
	assert.Equal(t, "contract review", got["text"])

	w = s.do(t, http.MethodPost, "/predict/bert", "", nil)
	requireStatus(t, w, http.StatusOK)
	got = decodeJSON[map[string]any](t, w)
	assert.Equal(t, 0.5, got["threshold"])
	assert.Nil(t, got["text"])
}

func TestErrorDemo(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/error-demo", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "No error occurred", decodeJSON[map[string]string](t, w)["message"])

	w = s.do(t, http.MethodGet, "/error-demo?should_fail=true", "", nil)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "you set should_fail = true, so here's an error!", decodeEnvelope(t, w).Message)

	w = s.do(t, http.MethodGet, "/error-demo?should_fail=maybe", "", nil)
	requireStatus(t, w, http.StatusUnprocessableEntity)
	assert.Equal(t, "parsing", decodeEnvelope(t, w).Details[0].Type)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, withConfig(func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}
	}))

	for i := 0; i < 2; i++ {
		requireStatus(t, s.do(t, http.MethodGet, "/health", "", nil), http.StatusOK)
	}

	w := s.do(t, http.MethodGet, "/health", "", nil)
	requireStatus(t, w, http.StatusTooManyRequests)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "Rate limit exceeded. Try again later.", decodeEnvelope(t, w).Message)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "", nil)
	s.do(t, http.MethodPost, "/legal/analyze", `{}`, nil)

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	requireStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, body, `baro_errors_total{kind="InvalidCredential"} 1`)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", map[string]string{HeaderRequestID: "trace-me"})
	assert.Equal(t, "trace-me", w.Header().Get(HeaderRequestID))

	for _, e := range s.logs.All() {
		if strings.HasPrefix(e.Message, "OK GET /health") {
			assert.Equal(t, "trace-me", e.ContextMap()["request_id"])
		}
	}
}
