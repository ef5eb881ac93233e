package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/common/logger"
	"work-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestGateway(t *testing.T, url string, timeout time.Duration) *Gateway {
	t.Helper()
	return New(&Config{
		EndpointURL: url,
		APIKey:      "test-key",
		Timeout:     timeout,
	}, logger.NewTestLogger(t))
}

func testRequest() models.PredictionRequest {
	return models.PredictionRequest{
		RegionCode:  "US",
		SubLocation: "NY",
		Payload: models.FormPayload{
			JobTitle:           "Data Scientist",
			HardSkills:         []string{"python"},
			MinYearsExperience: 3,
		},
	}
}

// ==========================
// Request shape
// ==========================

func TestPredict_SendsPayloadWithTarget(t *testing.T) {
	var received map[string]interface{}
	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 120000}`))
	}))
	defer server.Close()

	outcome := createTestGateway(t, server.URL, time.Second).Predict(context.Background(), testRequest())

	require.True(t, outcome.IsSuccess(), outcome.Reason)
	assert.Equal(t, 120000.0, outcome.Value)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "Data Scientist", received["job_title"])
	assert.Equal(t, "US", received["country_code"])
	assert.Equal(t, "NY", received["location"])
	assert.Equal(t, 3.0, received["min_years_experience"])
}

func TestPredict_OmitsLocationForRegionLevelRequest(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"prediction": 98000}`))
	}))
	defer server.Close()

	req := testRequest()
	req.RegionCode, req.SubLocation = "SG", ""
	outcome := createTestGateway(t, server.URL, time.Second).Predict(context.Background(), req)

	require.True(t, outcome.IsSuccess())
	assert.Equal(t, "SG", received["country_code"])
	_, hasLocation := received["location"]
	assert.False(t, hasLocation)
}

// ==========================
// Response normalization
// ==========================

func TestPredict_Normalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantOK     bool
		wantValue  float64
		wantReason string
	}{
		{"prediction number", 200, `{"prediction": 101.5}`, true, 101.5, ""},
		{"predicted_salary field", 200, `{"predicted_salary": 88000}`, true, 88000, ""},
		{"salary as string", 200, `{"salary": "75000"}`, true, 75000, ""},
		{"single element array", 200, `{"prediction": [64000]}`, true, 64000, ""},
		{"error descriptor", 200, `{"error": "model not loaded"}`, false, 0, "model not loaded"},
		{"error object", 500, `{"error": {"message": "boom"}}`, false, 0, "boom"},
		{"server error without body", 503, ``, false, 0, "prediction endpoint returned status 503"},
		{"non numeric", 200, `{"prediction": "high"}`, false, 0, "non-numeric prediction in response"},
		{"NaN string", 200, `{"prediction": "NaN"}`, false, 0, "non-numeric prediction in response"},
		{"infinite string", 200, `{"prediction": "Inf"}`, false, 0, "non-numeric prediction in response"},
		{"negative infinity in array", 200, `{"salary": ["-Infinity"]}`, false, 0, "non-numeric salary in response"},
		{"overflowing number", 200, `{"prediction": 1e400}`, false, 0, "non-numeric prediction in response"},
		{"missing value", 200, `{"status": "ok"}`, false, 0, "response has no prediction value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			outcome := createTestGateway(t, server.URL, time.Second).Predict(context.Background(), testRequest())

			assert.Equal(t, tt.wantOK, outcome.IsSuccess())
			if tt.wantOK {
				assert.Equal(t, tt.wantValue, outcome.Value)
			} else {
				assert.Equal(t, models.OutcomeFailure, outcome.Kind)
				assert.Equal(t, tt.wantReason, outcome.Reason)
			}
		})
	}
}

func TestPredict_InvalidJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	outcome := createTestGateway(t, server.URL, time.Second).Predict(context.Background(), testRequest())
	assert.False(t, outcome.IsSuccess())
	assert.Contains(t, outcome.Reason, "invalid response body")
}

// ==========================
// Transport failures
// ==========================

func TestPredict_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	outcome := createTestGateway(t, server.URL, 50*time.Millisecond).Predict(context.Background(), testRequest())

	assert.False(t, outcome.IsSuccess())
	assert.Equal(t, ReasonTimeout, outcome.Reason)
}

func TestPredict_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	outcome := createTestGateway(t, server.URL, 5*time.Second).Predict(ctx, testRequest())
	assert.Equal(t, ReasonCancelled, outcome.Reason)
}

func TestPredict_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	outcome := createTestGateway(t, url, time.Second).Predict(context.Background(), testRequest())
	assert.False(t, outcome.IsSuccess())
	assert.NotEmpty(t, outcome.Reason)
}

func TestFailureError_Classification(t *testing.T) {
	timeout := failureError("US-NY", ReasonTimeout, context.DeadlineExceeded)
	assert.Equal(t, apperrors.ErrCodeGatewayTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)
	assert.Equal(t, "request: US-NY", timeout.Details)

	refused := failureError("SG", "dial tcp: connection refused", nil)
	assert.Equal(t, apperrors.ErrCodeGatewayFailure, refused.Code)
	assert.Contains(t, refused.Details, "connection refused")
}
