// Package gateway performs single calls to the external prediction endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"
	"strings"

	apperrors "work-advisor/internal/common/errors"
	httpclient "work-advisor/internal/common/http"
	"work-advisor/internal/common/logger"
	"work-advisor/internal/models"
)

type Gateway struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Gateway {
	cfg := config.withDefaults()
	return &Gateway{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		logger: logger.ForComponent(log, "prediction-gateway"),
	}
}

// Predict never returns an error: every problem becomes a Failure outcome.
func (g *Gateway) Predict(ctx context.Context, req models.PredictionRequest) models.Outcome {
	key := req.Key()

	body := wireRequest{
		FormPayload: req.Payload,
		CountryCode: req.RegionCode,
		Location:    req.SubLocation,
	}

	headers := map[string]string{}
	if g.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + g.config.APIKey
	}

	resp, err := g.client.PostJSON(ctx, g.config.EndpointURL, body, headers)
	if err != nil {
		reason := transportReason(ctx, err)
		g.logFailure(key, reason, err)
		return models.Failure(reason)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, g.config.MaxBodyBytes))
	if err != nil {
		reason := transportReason(ctx, err)
		g.logFailure(key, reason, err)
		return models.Failure(reason)
	}

	outcome := normalize(resp.StatusCode, raw)
	if outcome.IsSuccess() {
		g.logger.Debug("prediction received", map[string]interface{}{
			"key":   key,
			"value": outcome.Value,
		})
	} else {
		g.logFailure(key, outcome.Reason, nil)
	}
	return outcome
}

func (g *Gateway) logFailure(key, reason string, err error) {
	stdErr := failureError(key, reason, err)
	g.logger.Warn("prediction failed", map[string]interface{}{
		"key":       key,
		"reason":    reason,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})
}

// failureError classifies a failed call for logging; timeouts get their own code.
func failureError(key, reason string, err error) *apperrors.StandardError {
	if reason == ReasonTimeout {
		return apperrors.NewGatewayTimeoutError(key)
	}
	if err == nil {
		err = errors.New(reason)
	}
	return apperrors.NewGatewayFailureError(key, err)
}

func transportReason(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return ReasonCancelled
	}
	return err.Error()
}

// normalize maps whatever shape the endpoint returned onto an Outcome.
func normalize(status int, raw []byte) models.Outcome {
	var body map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	decodeErr := dec.Decode(&body)

	if decodeErr == nil {
		if msg := errorDescriptor(body["error"]); msg != "" {
			return models.Failure(msg)
		}
	}

	if status < 200 || status > 299 {
		return models.Failure(fmt.Sprintf("prediction endpoint returned status %d", status))
	}
	if decodeErr != nil {
		return models.Failure("invalid response body: " + decodeErr.Error())
	}

	for _, field := range valueFields {
		v, ok := body[field]
		if !ok {
			continue
		}
		if value, ok := numeric(v); ok {
			return models.Success(value)
		}
		return models.Failure(fmt.Sprintf("non-numeric %s in response", field))
	}
	return models.Failure("response has no prediction value")
}

func errorDescriptor(v interface{}) string {
	switch e := v.(type) {
	case nil:
		return ""
	case bool:
		if !e {
			return ""
		}
	case string:
		return strings.TrimSpace(e)
	case map[string]interface{}:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return fmt.Sprint(v)
}

// numeric accepts a JSON number, a numeric string or a one-element array of
// either. NaN and infinities are rejected.
func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && finite(f)
	case []interface{}:
		if len(n) == 1 {
			return numeric(n[0])
		}
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
