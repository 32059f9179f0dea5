// Package openai mints ephemeral realtime client secrets directly from the
// OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vsurfcode/portfolio-voice/core/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultBaseURL      = "https://api.openai.com"
	clientSecretsPath   = "/v1/realtime/client_secrets"
	DefaultModel        = "gpt-realtime"
	sessionTypeRealtime = "realtime"
)

type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   DefaultModel,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type requestBody struct {
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Type  string `json:"type"`
	Model string `json:"model"`
}

type responseBody struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// Token returns a fresh ephemeral client secret for the configured model.
func (c *Client) Token(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "create realtime client secret")
	defer span.End()
	span.SetAttributes(attribute.String("realtime.model", c.model))

	token, err := c.token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return token, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai api key not configured")
	}

	requestBodyBytes, err := json.Marshal(requestBody{
		Session: sessionConfig{Type: sessionTypeRealtime, Model: c.model},
	})
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+clientSecretsPath, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-OK HTTP status: %s: %s", resp.Status, strings.TrimSpace(string(bodyBytes)))
	}

	var body responseBody
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}
	if body.Value == "" {
		return "", credentials.ErrNoToken
	}

	return body.Value, nil
}
