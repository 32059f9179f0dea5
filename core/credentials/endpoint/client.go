// Package endpoint fetches realtime tokens from a site backend that answers
// with {"token": "..."} or {"error": "..."}.
package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vsurfcode/portfolio-voice/core/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

type responseBody struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

func (c *Client) Token(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "fetch realtime token")
	defer span.End()
	span.SetAttributes(attribute.String("request.url", c.url))

	token, err := c.token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return token, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var body responseBody
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		}
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}

	if body.Error != "" {
		return "", errors.New(body.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}
	if body.Token == "" {
		return "", credentials.ErrNoToken
	}

	return body.Token, nil
}
