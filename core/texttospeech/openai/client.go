// Package openai synthesizes speech with the OpenAI audio speech endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/vsurfcode/portfolio-voice/core/audio"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultBaseURL = "https://api.openai.com"
	speechPath     = "/v1/audio/speech"
	defaultModel   = "tts-1-hd"
	defaultVoice   = "alloy"

	// pcm output is always 24 kHz signed 16-bit little-endian mono.
	responseFormatPCM = "pcm"
)

var supportedVoices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// SupportedVoices lists the voices the speech endpoint accepts.
func SupportedVoices() []string {
	return slices.Clone(supportedVoices)
}

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
	return func(c *Client) { c.model = model }
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
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
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	Input          string  `json:"input"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

// Synthesize returns raw PCM audio for text. Realtime-only voices are
// rejected with [texttospeech.ErrVoiceNotSupported] before any request is
// made.
func (c *Client) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error) {
	options := texttospeech.NewSynthesisOptions(opts...)
	voice := options.Voice
	if voice == "" {
		voice = defaultVoice
	}

	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("tts.voice", voice),
		attribute.String("tts.model", c.model),
		attribute.Int("tts.text_length", len(text)),
	)

	if !slices.Contains(supportedVoices, voice) {
		err := fmt.Errorf("%w: %q", texttospeech.ErrVoiceNotSupported, voice)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if options.EncodingInfo.SampleRate != audio.DefaultSampleRate || options.EncodingInfo.Format != audio.EncodingLinear16 {
		err := fmt.Errorf("unsupported encoding %s at %d Hz", options.EncodingInfo.Format.Name(), options.EncodingInfo.SampleRate)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	requestBodyBytes, err := json.Marshal(requestBody{
		Model:          c.model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: responseFormatPCM,
		Speed:          options.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+speechPath, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	audioBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tts.audio_bytes", len(audioBytes)))

	return audioBytes, nil
}
