// Package deepgram synthesizes speech over the Deepgram Aura websocket API.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultURL = "wss://api.deepgram.com/v1/speak"

type Voice string

const (
	VoiceThalia    Voice = "aura-2-thalia-en"
	VoiceAndromeda Voice = "aura-2-andromeda-en"
	VoiceHelena    Voice = "aura-2-helena-en"
	VoiceApollo    Voice = "aura-2-apollo-en"
	VoiceArcas     Voice = "aura-2-arcas-en"
	VoiceOrion     Voice = "aura-2-orion-en"

	defaultVoice = VoiceThalia
)

func GetAvailableVoices() []Voice {
	return []Voice{VoiceThalia, VoiceAndromeda, VoiceHelena, VoiceApollo, VoiceArcas, VoiceOrion}
}

// resolveVoice accepts Aura model names as-is. Any other name, including the
// OpenAI voice names stored in the settings, falls back to the client voice.
func resolveVoice(requested string, fallback Voice) Voice {
	if strings.HasPrefix(requested, "aura-") {
		return Voice(requested)
	}
	return fallback
}

type Client struct {
	apiKey string
	url    string
	voice  Voice
	dialer *websocket.Dialer
}

type ClientOption func(*Client)

func WithURL(rawURL string) ClientOption {
	return func(c *Client) { c.url = rawURL }
}

func WithDefaultVoice(voice Voice) ClientOption {
	return func(c *Client) { c.voice = voice }
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	client := &Client{
		apiKey: apiKey,
		url:    defaultURL,
		voice:  defaultVoice,
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type websocketMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)

func speakMsg(text string) websocketMessage {
	return websocketMessage{Type: "Speak", Text: text}
}

// Synthesize opens a speak socket for a single piece of text, flushes it and
// collects audio until the server confirms the flush.
func (c *Client) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error) {
	options := texttospeech.NewSynthesisOptions(opts...)
	voice := resolveVoice(options.Voice, c.voice)

	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("tts.voice", string(voice)),
		attribute.Int("tts.text_length", len(text)),
	)

	audio, err := c.synthesize(ctx, text, voice, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tts.audio_bytes", len(audio)))
	return audio, nil
}

func (c *Client) synthesize(ctx context.Context, text string, voice Voice, options texttospeech.SynthesisOptions) ([]byte, error) {
	conn, err := c.connect(ctx, voice, options)
	if err != nil {
		return nil, err
	}

	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { _ = conn.Close() }) }
	defer closeConn()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(speakMsg(text)); err != nil {
		return nil, fmt.Errorf("failed to send text to deepgram: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return nil, fmt.Errorf("failed to flush deepgram buffer: %w", err)
	}

	audio, err := collectAudio(conn)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	if err := conn.WriteJSON(closeMsg); err != nil {
		logger.Debug("failed to send deepgram close message", "error", err)
	}
	return audio, nil
}

func (c *Client) connect(ctx context.Context, voice Voice, options texttospeech.SynthesisOptions) (*websocket.Conn, error) {
	base, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid deepgram url: %w", err)
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", options.EncodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(options.EncodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")
	base.RawQuery = urlValues.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, base.String(), http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open socket connection to deepgram (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

func collectAudio(conn *websocket.Conn) ([]byte, error) {
	var audio []byte
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil, errors.New("deepgram closed the stream before flushing")
			}
			return nil, fmt.Errorf("websocket read error: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			audio = append(audio, msg...)
		case websocket.TextMessage:
			var parsedMsg struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Debug("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				return audio, nil
			case "Error":
				return nil, fmt.Errorf("deepgram error: %s", parsedMsg.Description)
			case "Warning":
				logger.Warn("deepgram warning", "description", parsedMsg.Description)
			}
		}
	}
}
