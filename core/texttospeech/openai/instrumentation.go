package openai

import "go.opentelemetry.io/otel"

const scopeName = "github.com/vsurfcode/portfolio-voice/core/texttospeech/openai"

var tracer = otel.Tracer(scopeName)
