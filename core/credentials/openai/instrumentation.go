package openai

import "go.opentelemetry.io/otel"

const scopeName = "github.com/vsurfcode/portfolio-voice/core/credentials/openai"

var tracer = otel.Tracer(scopeName)
