package endpoint

import "go.opentelemetry.io/otel"

const scopeName = "github.com/vsurfcode/portfolio-voice/core/credentials/endpoint"

var tracer = otel.Tracer(scopeName)
