package postgres

import "go.opentelemetry.io/otel"

const scopeName = "github.com/vsurfcode/portfolio-voice/core/portfolio/postgres"

var tracer = otel.Tracer(scopeName)
