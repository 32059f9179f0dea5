package portaudio

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/vsurfcode/portfolio-voice/core/audio/portaudio"

var logger = otelslog.NewLogger(scopeName)
