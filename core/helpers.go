package orchestration

import (
	"context"
	"fmt"

	"github.com/vsurfcode/portfolio-voice/core/realtime"
)

// closeTransport shuts a transport down through whichever teardown method it
// exposes, trying Close(ctx), Close(), Disconnect(ctx) and Disconnect() in
// that order. A transport without any of them is left to the garbage
// collector. Panics are converted into errors so teardown always completes.
func closeTransport(ctx context.Context, transport realtime.Transport) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("transport close panicked: %v", recovered)
		}
	}()

	switch t := transport.(type) {
	case interface{ Close(context.Context) error }:
		if err := t.Close(ctx); err != nil {
			return fmt.Errorf("transport close(ctx) failed: %w", err)
		}
	case interface{ Close() error }:
		if err := t.Close(); err != nil {
			return fmt.Errorf("transport close failed: %w", err)
		}
	case interface{ Disconnect(context.Context) error }:
		if err := t.Disconnect(ctx); err != nil {
			return fmt.Errorf("transport disconnect(ctx) failed: %w", err)
		}
	case interface{ Disconnect() error }:
		if err := t.Disconnect(); err != nil {
			return fmt.Errorf("transport disconnect failed: %w", err)
		}
	default:
		logger.Info("transport exposes no close method, dropping it", "transport", fmt.Sprintf("%T", transport))
	}

	return nil
}
