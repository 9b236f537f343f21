package util

import (
	"context"

	"github.com/go-ble/ble"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM
func SignalContext() context.Context {
	return ble.WithSigHandler(context.WithCancel(context.Background()))
}
