package simlob

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger allows the host to install a custom logger, e.g. to route
// World/OrderBook diagnostics into the backtest driver's own log sink.
func SetLogger(l *slog.Logger) {
	logger = l
}
