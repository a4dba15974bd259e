package analytics

import "fmt"

// Warning codes emitted by the computation components.
const (
	WarnNoFailureHistory    = "no_failure_history"
	WarnNoTransactions      = "no_transactions"
	WarnInsufficientHistory = "insufficient_history"
	WarnNoQualifyingOrders  = "no_qualifying_orders"
	WarnTimeLimited         = "solve_time_limited"
	WarnUndeliveredOrder    = "undelivered_order"
)

// Warning is a non-fatal finding accumulated during a computation and
// returned alongside valid results. Entities with no history are always
// reported this way, never dropped and never raised as errors.
type Warning struct {
	Code    string
	Key     string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Key, w.Message)
}

// Warnf builds a Warning with a formatted message
func Warnf(code, key, format string, args ...any) Warning {
	return Warning{Code: code, Key: key, Message: fmt.Sprintf(format, args...)}
}
