package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/castlebay/warroom-go/internal/application/mediator"
)

// PrometheusMiddleware records execution duration and outcome of every
// mediator dispatch. A nil collector makes it a pass-through.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := commandName(request)
		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(name, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}

// commandName strips the package prefix from the request's type, e.g.
// "commands.GenerateAssignmentsCommand" becomes
// "GenerateAssignmentsCommand".
func commandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}
	full := reflect.TypeOf(request).String()
	full = strings.TrimPrefix(full, "*")
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[i+1:]
	}
	return full
}
