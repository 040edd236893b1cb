package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/cexll/storefront-go/pkg/telemetry"
)

// RoundTripFunc executes one HTTP exchange.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// Interceptor wraps a round trip with extra behavior. Interceptors compose
// like an onion: the first registered interceptor sees the request first and
// the response last.
type Interceptor func(next RoundTripFunc) RoundTripFunc

// chain folds interceptors around base, preserving registration order.
func chain(base RoundTripFunc, interceptors []Interceptor) RoundTripFunc {
	wrapped := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		wrapped = interceptors[i](wrapped)
	}
	return wrapped
}

// TokenSource yields the bearer credential for authenticated calls. An empty
// token means anonymous and no header is attached.
type TokenSource interface {
	Token() string
}

// authInterceptor injects the bearer token on every request.
func authInterceptor(source TokenSource) Interceptor {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			if source != nil {
				if token := source.Token(); token != "" {
					req.Header.Set("Authorization", "Bearer "+token)
				}
			}
			return next(req)
		}
	}
}

// requestIDInterceptor tags every request with a fresh correlation id.
func requestIDInterceptor() Interceptor {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			req.Header.Set("X-Request-ID", uuid.NewString())
			return next(req)
		}
	}
}

// telemetryInterceptor records a client span plus call metrics per request.
// The operation name is read from the request context, set by Client.do.
func telemetryInterceptor() Interceptor {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			operation := operationFromContext(req.Context())
			ctx, span := telemetry.StartSpan(req.Context(), "storefront."+operation,
				trace.WithSpanKind(trace.SpanKindClient))
			start := time.Now()
			resp, err := next(req.WithContext(ctx))

			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			telemetry.RecordCall(ctx, telemetry.CallData{
				Operation: operation,
				Status:    status,
				Duration:  time.Since(start),
				Error:     err,
			})
			telemetry.EndSpan(span, err)
			return resp, err
		}
	}
}
