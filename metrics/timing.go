package metrics

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey carries the request ID used in timing logs.
const RequestIDKey ctxKey = "req_id"

// Time starts timing op. The returned func logs the duration and error and
// records it in OperationDurationSeconds:
//
//	defer metrics.Time(ctx, "fleet.Resolve")(&err)
func Time(ctx context.Context, op string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)
		OperationDurationSeconds.WithLabelValues(op).Observe(dur.Seconds())

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, op, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, op, dur.Milliseconds())
	}
}

// WithRequestID returns a context carrying id for timing logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
