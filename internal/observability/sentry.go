package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry is a no-op without a DSN so local development needs no setup.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports an unclassified server error. Classified API errors
// (4xx) are never sent; they are client mistakes, not defects.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

func CapturePanic(recovered any) {
	if recovered == nil {
		return
	}
	sentry.CurrentHub().Recover(recovered)
}
