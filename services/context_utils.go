package services

import (
	"context"
	"time"
)

// persistentContext keeps values from ctx but survives its cancellation, so
// bookkeeping writes still land after a client disconnects.
func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

func detachedWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(persistentContext(ctx), timeout)
}
