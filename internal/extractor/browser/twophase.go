package browser

import (
	"context"
	"time"
)

// resolveTwoPhase runs probe at fixed intervals until it reports a result or
// the wall-clock budget is exhausted, then hands over to fallback for one
// final attempt. A probe error aborts immediately; a false return means "not
// yet". The interval sleep is interruptible by ctx.
func resolveTwoPhase(
	ctx context.Context,
	budget, interval time.Duration,
	probe func(context.Context) (string, bool, error),
	fallback func(context.Context) (string, error),
) (string, error) {
	deadline := time.Now().Add(budget)

	for {
		result, ok, err := probe(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return result, nil
		}

		if time.Now().After(deadline) {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return fallback(ctx)
}
