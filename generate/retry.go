package generate

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry wraps next so that calls failing with an UnreachableError are retried
// up to maxRetries times with exponential backoff. Other errors are returned
// immediately.
func Retry(next Generator, maxRetries uint64) Retrier {
	return Retrier{
		Next:            next,
		MaxRetries:      maxRetries,
		InitialInterval: 500 * time.Millisecond,
	}
}

type Retrier struct {
	Next            Generator
	MaxRetries      uint64
	InitialInterval time.Duration
}

func (r Retrier) Generate(ctx context.Context, model, prompt string, forceJSON bool) (text string, err error) {
	op := func() error {
		text, err = r.Next.Generate(ctx, model, prompt, forceJSON)
		if err == nil {
			return nil
		}
		var ue UnreachableError
		if !errors.As(err, &ue) {
			return backoff.Permanent(err)
		}
		return err
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.InitialInterval
	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, r.MaxRetries), ctx))
	return text, err
}
