package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
)

// RetryPolicy bounds the exponential backoff applied to transient failures.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy backs off from 100ms up to 2s and gives up after 5s.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	MaxElapsedTime:  5 * time.Second,
}

// NoRetry runs the operation exactly once.
var NoRetry = RetryPolicy{}

// Do runs op until it succeeds, fails permanently, ctx ends or the policy gives up.
func (p RetryPolicy) Do(ctx context.Context, name string, op func() error) error {
	if p.MaxElapsedTime <= 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		log.Printf("%s failed, retrying in %s: %v", name, wait, err)
	})
}

// IsTransient reports whether err is a network, timeout or availability failure.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 08: connection exception, 53: insufficient resources, 57P01: admin shutdown
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "53") || code == "57P01"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
