package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUnreachable is returned when the measurement host cannot be resolved.
var ErrUnreachable = errors.New("measurement host unreachable")

// Resolver is the subset of *net.Resolver used by CheckReachable.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// CheckReachable resolves host and wraps any failure in ErrUnreachable.
// A nil resolver uses net.DefaultResolver.
func CheckReachable(ctx context.Context, r Resolver, host string) error {
	if r == nil {
		r = net.DefaultResolver
	}
	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s: no addresses", ErrUnreachable, host)
	}
	return nil
}
