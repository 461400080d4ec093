package api

import (
	"context"
	"time"
)

// Observer receives failure notifications from the client. Notifications are
// a side channel only: the failing call still returns its error.
type Observer interface {
	// OnUnauthorized fires once for every 401 response.
	OnUnauthorized(ctx context.Context, err *APIError)
	// OnError fires for every other failure, including network errors.
	OnError(ctx context.Context, err *APIError)
}

// RoundTripObserver is implemented by observers that also want a record of
// every completed call, successful or not.
type RoundTripObserver interface {
	OnRoundTrip(ctx context.Context, rt RoundTrip)
}

// RoundTrip summarizes one dispatched request.
type RoundTrip struct {
	Operation  string
	Method     string
	Path       string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Unauthorized func(ctx context.Context, err *APIError)
	Error        func(ctx context.Context, err *APIError)
}

func (f ObserverFuncs) OnUnauthorized(ctx context.Context, err *APIError) {
	if f.Unauthorized != nil {
		f.Unauthorized(ctx, err)
	}
}

func (f ObserverFuncs) OnError(ctx context.Context, err *APIError) {
	if f.Error != nil {
		f.Error(ctx, err)
	}
}

type multiObserver []Observer

// MultiObserver fans notifications out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) OnUnauthorized(ctx context.Context, err *APIError) {
	for _, o := range m {
		o.OnUnauthorized(ctx, err)
	}
}

func (m multiObserver) OnError(ctx context.Context, err *APIError) {
	for _, o := range m {
		o.OnError(ctx, err)
	}
}

func (m multiObserver) OnRoundTrip(ctx context.Context, rt RoundTrip) {
	for _, o := range m {
		if rto, ok := o.(RoundTripObserver); ok {
			rto.OnRoundTrip(ctx, rt)
		}
	}
}

type noopObserver struct{}

func (noopObserver) OnUnauthorized(context.Context, *APIError) {}
func (noopObserver) OnError(context.Context, *APIError)        {}
