package validation

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "admin",
	Subsystem: "validation",
	Name:      "rejections_total",
	Help:      "Total number of mutations rejected by a validation chain, by chain and code.",
}, []string{"chain", "code"})

// Validator is one read-only check over an input. A returned error means the
// check itself could not run; a rejected input is reported through Result.
type Validator[T any] interface {
	Validate(ctx context.Context, in T) (Result, error)
}

type ValidatorFunc[T any] func(ctx context.Context, in T) (Result, error)

func (f ValidatorFunc[T]) Validate(ctx context.Context, in T) (Result, error) {
	return f(ctx, in)
}

// Check adapts a context-free predicate into a Validator.
func Check[T any](fn func(in T) Result) Validator[T] {
	return ValidatorFunc[T](func(_ context.Context, in T) (Result, error) {
		return fn(in), nil
	})
}

// Chain runs validators in registration order and stops at the first failure.
type Chain[T any] struct {
	name       string
	validators []Validator[T]
}

func NewChain[T any](name string, validators ...Validator[T]) *Chain[T] {
	return &Chain[T]{name: name, validators: validators}
}

func (c *Chain[T]) Name() string {
	return c.name
}

func (c *Chain[T]) Len() int {
	return len(c.validators)
}

// Use appends validators to the end of the chain.
func (c *Chain[T]) Use(validators ...Validator[T]) *Chain[T] {
	c.validators = append(c.validators, validators...)
	return c
}

// Handle returns the first failing result verbatim, or success.
func (c *Chain[T]) Handle(ctx context.Context, in T) (Result, error) {
	for _, v := range c.validators {
		res, err := v.Validate(ctx, in)
		if err != nil {
			return Result{}, err
		}
		if res.Failed() {
			rejections.WithLabelValues(c.name, res.Code).Inc()
			return res, nil
		}
	}
	return OK(), nil
}

// Run is Handle folded into a single error: the failure as a service error,
// or the infrastructure fault.
func (c *Chain[T]) Run(ctx context.Context, in T) error {
	res, err := c.Handle(ctx, in)
	if err != nil {
		return err
	}
	return res.Err()
}
