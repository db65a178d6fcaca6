package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
)

type countingValidator struct {
	calls  int
	result validation.Result
	err    error
}

func (v *countingValidator) Validate(_ context.Context, _ string) (validation.Result, error) {
	v.calls++
	return v.result, v.err
}

func TestChain_ShortCircuitsOnFirstFailure(t *testing.T) {
	t.Parallel()

	a := &countingValidator{result: validation.Fail("A_FAILED", "a failed")}
	b := &countingValidator{}
	c := &countingValidator{}

	res, err := validation.NewChain[string]("test", a, b, c).Handle(context.Background(), "input")
	require.NoError(t, err)
	require.Equal(t, validation.Fail("A_FAILED", "a failed"), res)
	require.Equal(t, 1, a.calls)
	require.Zero(t, b.calls)
	require.Zero(t, c.calls)
}

func TestChain_RunsAllValidatorsInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	step := func(name string) validation.Validator[int] {
		return validation.ValidatorFunc[int](func(_ context.Context, _ int) (validation.Result, error) {
			order = append(order, name)
			return validation.OK(), nil
		})
	}

	chain := validation.NewChain("ordered", step("first"), step("second")).Use(step("third"))
	res, err := chain.Handle(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.Equal(t, []string{"first", "second", "third"}, order)
	require.Equal(t, 3, chain.Len())
	require.Equal(t, "ordered", chain.Name())
}

func TestChain_MiddleFailureSkipsRest(t *testing.T) {
	t.Parallel()

	a := &countingValidator{}
	b := &countingValidator{result: validation.Fail(serrors.InvalidEmail, "bad email")}
	c := &countingValidator{}

	err := validation.NewChain[string]("middle", a, b, c).Run(context.Background(), "x")
	require.Equal(t, serrors.InvalidEmail, serrors.CodeOf(err))
	require.Equal(t, 1, a.calls)
	require.Equal(t, 1, b.calls)
	require.Zero(t, c.calls)
}

func TestChain_InfrastructureFaultStopsChain(t *testing.T) {
	t.Parallel()

	boom := errors.New("store unavailable")
	a := &countingValidator{err: boom}
	b := &countingValidator{}

	_, err := validation.NewChain[string]("fault", a, b).Handle(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	require.Zero(t, b.calls)
}

func TestCheck_AdaptsPredicate(t *testing.T) {
	t.Parallel()

	v := validation.Check(func(name string) validation.Result {
		return validation.Required(name, serrors.RequiredName, "name is required")
	})
	res, err := v.Validate(context.Background(), "  ")
	require.NoError(t, err)
	require.Equal(t, serrors.RequiredName, res.Code)
	require.Nil(t, validation.OK().Err())
}
