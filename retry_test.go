package gateway_test

import (
	"context"
	"errors"
	"testing"

	gateway "github.com/goliatone/go-gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyExhaustsBudgetAndSurfacesLastError(t *testing.T) {
	nav := &recordingNavigator{}
	policy := gateway.NewRetryPolicy(nav, "/plugins")

	boom := errors.New("backend exploded")
	attempts := 0

	err := policy.Execute(context.Background(), func(context.Context) error {
		attempts++
		return boom
	})

	assert.Equal(t, 3, attempts, "default budget is maxRetries+1 attempts")
	assert.Same(t, boom, err, "last failure must surface unchanged")
	assert.Empty(t, nav.Targets())
}

func TestRetryPolicyAuthErrorShortCircuits(t *testing.T) {
	nav := &recordingNavigator{}
	policy := gateway.NewRetryPolicy(nav, "/plugins")

	attempts := 0
	err := policy.Execute(context.Background(), func(context.Context) error {
		attempts++
		return gateway.ErrNoSession
	})

	assert.Equal(t, 1, attempts, "auth failures are never retried")
	assert.ErrorIs(t, err, gateway.ErrAuthRequired)

	require.Len(t, nav.Targets(), 1)
	assert.Equal(t, "/auth/signin?returnTo=/plugins", nav.Targets()[0])
}

func TestRetryPolicySucceedsMidBudget(t *testing.T) {
	nav := &recordingNavigator{}
	policy := gateway.NewRetryPolicy(nav, "/plugins")

	attempts := 0
	err := policy.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Empty(t, nav.Targets())
}

func TestRetryPolicyZeroRetries(t *testing.T) {
	nav := &recordingNavigator{}
	policy := gateway.NewRetryPolicy(nav, "/plugins", gateway.WithMaxRetries(0))

	attempts := 0
	err := policy.Execute(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("nope")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicyDetectsDuckTypedUnauthorized(t *testing.T) {
	nav := &recordingNavigator{}
	policy := gateway.NewRetryPolicy(nav, "/chat")

	attempts := 0
	err := policy.Execute(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("request failed with status 401 Unauthorized")
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, gateway.ErrAuthRequired)
	require.Len(t, nav.Targets(), 1)
}

func TestExecuteForReturnsValue(t *testing.T) {
	nav := &recordingNavigator{}
	policy := gateway.NewRetryPolicy(nav, "/plugins")

	attempts := 0
	value, err := gateway.ExecuteFor(context.Background(), policy, func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "plugin-42", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "plugin-42", value)
	assert.Equal(t, 3, attempts)
}
