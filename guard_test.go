package gateway_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gateway "github.com/goliatone/go-gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *recordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

func testSession() gateway.Session {
	return &gateway.SessionObject{
		SubjectID: "user-1",
		Role:      "user",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestRouteGuardStartsLoading(t *testing.T) {
	nav := &recordingNavigator{}
	guard := gateway.NewRouteGuard(nav, "/account")

	assert.Equal(t, gateway.GuardLoading, guard.State())
	assert.False(t, guard.Authorized())
	assert.Empty(t, nav.Targets())
}

func TestRouteGuardRedirectsOnceWhenUnauthenticated(t *testing.T) {
	nav := &recordingNavigator{}
	guard := gateway.NewRouteGuard(nav, "/account")

	state := guard.Resolve(nil)
	assert.Equal(t, gateway.GuardUnauthenticated, state)
	assert.False(t, guard.Authorized())

	// re-render resolves again, must not re-trigger the redirect
	state = guard.Resolve(nil)
	assert.Equal(t, gateway.GuardUnauthenticated, state)

	require.Len(t, nav.Targets(), 1)
	assert.Equal(t, "/auth/signin?returnTo=/account", nav.Targets()[0])
}

func TestRouteGuardAuthenticatedIsStable(t *testing.T) {
	nav := &recordingNavigator{}
	guard := gateway.NewRouteGuard(nav, "/account")

	assert.Equal(t, gateway.GuardAuthenticated, guard.Resolve(testSession()))
	assert.Equal(t, gateway.GuardAuthenticated, guard.Resolve(testSession()))
	assert.True(t, guard.Authorized())
	assert.Empty(t, nav.Targets())
}

func TestRouteGuardIgnoresTransientNilAfterAuthenticated(t *testing.T) {
	nav := &recordingNavigator{}
	guard := gateway.NewRouteGuard(nav, "/account")

	guard.Resolve(testSession())
	state := guard.Resolve(nil)

	assert.Equal(t, gateway.GuardAuthenticated, state)
	assert.Empty(t, nav.Targets())
}

func TestRouteGuardConcurrentResolvesRedirectOnce(t *testing.T) {
	var navigations atomic.Int64
	nav := gateway.NavigatorFunc(func(string) {
		navigations.Add(1)
	})
	guard := gateway.NewRouteGuard(nav, "/account")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard.Resolve(nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), navigations.Load())
	assert.Equal(t, gateway.GuardUnauthenticated, guard.State())
}

func TestRouteGuardOptions(t *testing.T) {
	nav := &recordingNavigator{}
	guard := gateway.NewRouteGuard(nav, "/settings",
		gateway.WithGuardSignInPath("/login"),
		gateway.WithGuardReturnToParam("next"),
	)

	guard.Resolve(nil)

	require.Len(t, nav.Targets(), 1)
	assert.Equal(t, "/login?next=/settings", nav.Targets()[0])
}
