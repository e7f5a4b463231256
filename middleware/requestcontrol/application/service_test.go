package application

import (
	"sync/atomic"
	"testing"
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState struct {
	v    atomic.Bool
	sets int
}

func newFakeState(v bool) *fakeState {
	s := &fakeState{}
	s.v.Store(v)
	return s
}

func (s *fakeState) IsEnabled() bool { return s.v.Load() }

func (s *fakeState) SetEnabled(v bool) bool {
	s.sets++
	return s.v.Swap(v)
}

var exampleNow = time.Date(2025, 8, 27, 10, 43, 30, 0, time.Local)

func TestService_ExampleScenario(t *testing.T) {
	cfg := domain.DefaultConfig()
	state := newFakeState(cfg.DefaultEnabled)
	svc := NewService(cfg, state, nil)

	res := svc.ApplyControl(false, "431027", exampleNow)
	require.True(t, res.Authorized)
	assert.True(t, res.Previous)
	assert.False(t, res.Enabled)

	dec := svc.ShouldAllow("/api/users")
	assert.False(t, dec.Allowed)
	assert.Equal(t, domain.ReasonDisabled, dec.Reason)
	assert.Equal(t, 503, dec.StatusCode)
	assert.Equal(t, "System is temporarily unavailable", dec.Message)
	assert.ErrorIs(t, dec.Err(), domain.ErrServiceUnavailable)

	dec = svc.ShouldAllow("/set-request/info")
	assert.True(t, dec.Allowed)
	assert.Equal(t, domain.ReasonWhitelist, dec.Reason)
}

func TestService_ApplyControlWithBadKeyKeepsState(t *testing.T) {
	state := newFakeState(true)
	svc := NewService(domain.DefaultConfig(), state, nil)

	res := svc.ApplyControl(true, "000000", exampleNow)
	assert.False(t, res.Authorized)
	assert.ErrorIs(t, res.Err(), domain.ErrUnauthorized)
	assert.Equal(t, 0, state.sets)
	assert.True(t, state.IsEnabled())
}

func TestService_DisableThenBadKeyStaysDisabled(t *testing.T) {
	state := newFakeState(true)
	svc := NewService(domain.DefaultConfig(), state, nil)

	require.True(t, svc.ApplyControl(false, DeriveKey(exampleNow), exampleNow).Authorized)
	require.False(t, svc.ApplyControl(true, "bogus", exampleNow).Authorized)
	require.False(t, svc.ApplyControl(true, DeriveKey(exampleNow.Add(time.Minute)), exampleNow).Authorized)

	assert.False(t, state.IsEnabled())
	assert.False(t, svc.ShouldAllow("/api/users").Allowed)
}

func TestService_LastAppliedValueWins(t *testing.T) {
	state := newFakeState(true)
	svc := NewService(domain.DefaultConfig(), state, nil)
	key := DeriveKey(exampleNow)

	seq := []bool{false, false, true, false, true, true, false}
	prev := true
	for _, v := range seq {
		res := svc.ApplyControl(v, key, exampleNow)
		require.True(t, res.Authorized)
		assert.Equal(t, prev, res.Previous)
		prev = v
	}
	assert.False(t, state.IsEnabled())
}

func TestService_WhitelistAlwaysAllowed(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		svc := NewService(domain.DefaultConfig(), newFakeState(enabled), nil)
		assert.True(t, svc.ShouldAllow("/actuator/health").Allowed)
		assert.True(t, svc.ShouldAllow("/error").Allowed)
		assert.True(t, svc.ShouldAllow("/favicon.ico").Allowed)
	}
}

func TestService_MasterDisabledAllowsEverything(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Enabled = false
	svc := NewService(cfg, newFakeState(false), nil)

	for _, p := range []string{"/api/users", "/", "/anything/else", ""} {
		dec := svc.ShouldAllow(p)
		assert.True(t, dec.Allowed, p)
		assert.Equal(t, domain.ReasonInactive, dec.Reason)
	}
}

func TestService_EnabledAllowsNonWhitelisted(t *testing.T) {
	svc := NewService(domain.DefaultConfig(), newFakeState(true), nil)
	dec := svc.ShouldAllow("/api/users")
	assert.True(t, dec.Allowed)
	assert.Equal(t, domain.ReasonEnabled, dec.Reason)
	assert.NoError(t, dec.Err())
}

func TestService_FixedKeyMode(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.SecretKey = "mysecret"
	state := newFakeState(false)
	svc := NewService(cfg, state, nil)

	for _, at := range []time.Time{exampleNow, exampleNow.Add(13 * time.Hour)} {
		res := svc.ApplyControl(true, "mysecret", at)
		assert.True(t, res.Authorized)
		assert.True(t, res.Enabled)

		assert.False(t, svc.ApplyControl(false, "anything-else", at).Authorized)
		assert.False(t, svc.ApplyControl(false, DeriveKey(at), at).Authorized)
	}
	assert.True(t, state.IsEnabled())
}

func TestService_QueryStatusIsReadOnly(t *testing.T) {
	state := newFakeState(false)
	svc := NewService(domain.DefaultConfig(), state, nil)

	res := svc.QueryStatus(DeriveKey(exampleNow), exampleNow)
	require.True(t, res.Authorized)
	assert.False(t, res.Enabled)

	assert.False(t, svc.QueryStatus("000000", exampleNow).Authorized)
	assert.Equal(t, 0, state.sets)
}

func TestService_CustomControlPathStaysReachable(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ControlPath = "/ops/gate"
	cfg.WhitelistPaths = []string{"/health"}
	svc := NewService(cfg, newFakeState(false), nil)

	assert.True(t, svc.ShouldAllow("/ops/gate/true/431027").Allowed)
	assert.True(t, svc.ShouldAllow("/health").Allowed)
	assert.False(t, svc.ShouldAllow("/set-request/info").Allowed)

	assert.True(t, svc.IsControlPath("/ops/gate/info"))
	assert.False(t, svc.IsControlPath("/api/users"))
}

func TestService_FixedKeyIsTrimmed(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.SecretKey = " mysecret "
	svc := NewService(cfg, newFakeState(true), nil)

	assert.True(t, svc.ApplyControl(false, "mysecret", exampleNow).Authorized)
	assert.False(t, svc.ApplyControl(true, " mysecret ", exampleNow).Authorized)
}

func TestService_OldControlNamespaceClosedAfterPathChange(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ControlPath = "/ops/gate"
	svc := NewService(cfg, newFakeState(false), nil)

	assert.True(t, svc.ShouldAllow("/ops/gate/info").Allowed)
	assert.True(t, svc.ShouldAllow("/actuator/health").Allowed)
	assert.False(t, svc.ShouldAllow("/set-request/api/users").Allowed)
}
