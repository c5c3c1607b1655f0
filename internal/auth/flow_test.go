package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleekspace/storefront/internal/notify"
	"github.com/sleekspace/storefront/internal/obs"
)

func newFlow(t *testing.T, sender notify.Sender) *Flow {
	t.Helper()
	obs.InitLogger()
	return New(sender)
}

func fillSignUp(t *testing.T, f *Flow, username, email, password, confirm string) {
	t.Helper()
	require.NoError(t, f.SetSignUpField("username", username))
	require.NoError(t, f.SetSignUpField("email", email))
	require.NoError(t, f.SetSignUpField("password", password))
	require.NoError(t, f.SetSignUpField("confirm_password", confirm))
}

func drain(t *testing.T, f *Flow) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.True(t, f.DrainUntil(ctx), "drain timeout")
}

func TestPasswordMismatchNeverInvokesSender(t *testing.T) {
	var calls atomic.Int64
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		calls.Add(1)
		return nil
	}))
	fillSignUp(t, f, "a", "a@example.com", "p", "other")

	err := f.SubmitSignUp(context.Background(), nil)
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, int64(0), calls.Load())
	assert.False(t, f.SignedUp())
	assert.Equal(t, "Passwords do not match", f.ErrorMessage())
	_, ok := f.Credentials()
	assert.False(t, ok, "credential record must stay untouched")
}

func TestSignUpSuccessStoresCredentials(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		assert.Equal(t, "a", p.Username)
		assert.Equal(t, "a@example.com", p.Email)
		assert.Equal(t, "p", p.Password)
		return nil
	}))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")

	resolved := make(chan error, 1)
	require.NoError(t, f.SubmitSignUp(context.Background(), func(err error) { resolved <- err }))

	select {
	case err := <-resolved:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("sign-up did not resolve")
	}

	assert.True(t, f.SignedUp())
	assert.Equal(t, PhaseSignedUp, f.Phase())
	assert.Empty(t, f.ErrorMessage())
	rec, ok := f.Credentials()
	require.True(t, ok)
	assert.Equal(t, "a", rec.Username)
	assert.Equal(t, "p", rec.Password)

	// The buffer is intentionally kept after success.
	assert.Equal(t, "a", f.SignUpForm().Username)
	assert.Equal(t, "p", f.SignUpForm().Password)
}

func TestSenderFailureSetsErrorAndKeepsState(t *testing.T) {
	fail := errors.New("provider down")
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		return fail
	}))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")

	resolved := make(chan error, 1)
	require.NoError(t, f.SubmitSignUp(context.Background(), func(err error) { resolved <- err }))

	select {
	case err := <-resolved:
		require.ErrorIs(t, err, ErrEmailSendFailed)
	case <-time.After(3 * time.Second):
		t.Fatal("sign-up did not resolve")
	}

	assert.False(t, f.SignedUp())
	assert.Equal(t, PhaseIdle, f.Phase())
	assert.Equal(t, "Failed to send confirmation email", f.ErrorMessage())
	_, ok := f.Credentials()
	assert.False(t, ok)
}

func TestSenderFailureKeepsPriorCredentials(t *testing.T) {
	var fail atomic.Bool
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		if fail.Load() {
			return errors.New("provider down")
		}
		return nil
	}))

	fillSignUp(t, f, "a", "a@example.com", "p", "p")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	drain(t, f)
	require.True(t, f.SignedUp())

	fail.Store(true)
	fillSignUp(t, f, "b", "b@example.com", "q", "q")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	drain(t, f)

	// Prior record survives a failed later sign-up, as does the flag.
	assert.True(t, f.SignedUp())
	rec, ok := f.Credentials()
	require.True(t, ok)
	assert.Equal(t, "a", rec.Username)
	assert.Equal(t, "Failed to send confirmation email", f.ErrorMessage())
}

func TestSecondSignUpOverwritesCredentialSlot(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error { return nil }))

	fillSignUp(t, f, "a", "a@example.com", "p", "p")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	drain(t, f)

	fillSignUp(t, f, "b", "b@example.com", "q", "q")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	drain(t, f)

	rec, ok := f.Credentials()
	require.True(t, ok)
	assert.Equal(t, "b", rec.Username)

	require.NoError(t, f.SetLoginField("username", "a"))
	require.NoError(t, f.SetLoginField("password", "p"))
	assert.ErrorIs(t, f.SubmitLogin(), ErrAuthenticationFailed)
}

func TestLoginMatchesStoredRecord(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error { return nil }))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	drain(t, f)

	require.NoError(t, f.SetLoginField("username", "a"))
	require.NoError(t, f.SetLoginField("password", "p"))
	require.NoError(t, f.SubmitLogin())
	assert.Empty(t, f.ErrorMessage())

	require.NoError(t, f.SetLoginField("password", "wrong"))
	err := f.SubmitLogin()
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, "Authentication Failed, cannot Login", f.ErrorMessage())
}

func TestLoginBeforeAnySignUpFails(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error { return nil }))
	assert.ErrorIs(t, f.SubmitLogin(), ErrAuthenticationFailed)
}

func TestLoginSuccessClearsSharedErrorSlot(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error { return nil }))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	drain(t, f)

	// Set the slot via a mismatch, then clear it via a successful login.
	require.NoError(t, f.SetSignUpField("confirm_password", "nope"))
	require.ErrorIs(t, f.SubmitSignUp(context.Background(), nil), ErrPasswordMismatch)
	require.NotEmpty(t, f.ErrorMessage())

	require.NoError(t, f.SetLoginField("username", "a"))
	require.NoError(t, f.SetLoginField("password", "p"))
	require.NoError(t, f.SubmitLogin())
	assert.Empty(t, f.ErrorMessage())
}

func TestUnknownFieldRejected(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error { return nil }))
	assert.ErrorIs(t, f.SetSignUpField("nickname", "x"), ErrUnknownField)
	assert.ErrorIs(t, f.SetLoginField("email", "x"), ErrUnknownField)
}

func TestPendingPhaseWhileSendInFlight(t *testing.T) {
	release := make(chan struct{})
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		<-release
		return nil
	}))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))

	assert.Equal(t, PhasePending, f.Phase())
	assert.Equal(t, 1, f.PendingSends())

	// A second submission while pending is allowed, matching the source.
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))
	assert.Equal(t, 2, f.PendingSends())

	close(release)
	drain(t, f)
	assert.Equal(t, PhaseSignedUp, f.Phase())
}

func TestSignUpSurvivesCallerContextCancel(t *testing.T) {
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	}))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")

	// Cancel the submitting context right away, as net/http does once the
	// handler has written its response.
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.SubmitSignUp(ctx, nil))
	cancel()

	drain(t, f)
	assert.True(t, f.SignedUp())
	assert.Empty(t, f.ErrorMessage())
	rec, ok := f.Credentials()
	require.True(t, ok)
	assert.Equal(t, "a", rec.Username)
}

func TestDrainUntilTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := newFlow(t, notify.SenderFunc(func(ctx context.Context, p notify.Params) error {
		<-release
		return nil
	}))
	fillSignUp(t, f, "a", "a@example.com", "p", "p")
	require.NoError(t, f.SubmitSignUp(context.Background(), nil))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.False(t, f.DrainUntil(ctx))
}
