// Package auth implements the local sign-up/login state machine: two form
// buffers, a single overwritable credential record, and one shared error
// slot. Credential comparison is plain field equality; this is not a
// security mechanism.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sleekspace/storefront/internal/model"
	"github.com/sleekspace/storefront/internal/notify"
	"github.com/sleekspace/storefront/internal/obs"
)

// Phase tracks where the sign-up flow is. Pending is modeled explicitly,
// but resubmission while pending is still allowed.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSignedUp
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSignedUp:
		return "signed_up"
	default:
		return "idle"
	}
}

// Auth failures. All are local and recoverable: they populate the shared
// in-form error slot and are never retried automatically.
var (
	ErrPasswordMismatch     = errors.New("auth: passwords do not match")
	ErrEmailSendFailed      = errors.New("auth: failed to send confirmation email")
	ErrAuthenticationFailed = errors.New("auth: authentication failed")
	ErrUnknownField         = errors.New("auth: unknown form field")
)

// In-form messages for the shared error slot.
const (
	msgPasswordMismatch = "Passwords do not match"
	msgEmailSendFailed  = "Failed to send confirmation email"
	msgAuthFailed       = "Authentication Failed, cannot Login"
)

// Flow owns the sign-up and login buffers, the stored credential record,
// and the shared error slot. The confirmation-email send is the flow's
// only asynchronous boundary.
type Flow struct {
	sender notify.Sender

	mu        sync.Mutex
	signUp    model.SignUpForm
	login     model.LoginForm
	stored    model.CredentialRecord
	hasStored bool
	errMsg    string
	phase     Phase
	pending   int
}

// New creates a Flow that delivers confirmations through sender.
func New(sender notify.Sender) *Flow {
	return &Flow{sender: sender}
}

// SetSignUpField writes one field of the sign-up buffer. No validation
// happens until submission.
func (f *Flow) SetSignUpField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case "username":
		f.signUp.Username = value
	case "email":
		f.signUp.Email = value
	case "password":
		f.signUp.Password = value
	case "confirm_password":
		f.signUp.ConfirmPassword = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetLoginField writes one field of the login buffer.
func (f *Flow) SetLoginField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case "username":
		f.login.Username = value
	case "password":
		f.login.Password = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SignUpForm returns the current sign-up buffer. The buffer is kept after
// a successful sign-up.
func (f *Flow) SignUpForm() model.SignUpForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signUp
}

// LoginForm returns the current login buffer.
func (f *Flow) LoginForm() model.LoginForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.login
}

// ErrorMessage returns the shared in-form error message, empty when the
// last action of either form succeeded.
func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Phase returns the sign-up phase.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// SignedUp reports whether a sign-up has completed successfully.
func (f *Flow) SignedUp() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase == PhaseSignedUp
}

// Credentials returns the stored credential record, if any.
func (f *Flow) Credentials() (model.CredentialRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored, f.hasStored
}

// SubmitSignUp validates the sign-up buffer and starts the confirmation
// send. A password/confirm mismatch fails synchronously: the sender is
// not invoked and the credential record is untouched. Otherwise the send
// resolves in the background; on success the error slot is cleared, the
// credential record is overwritten from the buffer, and the phase becomes
// SignedUp. On failure the error slot is set and nothing else changes.
// onResolved, if non-nil, runs after the flow has applied the outcome.
//
// Concurrent submissions are not deduplicated.
func (f *Flow) SubmitSignUp(ctx context.Context, onResolved func(error)) error {
	f.mu.Lock()
	form := f.signUp
	if form.Password != form.ConfirmPassword {
		f.errMsg = msgPasswordMismatch
		f.mu.Unlock()
		return ErrPasswordMismatch
	}
	if f.phase != PhaseSignedUp {
		f.phase = PhasePending
	}
	f.pending++
	f.mu.Unlock()

	// The send outlives the submitting call: ctx values (request id) are
	// kept, its cancellation is not. Only the sender's own timeout bounds
	// the resolution.
	sctx := context.WithoutCancel(ctx)
	go func() {
		sendErr := f.sender.Send(sctx, notify.Params{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
		})
		var rerr error
		if sendErr != nil {
			rerr = fmt.Errorf("%w: %v", ErrEmailSendFailed, sendErr)
		}
		f.resolve(form, rerr)
		if onResolved != nil {
			onResolved(rerr)
		}
	}()
	return nil
}

// resolve applies the outcome of one confirmation send.
func (f *Flow) resolve(form model.SignUpForm, rerr error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending--
	if rerr != nil {
		obs.Logger.Error("confirmation_email_failed", "error", rerr, "username", form.Username)
		f.errMsg = msgEmailSendFailed
		if f.phase != PhaseSignedUp && f.pending == 0 {
			f.phase = PhaseIdle
		}
		return
	}
	f.errMsg = ""
	f.stored = model.CredentialRecord{
		Username:        form.Username,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	}
	f.hasStored = true
	f.phase = PhaseSignedUp
	obs.Logger.Info("sign_up_confirmed", "username", form.Username)
}

// SubmitLogin compares the login buffer against the stored credential
// record, field for field. A match clears the error slot; there is no
// logged-in flag to set. A mismatch, or a login before any successful
// sign-up, fails with ErrAuthenticationFailed.
func (f *Flow) SubmitLogin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasStored && f.login.Username == f.stored.Username && f.login.Password == f.stored.Password {
		f.errMsg = ""
		return nil
	}
	f.errMsg = msgAuthFailed
	return ErrAuthenticationFailed
}

// PendingSends returns the number of unresolved confirmation sends.
func (f *Flow) PendingSends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// DrainUntil blocks until all pending sends resolved or ctx is done.
func (f *Flow) DrainUntil(ctx context.Context) bool {
	for {
		if f.PendingSends() == 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
