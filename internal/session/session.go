// Package session composes the storefront stores behind one serialized
// event surface: each operation runs to completion under the session
// mutex, mirroring a single-threaded event loop. The confirmation-email
// send is the only operation that resolves outside the lock and re-enters
// to publish its outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sleekspace/storefront/internal/auth"
	"github.com/sleekspace/storefront/internal/cart"
	"github.com/sleekspace/storefront/internal/catalog"
	"github.com/sleekspace/storefront/internal/model"
	"github.com/sleekspace/storefront/internal/review"
	"github.com/sleekspace/storefront/internal/showcase"
)

var (
	// ErrUnknownProduct is returned for an add-to-cart with an id the
	// catalog does not know.
	ErrUnknownProduct = errors.New("session: unknown product")
	// ErrNoticePending is returned while a blocking validation notice has
	// not been acknowledged yet.
	ErrNoticePending = errors.New("session: notice must be acknowledged first")
)

// Notice shown when a review submission fails validation. It blocks
// further review submissions until acknowledged.
const reviewNotice = "Please provide a rating and a review."

// Session is the single visitor session: catalog view, cart, reviews,
// auth flow, rotating display, and the UI flags.
type Session struct {
	mu sync.Mutex

	catalog *catalog.Store
	cart    *cart.Ledger
	board   *review.Board
	flow    *auth.Flow
	rotator *showcase.Rotator

	query string
	view  []model.Product

	// The modal flags are deliberately independent booleans; nothing
	// enforces that only one modal is open at a time.
	loginModalOpen  bool
	signUpModalOpen bool
	signedUp        bool

	notice string
}

// New wires a Session over the given stores. The initial view is the
// full catalog.
func New(cat *catalog.Store, ld *cart.Ledger, b *review.Board, f *auth.Flow, rot *showcase.Rotator) *Session {
	return &Session{
		catalog: cat,
		cart:    ld,
		board:   b,
		flow:    f,
		rotator: rot,
		view:    cat.Products(),
	}
}

// Search replaces the visible product list with the filter result and
// returns it. An empty result is valid and renders as an empty list.
func (s *Session) Search(query string) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.view = s.catalog.Filter(query)
	return s.copyView()
}

// View returns the currently visible product list.
func (s *Session) View() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyView()
}

func (s *Session) copyView() []model.Product {
	out := make([]model.Product, len(s.view))
	copy(out, s.view)
	return out
}

// AddToCart appends the catalog product with the given id to the cart and
// returns the new count.
func (s *Session) AddToCart(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.catalog.Get(id)
	if !ok {
		return s.cart.Count(), fmt.Errorf("%w: %d", ErrUnknownProduct, id)
	}
	s.cart.Add(p)
	return s.cart.Count(), nil
}

// CartItems returns the cart contents in insertion order.
func (s *Session) CartItems() []model.Product {
	return s.cart.Items()
}

// SubmitReview validates and stores a review. A validation failure raises
// the blocking notice; while the notice stands, further submissions are
// rejected with ErrNoticePending until AcknowledgeNotice is called.
func (s *Session) SubmitReview(rating int, comment string) (model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice != "" {
		return model.Review{}, ErrNoticePending
	}
	r, err := s.board.Submit(rating, comment)
	if err != nil {
		s.notice = reviewNotice
		return model.Review{}, err
	}
	return r, nil
}

// Reviews returns the stored reviews in submission order.
func (s *Session) Reviews() []model.Review {
	return s.board.Reviews()
}

// Notice returns the pending blocking notice, empty when none.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// AcknowledgeNotice clears the blocking notice.
func (s *Session) AcknowledgeNotice() {
	s.mu.Lock()
	s.notice = ""
	s.mu.Unlock()
}

// OpenLogin opens the login modal.
func (s *Session) OpenLogin() {
	s.mu.Lock()
	s.loginModalOpen = true
	s.mu.Unlock()
}

// CloseLogin closes the login modal.
func (s *Session) CloseLogin() {
	s.mu.Lock()
	s.loginModalOpen = false
	s.mu.Unlock()
}

// OpenSignUp opens the sign-up modal.
func (s *Session) OpenSignUp() {
	s.mu.Lock()
	s.signUpModalOpen = true
	s.mu.Unlock()
}

// CloseSignUp closes the sign-up modal.
func (s *Session) CloseSignUp() {
	s.mu.Lock()
	s.signUpModalOpen = false
	s.mu.Unlock()
}

// SetSignUpField writes one field of the sign-up buffer.
func (s *Session) SetSignUpField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.SetSignUpField(field, value)
}

// SetLoginField writes one field of the login buffer.
func (s *Session) SetLoginField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.SetLoginField(field, value)
}

// SubmitSignUp validates the buffer and starts the confirmation send. On
// async success the sign-up modal closes and the sign-up affordance is
// hidden; on failure the modal stays open with the in-form error.
func (s *Session) SubmitSignUp(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.SubmitSignUp(ctx, func(err error) {
		if err != nil {
			return
		}
		s.mu.Lock()
		s.signedUp = true
		s.signUpModalOpen = false
		s.mu.Unlock()
	})
}

// SubmitLogin compares the login buffer against the stored credentials.
// Success closes the login modal; failure keeps it open with the in-form
// error.
func (s *Session) SubmitLogin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flow.SubmitLogin(); err != nil {
		return err
	}
	s.loginModalOpen = false
	return nil
}

// Rotator exposes the rotating display collaborator.
func (s *Session) Rotator() *showcase.Rotator {
	return s.rotator
}

// PendingSignUps returns the number of unresolved confirmation sends.
func (s *Session) PendingSignUps() int {
	return s.flow.PendingSends()
}

// DrainUntil waits for in-flight confirmation sends, for shutdown.
func (s *Session) DrainUntil(ctx context.Context) bool {
	return s.flow.DrainUntil(ctx)
}

// Snapshot is the render model of the session.
type Snapshot struct {
	Query            string          `json:"query"`
	Products         []model.Product `json:"products"`
	CartCount        int             `json:"cart_count"`
	ReviewCount      int             `json:"review_count"`
	LoginModalOpen   bool            `json:"login_modal_open"`
	SignUpModalOpen  bool            `json:"sign_up_modal_open"`
	SignedUp         bool            `json:"signed_up"`
	ShowSignUpButton bool            `json:"show_sign_up_button"`
	AuthError        string          `json:"auth_error,omitempty"`
	Notice           string          `json:"notice,omitempty"`
	PendingSignUps   int             `json:"pending_sign_ups"`
}

// Snapshot returns a consistent copy of the renderable state. The header
// hides the sign-up affordance once SignedUp is true.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Query:            s.query,
		Products:         s.copyView(),
		CartCount:        s.cart.Count(),
		ReviewCount:      s.board.Count(),
		LoginModalOpen:   s.loginModalOpen,
		SignUpModalOpen:  s.signUpModalOpen,
		SignedUp:         s.signedUp,
		ShowSignUpButton: !s.signedUp,
		AuthError:        s.flow.ErrorMessage(),
		Notice:           s.notice,
		PendingSignUps:   s.flow.PendingSends(),
	}
}
