// Package model defines domain types used by the storefront session.
package model

// Product is a single catalog item. Products are immutable once the
// catalog is initialized; other packages hold references, never copies
// with diverging identity.
type Product struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ImageRef    string `json:"image_ref" yaml:"image"`
}

// Review is a validated star rating plus free-text comment. Reviews are
// never mutated or deleted once stored.
type Review struct {
	ID      string `json:"id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CredentialRecord holds the credentials captured by the last successful
// sign-up. Exactly one record exists at a time; a later successful
// sign-up overwrites it.
type CredentialRecord struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
}

// SignUpForm is the sign-up modal's input buffer. It is deliberately not
// cleared after a successful sign-up, so the modal re-opens pre-filled.
type SignUpForm struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginForm is the login modal's input buffer.
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Slide is one entry of the rotating display.
type Slide struct {
	ImageRef string `json:"image_ref"`
	Caption  string `json:"caption"`
}
