package domain

import "time"

// Identity is a registered account as held by the credential store
type Identity struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	ProfileImageRef string    `json:"profileImageRef,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewIdentity holds the fields needed to create an account
type NewIdentity struct {
	Email           string
	Username        string
	PasswordHash    string
	ProfileImageRef string
}

// IdentityPatch is a partial update; nil fields are left unchanged
type IdentityPatch struct {
	Email           *string
	Username        *string
	PasswordHash    *string
	ProfileImageRef *string
}

// IsEmpty reports whether the patch changes nothing
func (p IdentityPatch) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.PasswordHash == nil && p.ProfileImageRef == nil
}

// CallerIdentity is the verified caller attached to a request context
// once the authorization guard has resolved a live Identity.
type CallerIdentity struct {
	ID int64 `json:"id"`
}

// SignUpRequest is the body of POST /user/sign-up
type SignUpRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ProfileImageRef string `json:"profileImageRef"`
}

// SignInRequest is the body of POST /user/sign-in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateAccountRequest is the body of PATCH /user/{id}
type UpdateAccountRequest struct {
	Email           *string `json:"email,omitempty"`
	Username        *string `json:"username,omitempty"`
	ProfileImageRef *string `json:"profileImageRef,omitempty"`
}

// SignInResult carries the authenticated identity and its freshly issued token
type SignInResult struct {
	Identity *Identity `json:"user"`
	Token    string    `json:"accessToken"`
}
