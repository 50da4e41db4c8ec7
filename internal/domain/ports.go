package domain

import "context"

// Gateway is the boundary to the remote brain service. Every method makes
// exactly one request; failures are returned as errors with the service's
// message folded in when one was present.
type Gateway interface {
	// SignUp registers a new account.
	SignUp(ctx context.Context, username, password string) error

	// SignIn authenticates and persists the returned credential into the
	// token store.
	SignIn(ctx context.Context, username, password string) error

	// ListContent retrieves the full collection in the service's display
	// order.
	ListContent(ctx context.Context) ([]ContentItem, error)

	// CreateContent saves a new item. Tags are passed as a single
	// comma-joined string, the service's expected encoding.
	CreateContent(ctx context.Context, title, url string, kind Kind, tags string) error

	// DeleteContent removes the item with the given ID.
	DeleteContent(ctx context.Context, id string) error

	// ListTags retrieves all tag names known for the signed-in user.
	ListTags(ctx context.Context) ([]string, error)

	// EnableSharing turns on the public view and returns its share token.
	EnableSharing(ctx context.Context) (string, error)

	// DisableSharing turns off the public view.
	DisableSharing(ctx context.Context) error

	// SharedCollection fetches another user's shared collection by token.
	// No credential is attached.
	SharedCollection(ctx context.Context, token string) ([]ContentItem, error)
}

// TokenStore persists the single session credential. An empty token with a
// nil error means no session exists.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
