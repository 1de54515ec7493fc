package session

import (
	"context"

	"github.com/go-matchmaker/internal/domain"
)

// Context is the authentication binding of one request. The transport layer
// restores it from the client's cookie, hands it to the services that may
// change it, and persists it again when Changed reports true.
type Context struct {
	userID  string
	changed bool
}

// New returns a Context bound to userID. An empty userID yields an
// unauthenticated context.
func New(userID string) *Context {
	return &Context{userID: userID}
}

// Establish binds the context to userID.
func (c *Context) Establish(userID string) {
	c.userID = userID
	c.changed = true
}

// CurrentUser returns the bound user id or ErrUnauthenticated.
func (c *Context) CurrentUser() (string, error) {
	if c == nil || c.userID == "" {
		return "", domain.ErrUnauthenticated
	}
	return c.userID, nil
}

// Teardown clears the binding.
func (c *Context) Teardown() {
	c.userID = ""
	c.changed = true
}

// Changed reports whether Establish or Teardown ran since the context was
// restored.
func (c *Context) Changed() bool { return c.changed }

type ctxKey struct{}

// WithContext attaches sc to ctx.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext returns the Context attached to ctx, or a fresh
// unauthenticated one when none is attached.
func FromContext(ctx context.Context) *Context {
	if sc, ok := ctx.Value(ctxKey{}).(*Context); ok && sc != nil {
		return sc
	}
	return New("")
}
