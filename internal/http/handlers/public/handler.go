package public

import "github.com/averoza/marketplace/internal/provider"

// Handler storefront and account API entry point
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
