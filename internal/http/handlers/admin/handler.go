package admin

import (
	handlershared "github.com/averoza/marketplace/internal/http/handlers/shared"
	"github.com/averoza/marketplace/internal/provider"
	"github.com/averoza/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler back-office API entry point
type Handler struct {
	*provider.Container
}

// New creates the admin handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getActor(c *gin.Context) (service.Actor, bool) {
	uid, ok := handlershared.GetContextUint(c, "user_id")
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID: uid,
		Role:   handlershared.GetContextString(c, "user_role"),
	}, true
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
