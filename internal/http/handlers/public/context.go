package public

import (
	handlershared "github.com/averoza/marketplace/internal/http/handlers/shared"
	"github.com/averoza/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getActor(c *gin.Context) (service.Actor, bool) {
	uid, ok := getUserID(c)
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
