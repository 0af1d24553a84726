package catalog

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	TokenAuthentication(context *gin.Context)
}

func Routes(r *gin.RouterGroup, authenticationMiddleware AuthenticationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)

	tokenAuthenticationRouter.GET("/viewservices", handler.FindAllServices)
	tokenAuthenticationRouter.GET("/viewservices/:name", handler.FindService)
	tokenAuthenticationRouter.GET("/views", handler.FindAllViews)
	tokenAuthenticationRouter.GET("/views/:name", handler.FindView)
}
