package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dannygauntletai/autocrm/api"
	"github.com/dannygauntletai/autocrm/internal/handler"
)

func New(tickets *handler.TicketHandler, teams *handler.TeamHandler, inboundH *handler.InboundHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/tickets", tickets.Create)
		v1.GET("/tickets", tickets.List)
		v1.GET("/tickets/:id", tickets.Get)
		v1.PATCH("/tickets/:id", tickets.Update)
		v1.GET("/tickets/:id/comments", tickets.ListComments)
		v1.POST("/tickets/:id/comments", tickets.CreateComment)

		v1.POST("/public/tickets", tickets.CreatePublic)

		v1.POST("/teams", teams.Create)
		v1.GET("/teams", teams.List)
		v1.GET("/teams/:id", teams.Get)
		v1.PATCH("/teams/:id", teams.Update)
		v1.DELETE("/teams/:id", teams.Delete)
		v1.GET("/teams/:id/members", teams.ListMembers)
		v1.POST("/teams/:id/members", teams.AddMember)
		v1.DELETE("/teams/:id/members/:userID", teams.RemoveMember)
	}

	r.POST("/webhooks/email-reply", inboundH.HandleReply)
	r.OPTIONS("/webhooks/email-reply", inboundH.Preflight)

	return r
}
