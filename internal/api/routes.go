package api

import (
	"immofds/server/internal/auth"
	"immofds/server/internal/models"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func SetupRoutes(router *gin.Engine, h *Handler) {
	router.Use(h.Recovery(), RequestLogger(h.logger), h.metrics.Middleware(), cors.New(corsConfig(h.cfg.Server.AllowedOrigins)))
	router.MaxMultipartMemory = h.cfg.Listings.MaxImageBytes + 1<<20

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.Health)
	if h.metrics != nil {
		v1.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	public := v1.Group("/public")
	{
		public.GET("/properties", h.SearchPublicProperties)
		public.GET("/properties/types", h.GetPropertyTypes)
		public.GET("/properties/transaction-types", h.GetTransactionTypes)
		public.GET("/properties/provinces", h.GetProvinces)
		public.GET("/properties/energy-ratings", h.GetEnergyRatings)
		public.GET("/properties/map", h.GetPropertyMap)
		public.GET("/properties/:reference", h.GetPublicProperty)
		public.GET("/properties/:reference/images/:imageId", h.GetPublicImage)

		public.POST("/contacts/general", h.SubmitGeneralContact)
		public.POST("/contacts/sell-your-home", h.SubmitSellYourHome)
		public.POST("/contacts/visit-request", h.SubmitVisitRequest)
	}

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}

	admin := v1.Group("/admin", auth.RequireAuth(h.auth.Tokens(), h.respondError))
	{
		admin.GET("/properties", h.SearchProperties)
		admin.POST("/properties", h.CreateProperty)
		admin.GET("/properties/stats", h.GetPropertyStats)
		admin.GET("/properties/:reference", h.GetProperty)
		admin.PUT("/properties/:reference", h.UpdateProperty)
		admin.DELETE("/properties/:reference", h.DeleteProperty)
		admin.PATCH("/properties/:reference/status", h.ChangePropertyStatus)

		admin.GET("/properties/:reference/images", h.ListImages)
		admin.POST("/properties/:reference/images", h.UploadImage)
		admin.PUT("/properties/:reference/images/reorder", h.ReorderImages)
		admin.GET("/properties/:reference/images/:imageId", h.GetImage)
		admin.PATCH("/properties/:reference/images/:imageId/primary", h.SetPrimaryImage)
		admin.DELETE("/properties/:reference/images/:imageId", h.DeleteImage)

		admin.GET("/contacts", h.ListContacts)
		admin.GET("/contacts/:id", h.GetContact)
		admin.DELETE("/contacts/:id", h.DeleteContact)
		admin.PATCH("/contacts/:id/status", h.UpdateContactStatus)
		admin.POST("/contacts/:id/notes", h.AddContactNote)
		admin.PATCH("/contacts/:id/notes/:noteId", h.UpdateContactNote)
		admin.DELETE("/contacts/:id/notes/:noteId", h.DeleteContactNote)
	}

	users := admin.Group("/users", auth.RequireRole(h.respondError, models.RoleSuperAdmin))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}
