package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/session", handler.GetSession)
		api.POST("/session/login", handler.Login)
		api.POST("/session/register", handler.Register)
		api.DELETE("/session", handler.Logout)
		api.PUT("/session/profile", handler.UpdateProfile)
		api.POST("/session/password", handler.ChangePassword)

		api.GET("/properties", handler.GetProperties)
		api.PUT("/search", handler.UpdateSearch)
		api.GET("/properties/:id", handler.GetProperty)
		api.GET("/properties/:id/forecast", handler.GetForecast)
		api.POST("/properties", handler.CreateProperty)
		api.PUT("/properties/:id", handler.UpdateProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
		api.GET("/my-properties", handler.MyProperties)

		api.POST("/enquiries", handler.CreateEnquiry)
		api.GET("/enquiries", handler.OwnerEnquiries)
		api.PATCH("/enquiries/:id/status", handler.UpdateEnquiryStatus)

		api.GET("/admin/stats", handler.AdminStats)
		api.GET("/admin/users", handler.AdminUsers)
		api.PATCH("/admin/users/:id/role", handler.UpdateUserRole)
	}
}
