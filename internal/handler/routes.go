package handler

import (
	"blood-request-routing/internal/middleware"
	"blood-request-routing/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the authenticated API on api
func RegisterRoutes(api *gin.RouterGroup, requests *BloodRequestHandler, stock *BloodStockHandler) {
	api.Use(middleware.AuthMiddleware())

	hospitalOrAdmin := middleware.RequireRole(models.RoleHospital, models.RoleSuperAdmin)
	bankOrAdmin := middleware.RequireRole(models.RoleBloodBank, models.RoleSuperAdmin)
	anyOrganization := middleware.RequireRole(models.RoleHospital, models.RoleBloodBank, models.RoleSuperAdmin)

	br := api.Group("/blood-requests")
	{
		br.POST("", hospitalOrAdmin, requests.CreateRequest)
		br.GET("/statistics", anyOrganization, requests.GetStatistics)
		br.GET("/response-time", bankOrAdmin, requests.GetAverageResponseTime)

		br.GET("/:id", requests.GetRequest)
		br.POST("/:id/accept", bankOrAdmin, requests.AcceptRequest)
		br.POST("/:id/reject", bankOrAdmin, requests.RejectRequest)
		br.POST("/:id/process", bankOrAdmin, requests.StartProcessing)
		br.POST("/:id/complete", bankOrAdmin, requests.CompleteRequest)
		br.POST("/:id/fulfill", bankOrAdmin, requests.FulfillRequest)
		br.POST("/:id/cancel", hospitalOrAdmin, requests.CancelRequest)
		br.POST("/:id/communications", requests.AddCommunication)
		br.POST("/:id/priority", requests.RecalculatePriority)

		// Admin-only routes
		br.GET("", middleware.RequireAdmin(), requests.ListAllRequests)
		br.GET("/critical", middleware.RequireAdmin(), requests.ListCriticalRequests)
		br.POST("/:id/approve", middleware.RequireAdmin(), requests.ApproveRequest)
		br.POST("/:id/assign", middleware.RequireAdmin(), requests.AssignBloodBank)
		br.DELETE("/:id", middleware.RequireAdmin(), requests.DeleteRequest)
		br.GET("/:id/audit", middleware.RequireAdmin(), requests.GetAuditTrail)
	}

	hospitals := api.Group("/hospitals/:id")
	hospitals.Use(middleware.CheckOrganizationAccess(models.OrganizationHospital))
	{
		hospitals.GET("/blood-requests", requests.ListHospitalRequests)
		hospitals.GET("/nearby-blood-banks", stock.NearbyBloodBanks)
	}

	banks := api.Group("/blood-banks/:id")
	banks.Use(middleware.CheckOrganizationAccess(models.OrganizationBloodBank))
	{
		banks.GET("/blood-requests", requests.ListBloodBankRequests)
		banks.GET("/stock", stock.GetStock)
		banks.PATCH("/stock", stock.UpdateStock)
	}

	api.GET("/blood-availability", stock.GetAvailability)
	api.GET("/priority/thresholds", stock.GetThresholds)
}
