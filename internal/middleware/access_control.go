package middleware

import (
	"net/http"
	"strconv"

	"blood-request-routing/internal/models"
	"blood-request-routing/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CheckOrganizationAccess verifies the caller acts for the organization in the :id path parameter.
// Super admins pass; users of another organization type are refused.
func CheckOrganizationAccess(orgType models.OrganizationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User role not found")
			c.Abort()
			return
		}

		// Admin users have access to all organizations
		if role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		if role != roleFor(orgType) {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied for role "+role.(string))
			c.Abort()
			return
		}

		orgID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid organization ID")
			c.Abort()
			return
		}

		own, _ := c.Get(ContextOrganizationID)
		if own != uint(orgID) {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you don't have permission to access this organization")
			c.Abort()
			return
		}

		c.Next()
	}
}

func roleFor(orgType models.OrganizationType) string {
	switch orgType {
	case models.OrganizationHospital:
		return models.RoleHospital
	case models.OrganizationBloodBank:
		return models.RoleBloodBank
	}
	return ""
}
