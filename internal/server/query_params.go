package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
)

func pathID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// parseAudience defaults to the sales person schedule, the one invoices use.
func parseAudience(value string) discountdomain.Audience {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return discountdomain.AudienceSalesPerson
	}
	return discountdomain.Audience(trimmed)
}

// bindJSON reports validator failures field by field and everything else as
// a malformed request.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if vErr := fromValidator(err); vErr != nil {
			AbortWithError(c, vErr)
			return false
		}
		AbortWithError(c, invalidRequestError())
		return false
	}
	return true
}
