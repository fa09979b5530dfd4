package web

import (
	"net/http"

	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/web/common"
	"axiapac.com/selfservice/web/middlewares"
	"github.com/gin-gonic/gin"
)

func NewRouter(b *Backend) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.Logging(b.Logger), b.count, b.Faults.Handler())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST(v1.PathLogin, b.login)

	protected := r.Group("")
	protected.Use(middlewares.Authentication(b.Secret, b.isRevoked))
	{
		protected.POST(v1.PathLogout, b.logout)
		protected.POST(v1.PathChangePassword, b.changePassword)

		protected.POST(v1.PathCheckIn, b.checkIn)
		protected.POST(v1.PathCheckOut, b.checkOut)
		protected.GET(v1.PathAttendanceToday, b.statusToday)

		protected.GET(v1.PathLeaveRequests, b.listLeave)
		protected.POST(v1.PathLeaveRequests, b.createLeave)
		protected.DELETE(v1.PathLeaveRequests+"/:id", b.deleteLeave)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Not found"))
	})
	return r
}

func (b *Backend) count(c *gin.Context) {
	b.mu.Lock()
	b.hits[c.Request.URL.Path]++
	b.mu.Unlock()
	c.Next()
}

// bindError answers a failed bind: 422 with an errors map for field
// failures, 400 otherwise.
func bindError(c *gin.Context, err error) {
	if fe := common.BindingFieldErrors(err); !fe.Empty() {
		c.JSON(http.StatusUnprocessableEntity, common.NewValidationResponse(fe))
		return
	}
	c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
}

func fieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusUnprocessableEntity, common.NewValidationResponse(common.NewFieldErrors().Add(field, message)))
}

func userID(c *gin.Context) (int64, bool) {
	claims := middlewares.Claims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthenticated."))
		return 0, false
	}
	id, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthenticated."))
		return 0, false
	}
	return id, true
}
