package web

import (
	"net/http"

	"axiapac.com/selfservice/security"
	apicommon "axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/web/common"
	"axiapac.com/selfservice/web/middlewares"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordForm struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (b *Backend) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}

	b.mu.Lock()
	acc := b.accountByEmail(form.Email)
	var user apicommon.User
	var hash []byte
	if acc != nil {
		user, hash = acc.User, acc.hash
	}
	b.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword(hash, []byte(form.Password)) != nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid credentials"))
		return
	}

	token, err := security.CreateAccessToken(&security.Identity{UserID: user.ID, Email: user.Email}, b.Secret, b.TokenTTL)
	if err != nil {
		b.Logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Could not create token"))
		return
	}

	c.JSON(http.StatusOK, apicommon.LoginResponse{
		Success:     true,
		Message:     "Login successful",
		AccessToken: token,
		TokenType:   "Bearer",
		User:        &user,
	})
}

func (b *Backend) logout(c *gin.Context) {
	claims := middlewares.Claims(c)
	b.mu.Lock()
	b.revoked[claims.ID] = true
	b.mu.Unlock()
	c.JSON(http.StatusOK, common.NewSuccessResponse("Logged out", nil))
}

func (b *Backend) changePassword(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var form changePasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}

	b.mu.Lock()
	acc := b.users[id]
	var hash []byte
	if acc != nil {
		hash = acc.hash
	}
	b.mu.Unlock()
	if acc == nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthenticated."))
		return
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(form.OldPassword)) != nil {
		fieldError(c, "old_password", "The old password is incorrect.")
		return
	}
	if form.OldPassword == form.NewPassword {
		fieldError(c, "new_password", "The new password must be different from the old password.")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(form.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Could not change password"))
		return
	}
	b.mu.Lock()
	acc.hash = newHash
	b.mu.Unlock()

	c.JSON(http.StatusOK, common.NewSuccessResponse("Password changed", nil))
}
