package v1

import (
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(protected *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := protected.Group("/users")
	{
		users.GET("/profile", handler.GetProfile)
		users.GET("/me", handler.GetProfile)
		users.PUT("/profile", handler.UpdateProfile)
		users.POST("/change-password", handler.ChangePassword)
	}
}

// GetProfile godoc
// @Summary      Get Profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userUC.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile godoc
// @Summary      Update Profile
// @Description  Update name, email and contact details. An email used by another account is rejected.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      domain.UpdateProfileRequest  true  "Profile"
// @Success      200      {object}  response.Response{data=domain.User}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userUC.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", user)
}

// ChangePassword godoc
// @Summary      Change Password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        password  body      domain.ChangePasswordRequest  true  "Passwords"
// @Success      200       {object}  response.Response
// @Failure      400       {object}  response.Response
// @Router       /users/change-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req domain.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userUC.ChangePassword(c.Request.Context(), currentUserID(c), req); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}
