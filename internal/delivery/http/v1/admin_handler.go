package v1

import (
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

// NewAdminHandler registers the admin panel routes. The group is expected
// to be guarded by an admin role check.
func NewAdminHandler(admin *gin.RouterGroup, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	// Dashboard stats
	admin.GET("/stats", handler.GetStats)

	// User management
	admin.GET("/users", handler.ListUsers)
	admin.GET("/users/export", handler.ExportUsers)
	admin.GET("/users/:id", handler.GetUser)
	admin.PATCH("/users/:id/toggle-status", handler.ToggleUserStatus)

	// Contact messages
	admin.GET("/messages", handler.ListMessages)
	admin.PATCH("/messages/:id/toggle-replied", handler.ToggleMessageReplied)
	admin.DELETE("/messages/:id", handler.DeleteMessage)
}

// GetStats godoc
// @Summary      Get admin dashboard statistics
// @Description  Counts of users, active users, applications by status, companies and unreplied messages
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.AdminStats}
// @Failure      403  {object}  response.Response
// @Router       /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminUC.GetStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard statistics", stats)
}

// ListUsers godoc
// @Summary      List all users
// @Description  Paginated users sorted by name, with an optional email filter
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        email  query     string  false  "Email contains (case-insensitive)"
// @Param        page   query     int     false  "Page (1-based)"
// @Param        size   query     int     false  "Items per page (default 10)"
// @Success      200    {object}  response.Response{data=domain.PaginatedResult[domain.User]}
// @Failure      403    {object}  response.Response
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, size := pageParams(c)

	result, err := h.adminUC.ListUsers(c.Request.Context(), c.Query("email"), page, size)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users list", result)
}

// GetUser godoc
// @Summary      Get user detail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.AdminUserDetail}
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminUC.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User detail", user)
}

// ToggleUserStatus godoc
// @Summary      Enable or disable a user
// @Description  Flips the active flag. Admins cannot disable their own account.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id}/toggle-status [patch]
func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	user, err := h.adminUC.ToggleUserStatus(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User updated", user)
}

// ExportUsers godoc
// @Summary      Export users
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /admin/users/export [get]
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	data, filename, err := h.adminUC.ExportUsers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.File(c, filename, xlsxContentType, data)
}

// ListMessages godoc
// @Summary      List contact messages
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page (1-based)"
// @Param        size  query     int  false  "Items per page (default 10)"
// @Success      200   {object}  response.Response{data=domain.PaginatedResult[domain.ContactMessage]}
// @Router       /admin/messages [get]
func (h *AdminHandler) ListMessages(c *gin.Context) {
	page, size := pageParams(c)

	result, err := h.adminUC.ListMessages(c.Request.Context(), page, size)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Messages list", result)
}

// ToggleMessageReplied godoc
// @Summary      Toggle message replied flag
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  response.Response{data=domain.ContactMessage}
// @Failure      404  {object}  response.Response
// @Router       /admin/messages/{id}/toggle-replied [patch]
func (h *AdminHandler) ToggleMessageReplied(c *gin.Context) {
	msg, err := h.adminUC.ToggleMessageReplied(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Message updated", msg)
}

// DeleteMessage godoc
// @Summary      Delete contact message
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/messages/{id} [delete]
func (h *AdminHandler) DeleteMessage(c *gin.Context) {
	if err := h.adminUC.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Message deleted", nil)
}
