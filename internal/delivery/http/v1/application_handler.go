package v1

import (
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes. adminOnly guards
// the per-user listing used by the admin panel.
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase, adminOnly gin.HandlerFunc) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	apps := protected.Group("/applications")
	{
		apps.GET("", handler.ListMine)
		apps.POST("", handler.Create)
		apps.GET("/export", handler.Export)
		apps.GET("/user/:userId", adminOnly, handler.ListByUser)
		apps.GET("/:id", handler.Get)
		apps.PUT("/:id", handler.Update)
		apps.PATCH("/:id/notes", handler.UpdateNotes)
		apps.PATCH("/:id/status", handler.UpdateStatus)
		apps.DELETE("/:id", handler.Delete)
		apps.GET("/:id/contacts", handler.ListContacts)
		apps.POST("/:id/contacts", handler.AddContact)
	}
}

// ListMine godoc
// @Summary      List my applications
// @Description  Applications of the caller with company and contacts, newest first.
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Router       /applications [get]
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.applicationUC.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// Create godoc
// @Summary      Create application
// @Description  Track a new application. The company is matched by name ignoring case. If the same company and position is already tracked, the existing application is returned with 200.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.CreateApplicationRequest  true  "Application"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Router       /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req domain.CreateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, created, err := h.applicationUC.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}

	if !created {
		response.Success(c, http.StatusOK, "Application already exists", app)
		return
	}
	response.Success(c, http.StatusCreated, "Application created", app)
}

// Get godoc
// @Summary      Get application
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applicationUC.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// Update godoc
// @Summary      Update application
// @Description  Replace the editable fields and the contact list.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                           true  "Application ID"
// @Param        body  body      domain.UpdateApplicationRequest  true  "Application"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id} [put]
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req domain.UpdateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application updated", app)
}

// UpdateNotes godoc
// @Summary      Update notes
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "Application ID"
// @Param        body  body      domain.UpdateNotesRequest  true  "Notes"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      404   {object}  response.Response
// @Router       /applications/{id}/notes [patch]
func (h *ApplicationHandler) UpdateNotes(c *gin.Context) {
	var req domain.UpdateNotesRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.UpdateNotes(c.Request.Context(), currentUserID(c), c.Param("id"), req.Notes)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notes updated", app)
}

// UpdateStatus godoc
// @Summary      Update status
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Application ID"
// @Param        status  query     string  true  "APPLIED, INTERVIEW, OFFER, REJECTED or GHOSTED"
// @Success      200     {object}  response.Response{data=domain.Application}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		c.Error(apperror.BadRequest("status query parameter is required"))
		return
	}

	app, err := h.applicationUC.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", app)
}

// Delete godoc
// @Summary      Delete application
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.applicationUC.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application deleted", nil)
}

// ListContacts godoc
// @Summary      List contacts
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=[]domain.Contact}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id}/contacts [get]
func (h *ApplicationHandler) ListContacts(c *gin.Context) {
	contacts, err := h.applicationUC.ListContacts(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contacts retrieved", contacts)
}

// AddContact godoc
// @Summary      Add contact
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Application ID"
// @Param        body  body      domain.ContactInput  true  "Contact"
// @Success      201   {object}  response.Response{data=domain.Contact}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id}/contacts [post]
func (h *ApplicationHandler) AddContact(c *gin.Context) {
	var req domain.ContactInput
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.applicationUC.AddContact(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Contact added", contact)
}

// Export godoc
// @Summary      Export applications
// @Description  Download the caller's applications as an Excel workbook.
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /applications/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	data, filename, err := h.applicationUC.Export(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.File(c, filename, xlsxContentType, data)
}

// ListByUser godoc
// @Summary      List a user's applications (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response{data=[]domain.Application}
// @Failure      403     {object}  response.Response
// @Router       /applications/user/{userId} [get]
func (h *ApplicationHandler) ListByUser(c *gin.Context) {
	apps, err := h.applicationUC.ListByUserForAdmin(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}
