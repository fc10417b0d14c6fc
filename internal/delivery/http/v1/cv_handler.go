package v1

import (
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CVHandler struct {
	cvUC domain.CVUsecase
}

func NewCVHandler(protected *gin.RouterGroup, cvUC domain.CVUsecase) {
	handler := &CVHandler{cvUC: cvUC}

	cv := protected.Group("/cv")
	{
		cv.GET("", handler.Get)
		cv.POST("", handler.Update)
		cv.PUT("", handler.Update)
		cv.GET("/download", handler.Download)
	}
}

// Get godoc
// @Summary      Get CV
// @Tags         cv
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.CV}
// @Router       /cv [get]
func (h *CVHandler) Get(c *gin.Context) {
	cv, err := h.cvUC.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV retrieved", cv)
}

// Update godoc
// @Summary      Save CV
// @Description  Update the profile fields and replace every CV section.
// @Tags         cv
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.UpdateCVRequest  true  "CV"
// @Success      200   {object}  response.Response{data=domain.CV}
// @Failure      400   {object}  response.Response
// @Router       /cv [post]
// @Router       /cv [put]
func (h *CVHandler) Update(c *gin.Context) {
	var req domain.UpdateCVRequest
	if !bindJSON(c, &req) {
		return
	}

	cv, err := h.cvUC.Update(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV saved", cv)
}

// Download godoc
// @Summary      Download CV
// @Description  Render the CV as a Word document.
// @Tags         cv
// @Produce      application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /cv/download [get]
func (h *CVHandler) Download(c *gin.Context) {
	doc, err := h.cvUC.Download(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.File(c, doc.Filename, doc.ContentType, doc.Content)
}
