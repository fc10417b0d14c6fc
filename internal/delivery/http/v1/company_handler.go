package v1

import (
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC domain.CompanyUsecase
}

func NewCompanyHandler(protected *gin.RouterGroup, companyUC domain.CompanyUsecase) {
	handler := &CompanyHandler{companyUC: companyUC}

	companies := protected.Group("/companies")
	{
		companies.GET("", handler.List)
		companies.GET("/:id", handler.Get)
	}
}

// List godoc
// @Summary      List companies
// @Description  Companies ordered by name, optionally filtered by a case-insensitive name fragment.
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Name filter"
// @Param        page  query     int     false  "Page (1-based)"
// @Param        size  query     int     false  "Page size (default 20, max 100)"
// @Success      200   {object}  response.Response{data=domain.PaginatedResult[domain.Company]}
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	page, size := pageParams(c)

	result, err := h.companyUC.List(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies retrieved", result)
}

// Get godoc
// @Summary      Get company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companyUC.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company retrieved", company)
}
