package v1

import (
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	calendarUC domain.CalendarUsecase
}

func NewCalendarHandler(protected *gin.RouterGroup, calendarUC domain.CalendarUsecase) {
	handler := &CalendarHandler{calendarUC: calendarUC}

	calendar := protected.Group("/calendar")
	{
		calendar.GET("", handler.List)
		calendar.POST("", handler.Create)
		calendar.PUT("/:id", handler.Update)
		calendar.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List calendar events
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.CalendarEvent}
// @Router       /calendar [get]
func (h *CalendarHandler) List(c *gin.Context) {
	events, err := h.calendarUC.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Events retrieved", events)
}

// Create godoc
// @Summary      Create calendar event
// @Description  An event with hasAlarm needs alarmTime or time; the reminder email is sent when it comes due.
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.CalendarEventRequest  true  "Event"
// @Success      201   {object}  response.Response{data=domain.CalendarEvent}
// @Failure      400   {object}  response.Response
// @Router       /calendar [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req domain.CalendarEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.calendarUC.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Event created", event)
}

// Update godoc
// @Summary      Update calendar event
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Event ID"
// @Param        body  body      domain.CalendarEventRequest  true  "Event"
// @Success      200   {object}  response.Response{data=domain.CalendarEvent}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /calendar/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	var req domain.CalendarEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.calendarUC.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Event updated", event)
}

// Delete godoc
// @Summary      Delete calendar event
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /calendar/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.calendarUC.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Event deleted", nil)
}
