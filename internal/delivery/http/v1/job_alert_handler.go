package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobAlertHandler struct {
	alertUC domain.JobAlertUsecase
}

func NewJobAlertHandler(protected *gin.RouterGroup, alertUC domain.JobAlertUsecase) {
	handler := &JobAlertHandler{alertUC: alertUC}

	alerts := protected.Group("/job-alerts")
	{
		alerts.GET("", handler.List)
		alerts.POST("", handler.Create)
		alerts.GET("/:id/jobs", handler.Matches)
		alerts.PATCH("/:id", handler.Update)
		alerts.DELETE("/:id", handler.Delete)
	}
}

type CreateJobAlertRequest struct {
	Keywords  string  `json:"keywords" binding:"max=200"`
	Location  string  `json:"location" binding:"max=200"`
	Type      string  `json:"type" binding:"omitempty,job_type"`
	MinSalary float64 `json:"min_salary" binding:"gte=0"`
	Frequency string  `json:"frequency" binding:"omitempty,oneof=daily weekly"`
}

type UpdateJobAlertRequest struct {
	Keywords  *string  `json:"keywords" binding:"omitempty,max=200"`
	Location  *string  `json:"location" binding:"omitempty,max=200"`
	Type      *string  `json:"type" binding:"omitempty,job_type"`
	MinSalary *float64 `json:"min_salary" binding:"omitempty,gte=0"`
	Frequency *string  `json:"frequency" binding:"omitempty,oneof=daily weekly"`
	Active    *bool    `json:"active"`
}

// List godoc
// @Summary      List my job alerts
// @Tags         job-alerts
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.JobAlert}
// @Router       /job-alerts [get]
// @Security     BearerAuth
func (h *JobAlertHandler) List(c *gin.Context) {
	alerts, err := h.alertUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job alerts retrieved", alerts)
}

// Create godoc
// @Summary      Create a job alert
// @Tags         job-alerts
// @Accept       json
// @Produce      json
// @Param        body  body      CreateJobAlertRequest  true  "Alert"
// @Success      201   {object}  response.Response{data=domain.JobAlert}
// @Router       /job-alerts [post]
// @Security     BearerAuth
func (h *JobAlertHandler) Create(c *gin.Context) {
	var req CreateJobAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	alert, err := h.alertUC.Create(c.Request.Context(), &domain.JobAlert{
		Keywords:  req.Keywords,
		Location:  req.Location,
		Type:      domain.JobType(req.Type),
		MinSalary: req.MinSalary,
		Frequency: domain.AlertFrequency(req.Frequency),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job alert created", alert)
}

// Matches godoc
// @Summary      List jobs matching an alert
// @Description  Runs the alert's search over active jobs.
// @Tags         job-alerts
// @Produce      json
// @Param        id         path   int  true   "Alert ID"
// @Param        page       query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Job]}
// @Failure      404  {object}  response.Response
// @Router       /job-alerts/{id}/jobs [get]
// @Security     BearerAuth
func (h *JobAlertHandler) Matches(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	jobs, err := h.alertUC.Matches(c.Request.Context(), id, pageRequest(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Matching jobs retrieved", jobs)
}

// Update godoc
// @Summary      Update a job alert
// @Tags         job-alerts
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Alert ID"
// @Param        body  body      UpdateJobAlertRequest  true  "Fields"
// @Success      200   {object}  response.Response{data=domain.JobAlert}
// @Router       /job-alerts/{id} [patch]
// @Security     BearerAuth
func (h *JobAlertHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateJobAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	upd := domain.JobAlertUpdate{
		Keywords:  req.Keywords,
		Location:  req.Location,
		MinSalary: req.MinSalary,
		Active:    req.Active,
	}
	if req.Type != nil {
		t := domain.JobType(*req.Type)
		upd.Type = &t
	}
	if req.Frequency != nil {
		f := domain.AlertFrequency(*req.Frequency)
		upd.Frequency = &f
	}
	alert, err := h.alertUC.Update(c.Request.Context(), id, upd)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job alert updated", alert)
}

// Delete godoc
// @Summary      Delete a job alert
// @Tags         job-alerts
// @Produce      json
// @Param        id   path      int  true  "Alert ID"
// @Success      200  {object}  response.Response
// @Router       /job-alerts/{id} [delete]
// @Security     BearerAuth
func (h *JobAlertHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.alertUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job alert deleted", nil)
}
