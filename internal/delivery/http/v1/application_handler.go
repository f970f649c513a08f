package v1

import (
	"net/http"
	"strconv"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	appUC domain.ApplicationUsecase
}

func NewApplicationHandler(protected *gin.RouterGroup, appUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{appUC: appUC}

	applications := protected.Group("/applications")
	{
		applications.POST("", handler.Apply)
		applications.GET("", handler.ListMine)
		applications.GET("/check", handler.Check)
		applications.GET("/stats", handler.Stats)
		applications.POST("/bulk", handler.Bulk)
		applications.GET("/:id", handler.Get)
		applications.PATCH("/:id", handler.Update)
		applications.DELETE("/:id", handler.Withdraw)
	}

	employer := protected.Group("/employer/jobs/:id")
	{
		employer.GET("/applications", handler.ListForJob)
		employer.GET("/applications/export", handler.Export)
	}
}

type ApplyRequest struct {
	JobID       int64  `json:"job_id" binding:"required,gt=0"`
	Resume      string `json:"resume" binding:"required,url"`
	CoverLetter string `json:"cover_letter" binding:"max=5000"`
}

// UpdateApplicationRequest carries either an employer status change (status,
// optional notes) or an applicant edit (resume, cover_letter).
type UpdateApplicationRequest struct {
	Status      string  `json:"status" binding:"omitempty,app_status"`
	Notes       *string `json:"notes" binding:"omitempty,max=5000"`
	Resume      *string `json:"resume" binding:"omitempty,url"`
	CoverLetter *string `json:"cover_letter" binding:"omitempty,max=5000"`
}

type BulkApplicationRequest struct {
	Action       string  `json:"action" binding:"required,oneof=withdraw status"`
	IDs          []int64 `json:"ids" binding:"required,min=1,max=100,dive,gt=0"`
	Status       string  `json:"status" binding:"omitempty,app_status"`
	Notes        *string `json:"notes" binding:"omitempty,max=5000"`
	AllOrNothing bool    `json:"all_or_nothing"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  A registered seeker applies once per active job.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      ApplyRequest  true  "Application"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if !bindJSON(c, &req) {
		return
	}
	app, err := h.appUC.Apply(c.Request.Context(), req.JobID, req.Resume, req.CoverLetter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted", app)
}

// ListMine godoc
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Param        status     query  string  false  "Comma separated statuses"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Application]}
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	page, err := h.appUC.ListMine(c.Request.Context(), applicationFilter(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", page)
}

func applicationFilter(c *gin.Context) domain.ApplicationFilter {
	return domain.ApplicationFilter{
		Statuses:    typed[domain.ApplicationStatus](csvQuery(c, "status")),
		PageRequest: pageRequest(c),
	}
}

// Check godoc
// @Summary      Check for an existing application
// @Tags         applications
// @Produce      json
// @Param        job_id  query     int  true  "Job ID"
// @Success      200     {object}  response.Response{data=domain.ApplicationCheck}
// @Router       /applications/check [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Check(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Query("job_id"), 10, 64)
	if err != nil || jobID <= 0 {
		c.Error(apperror.Validation("job_id is required"))
		return
	}
	check, err := h.appUC.Check(c.Request.Context(), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application check", check)
}

// Stats godoc
// @Summary      My application statistics
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ApplicationStats}
// @Router       /applications/stats [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Stats(c *gin.Context) {
	stats, err := h.appUC.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application statistics", stats)
}

// Get godoc
// @Summary      Get an application
// @Description  Visible to the applicant, the job's company and admins. Opening it as the company marks it viewed.
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := h.appUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// Update godoc
// @Summary      Update an application
// @Description  Employers send status (and optional notes). Applicants edit resume or cover letter while the application is pending.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Application ID"
// @Param        body  body      UpdateApplicationRequest  true  "Changes"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      409   {object}  response.Response
// @Router       /applications/{id} [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	employerEdit := req.Status != "" || req.Notes != nil
	applicantEdit := req.Resume != nil || req.CoverLetter != nil
	switch {
	case employerEdit && applicantEdit:
		c.Error(apperror.Validation("Status changes and applicant edits cannot be combined"))
		return
	case employerEdit:
		if req.Status == "" {
			c.Error(apperror.Validation("status is required"))
			return
		}
		app, err := h.appUC.UpdateStatus(c.Request.Context(), id, domain.ApplicationStatusUpdate{
			Status: domain.ApplicationStatus(req.Status),
			Notes:  req.Notes,
		})
		if err != nil {
			c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Application status updated", app)
	case applicantEdit:
		app, err := h.appUC.UpdateByApplicant(c.Request.Context(), id, domain.ApplicantUpdate{
			Resume:      req.Resume,
			CoverLetter: req.CoverLetter,
		})
		if err != nil {
			c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Application updated", app)
	default:
		c.Error(apperror.Validation("Nothing to update"))
	}
}

// Withdraw godoc
// @Summary      Withdraw an application
// @Description  Only pending or reviewing applications can be withdrawn.
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.appUC.Withdraw(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application withdrawn", nil)
}

// Bulk godoc
// @Summary      Bulk application operation
// @Description  Seekers withdraw, employers change status. Each item is applied independently unless all_or_nothing is set.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      BulkApplicationRequest  true  "Bulk request"
// @Success      200   {object}  response.Response{data=domain.BulkResult}
// @Failure      409   {object}  response.Response
// @Router       /applications/bulk [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Bulk(c *gin.Context) {
	var req BulkApplicationRequest
	if !bindJSON(c, &req) {
		return
	}
	bulk := domain.BulkRequest{
		IDs:          req.IDs,
		Status:       domain.ApplicationStatus(req.Status),
		Notes:        req.Notes,
		AllOrNothing: req.AllOrNothing,
	}

	var (
		result *domain.BulkResult
		err    error
	)
	if req.Action == "withdraw" {
		result, err = h.appUC.BulkWithdraw(c.Request.Context(), bulk)
	} else {
		if req.Status == "" {
			c.Error(apperror.Validation("status is required"))
			return
		}
		result, err = h.appUC.BulkUpdateStatus(c.Request.Context(), bulk)
	}
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Bulk operation completed", result)
}

// ListForJob godoc
// @Summary      List a job's applications
// @Tags         applications
// @Produce      json
// @Param        id         path   int     true   "Job ID"
// @Param        status     query  string  false  "Comma separated statuses"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Application]}
// @Failure      404  {object}  response.Response
// @Router       /employer/jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, err := h.appUC.ListForJob(c.Request.Context(), jobID, applicationFilter(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", page)
}

// Export godoc
// @Summary      Export a job's applications
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        id      path   int     true   "Job ID"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Router       /employer/jobs/{id}/applications/export [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Export(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	export, err := h.appUC.ExportForJob(c.Request.Context(), jobID, c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
