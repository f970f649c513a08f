package v1

import (
	"net/http"
	"time"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public *gin.RouterGroup, protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	// Public with optional auth: owners and admins see more
	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.List)
		publicJobs.GET("/:id", handler.Get)
	}

	protectedJobs := protected.Group("/jobs")
	{
		protectedJobs.POST("", handler.Create)
		protectedJobs.PATCH("/:id", handler.Patch)
		protectedJobs.DELETE("/:id", handler.Close)
	}

	employer := protected.Group("/employer")
	{
		employer.GET("/jobs", handler.ListForEmployer)
	}
}

type SalaryRequest struct {
	Min      float64 `json:"min" binding:"gte=0"`
	Max      float64 `json:"max" binding:"gte=0"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`
}

type CreateJobRequest struct {
	Title           string        `json:"title" binding:"required,max=200,no_emoji"`
	Description     string        `json:"description" binding:"required"`
	Requirements    string        `json:"requirements"`
	Benefits        string        `json:"benefits"`
	Location        string        `json:"location" binding:"required,max=200"`
	Salary          SalaryRequest `json:"salary"`
	Type            string        `json:"type" binding:"required,job_type"`
	ExperienceLevel string        `json:"experience_level" binding:"max=50"`
	Category        string        `json:"category" binding:"max=100"`
	Skills          []string      `json:"skills" binding:"max=50,dive,max=50"`
	ExpiresAt       *time.Time    `json:"expires_at"`
}

// PatchJobRequest is either an action or a field edit. Admins send
// approve/reject, the owning employer sends close or edits fields.
type PatchJobRequest struct {
	Action string `json:"action" binding:"omitempty,oneof=approve reject close"`
	// Status is accepted for compatibility: only "closed" is honoured.
	Status          *string        `json:"status"`
	Title           *string        `json:"title" binding:"omitempty,max=200,no_emoji"`
	Description     *string        `json:"description"`
	Requirements    *string        `json:"requirements"`
	Benefits        *string        `json:"benefits"`
	Location        *string        `json:"location" binding:"omitempty,max=200"`
	Salary          *SalaryRequest `json:"salary"`
	Type            *string        `json:"type" binding:"omitempty,job_type"`
	ExperienceLevel *string        `json:"experience_level" binding:"omitempty,max=50"`
	Category        *string        `json:"category" binding:"omitempty,max=100"`
	Skills          []string       `json:"skills" binding:"omitempty,max=50,dive,max=50"`
	ExpiresAt       *time.Time     `json:"expires_at"`
}

func (r *PatchJobRequest) update() domain.JobUpdate {
	upd := domain.JobUpdate{
		Title:           r.Title,
		Description:     r.Description,
		Requirements:    r.Requirements,
		Benefits:        r.Benefits,
		Location:        r.Location,
		ExperienceLevel: r.ExperienceLevel,
		Category:        r.Category,
		Skills:          r.Skills,
		ExpiresAt:       r.ExpiresAt,
	}
	if r.Salary != nil {
		upd.Salary = &domain.Salary{Min: r.Salary.Min, Max: r.Salary.Max, Currency: r.Salary.Currency}
	}
	if r.Type != nil {
		t := domain.JobType(*r.Type)
		upd.Type = &t
	}
	return upd
}

func (r *PatchJobRequest) hasFields() bool {
	return r.Title != nil || r.Description != nil || r.Requirements != nil || r.Benefits != nil ||
		r.Location != nil || r.Salary != nil || r.Type != nil || r.ExperienceLevel != nil ||
		r.Category != nil || r.Skills != nil || r.ExpiresAt != nil
}

// Create godoc
// @Summary      Create a job
// @Description  Post a job for the caller's verified company. New jobs wait for admin approval.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      CreateJobRequest  true  "Job"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job := &domain.Job{
		Title:           req.Title,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Benefits:        toPtr(req.Benefits),
		Location:        req.Location,
		Salary:          domain.Salary{Min: req.Salary.Min, Max: req.Salary.Max, Currency: req.Salary.Currency},
		Type:            domain.JobType(req.Type),
		ExperienceLevel: req.ExperienceLevel,
		Category:        req.Category,
		Skills:          req.Skills,
		ExpiresAt:       req.ExpiresAt,
	}
	created, err := h.jobUC.Create(c.Request.Context(), job)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created and awaiting approval", created)
}

// List godoc
// @Summary      List jobs
// @Description  Filtered, paginated job listing. Only active jobs are returned unless the caller is an admin or lists their own company.
// @Tags         jobs
// @Produce      json
// @Param        search            query  string  false  "Search in title, description and skills"
// @Param        location          query  string  false  "Location substring"
// @Param        type              query  string  false  "Job type"
// @Param        experience_level  query  string  false  "Experience level"
// @Param        category          query  string  false  "Category"
// @Param        company_id        query  int     false  "Company"
// @Param        status            query  string  false  "Comma separated statuses"
// @Param        featured          query  bool    false  "Featured only"
// @Param        min_salary        query  number  false  "Lowest acceptable salary minimum"
// @Param        page              query  int     false  "Page number"
// @Param        page_size         query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Job]}
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	f, ok := jobFilter(c)
	if !ok {
		return
	}
	page, err := h.jobUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", page)
}

func jobFilter(c *gin.Context) (domain.JobFilter, bool) {
	companyID, ok := int64Query(c, "company_id")
	if !ok {
		return domain.JobFilter{}, false
	}
	featured, ok := boolQuery(c, "featured")
	if !ok {
		return domain.JobFilter{}, false
	}
	minSalary, ok := floatQuery(c, "min_salary")
	if !ok {
		return domain.JobFilter{}, false
	}
	return domain.JobFilter{
		Search:          c.Query("search"),
		Location:        c.Query("location"),
		Type:            domain.JobType(c.Query("type")),
		ExperienceLevel: c.Query("experience_level"),
		Category:        c.Query("category"),
		CompanyID:       companyID,
		Statuses:        typed[domain.JobStatus](csvQuery(c, "status")),
		Featured:        featured,
		MinSalary:       minSalary,
		PageRequest:     pageRequest(c),
	}, true
}

// Get godoc
// @Summary      Get a job
// @Description  Active jobs are public. Pending and closed jobs are visible to their company and admins only.
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

// Patch godoc
// @Summary      Update or transition a job
// @Description  Admin: {"action": "approve"|"reject"}. Owning employer: {"action": "close"} or field edits. A status other than "closed" is rejected.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Job ID"
// @Param        body  body      PatchJobRequest  true  "Action or fields"
// @Success      200   {object}  response.Response{data=domain.Job}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id} [patch]
// @Security     BearerAuth
func (h *JobHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req PatchJobRequest
	if !bindJSON(c, &req) {
		return
	}

	action := req.Action
	if req.Status != nil {
		if *req.Status != string(domain.JobStatusClosed) {
			c.Error(apperror.InvalidState("Job status can only be changed through approval, rejection or closing"))
			return
		}
		if action != "" && action != "close" {
			c.Error(apperror.Validation("Conflicting action and status"))
			return
		}
		action = "close"
	}

	if action != "" {
		if req.hasFields() {
			c.Error(apperror.Validation("Send either an action or field changes, not both"))
			return
		}
		t, _ := domain.ParseJobAction(action)
		job, err := h.jobUC.Transition(c.Request.Context(), id, t)
		if err != nil {
			c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Job "+t.Name()+" applied", job)
		return
	}

	if !req.hasFields() {
		c.Error(apperror.Validation("Nothing to update"))
		return
	}
	job, err := h.jobUC.Update(c.Request.Context(), id, req.update())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// Close godoc
// @Summary      Close a job
// @Description  The owning employer closes a job. Closed jobs never reopen.
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Close(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobUC.Transition(c.Request.Context(), id, domain.JobClose{})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job closed", job)
}

// ListForEmployer godoc
// @Summary      List the employer's jobs
// @Description  All jobs of the caller's company in any status.
// @Tags         jobs
// @Produce      json
// @Param        status     query  string  false  "Comma separated statuses"
// @Param        search     query  string  false  "Search"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Job]}
// @Router       /employer/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListForEmployer(c *gin.Context) {
	f, ok := jobFilter(c)
	if !ok {
		return
	}
	page, err := h.jobUC.ListForEmployer(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", page)
}
