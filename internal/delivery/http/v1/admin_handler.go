package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC   domain.AdminUsecase
	companyUC domain.CompanyUsecase
	appUC     domain.ApplicationUsecase
}

func NewAdminHandler(protected *gin.RouterGroup, adminUC domain.AdminUsecase, companyUC domain.CompanyUsecase, appUC domain.ApplicationUsecase) {
	handler := &AdminHandler{adminUC: adminUC, companyUC: companyUC, appUC: appUC}

	admin := protected.Group("/admin")
	{
		// Dashboard stats
		admin.GET("/stats", handler.GetStats)

		// Job moderation queue; approve/reject goes through PATCH /jobs/:id
		admin.GET("/jobs", handler.ListJobs)

		// Company verification
		admin.GET("/companies", handler.ListCompanies)
		admin.PATCH("/companies/:id", handler.ReviewCompany)

		admin.GET("/applications", handler.ListApplications)
	}
}

type ReviewCompanyRequest struct {
	Action string `json:"action" binding:"required,oneof=verify reject"`
}

// GetStats godoc
// @Summary      Get admin dashboard statistics
// @Description  Returns counts for users, companies, jobs, and applications
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

// ListJobs godoc
// @Summary      List jobs for moderation
// @Description  Defaults to pending jobs.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status     query  string  false  "Comma separated statuses"
// @Param        search     query  string  false  "Search"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Job]}
// @Failure      403  {object}  response.Response
// @Router       /admin/jobs [get]
func (h *AdminHandler) ListJobs(c *gin.Context) {
	f, ok := jobFilter(c)
	if !ok {
		return
	}
	page, err := h.adminUC.ListJobs(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", page)
}

// ListCompanies godoc
// @Summary      List companies
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        verified   query  bool    false  "Verification filter"
// @Param        search     query  string  false  "Name search"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.CompanyWithJobs]}
// @Router       /admin/companies [get]
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	f, ok := companyFilter(c)
	if !ok {
		return
	}
	page, err := h.adminUC.ListCompanies(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies retrieved", page)
}

// ReviewCompany godoc
// @Summary      Verify or reject a company
// @Description  Rejecting leaves the company unverified. Verified companies cannot be rejected.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Company ID"
// @Param        body  body      ReviewCompanyRequest  true  "Decision"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Failure      409   {object}  response.Response
// @Router       /admin/companies/{id} [patch]
func (h *AdminHandler) ReviewCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ReviewCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Review(c.Request.Context(), id, domain.CompanyAction(req.Action))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company reviewed", company)
}

// ListApplications godoc
// @Summary      List all applications
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        job_id     query  int     false  "Job"
// @Param        status     query  string  false  "Comma separated statuses"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Application]}
// @Router       /admin/applications [get]
func (h *AdminHandler) ListApplications(c *gin.Context) {
	jobID, ok := int64Query(c, "job_id")
	if !ok {
		return
	}
	f := applicationFilter(c)
	f.JobID = jobID
	page, err := h.appUC.ListAll(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", page)
}
