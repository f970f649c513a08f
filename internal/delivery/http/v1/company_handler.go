package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC domain.CompanyUsecase
}

func NewCompanyHandler(public *gin.RouterGroup, protected *gin.RouterGroup, companyUC domain.CompanyUsecase) {
	handler := &CompanyHandler{companyUC: companyUC}

	publicCompanies := public.Group("/companies")
	{
		publicCompanies.GET("", handler.List)
		publicCompanies.GET("/:id", handler.Get)
	}

	companies := protected.Group("/companies")
	{
		companies.POST("", handler.Create)
		companies.PATCH("/:id", handler.Update)
		companies.POST("/:id/owners", handler.AddOwner)
		companies.DELETE("/:id/owners/:userId", handler.RemoveOwner)
	}
}

type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Logo        string `json:"logo" binding:"omitempty,url"`
	Website     string `json:"website" binding:"omitempty,url"`
	Location    string `json:"location" binding:"max=200"`
	Size        string `json:"size" binding:"max=50"`
	Industry    string `json:"industry" binding:"max=100"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Logo        *string `json:"logo" binding:"omitempty,url"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	Size        *string `json:"size" binding:"omitempty,max=50"`
	Industry    *string `json:"industry" binding:"omitempty,max=100"`
}

type AddOwnerRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Create godoc
// @Summary      Create a company
// @Description  An employer without a company creates one and becomes its first owner. Companies start unverified.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body      CreateCompanyRequest  true  "Company"
// @Success      201   {object}  response.Response{data=domain.Company}
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /companies [post]
// @Security     BearerAuth
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Create(c.Request.Context(), &domain.Company{
		Name:        req.Name,
		Description: req.Description,
		Logo:        toPtr(req.Logo),
		Website:     toPtr(req.Website),
		Location:    req.Location,
		Size:        req.Size,
		Industry:    req.Industry,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Company created", company)
}

// List godoc
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Param        search     query  string  false  "Name search"
// @Param        verified   query  bool    false  "Verification filter"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.CompanyWithJobs]}
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	f, ok := companyFilter(c)
	if !ok {
		return
	}
	page, err := h.companyUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies retrieved", page)
}

func companyFilter(c *gin.Context) (domain.CompanyFilter, bool) {
	verified, ok := boolQuery(c, "verified")
	if !ok {
		return domain.CompanyFilter{}, false
	}
	return domain.CompanyFilter{
		Search:      c.Query("search"),
		Verified:    verified,
		PageRequest: pageRequest(c),
	}, true
}

// Get godoc
// @Summary      Get a company
// @Description  Company profile with its active jobs.
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response{data=domain.CompanyDetail}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.companyUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company retrieved", detail)
}

// Update godoc
// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id    path      int                   true  "Company ID"
// @Param        body  body      UpdateCompanyRequest  true  "Fields"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Failure      403   {object}  response.Response
// @Router       /companies/{id} [patch]
// @Security     BearerAuth
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Update(c.Request.Context(), id, domain.CompanyUpdate{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		Website:     req.Website,
		Location:    req.Location,
		Size:        req.Size,
		Industry:    req.Industry,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company updated", company)
}

// AddOwner godoc
// @Summary      Add a company owner
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Company ID"
// @Param        body  body      AddOwnerRequest  true  "Employer to add"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Failure      409   {object}  response.Response
// @Router       /companies/{id}/owners [post]
// @Security     BearerAuth
func (h *CompanyHandler) AddOwner(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddOwnerRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.AddOwner(c.Request.Context(), id, req.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Owner added", company)
}

// RemoveOwner godoc
// @Summary      Remove a company owner
// @Description  The last owner cannot be removed.
// @Tags         companies
// @Produce      json
// @Param        id      path      int     true  "Company ID"
// @Param        userId  path      string  true  "Owner user ID"
// @Success      200     {object}  response.Response{data=domain.Company}
// @Failure      409     {object}  response.Response
// @Router       /companies/{id}/owners/{userId} [delete]
// @Security     BearerAuth
func (h *CompanyHandler) RemoveOwner(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	company, err := h.companyUC.RemoveOwner(c.Request.Context(), id, c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Owner removed", company)
}
