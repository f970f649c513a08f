package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type SavedJobHandler struct {
	savedUC domain.SavedJobUsecase
}

func NewSavedJobHandler(protected *gin.RouterGroup, savedUC domain.SavedJobUsecase) {
	handler := &SavedJobHandler{savedUC: savedUC}

	saved := protected.Group("/saved-jobs")
	{
		saved.GET("", handler.List)
		saved.POST("/:jobId", handler.Save)
		saved.DELETE("/:jobId", handler.Remove)
	}
}

// List godoc
// @Summary      List saved jobs
// @Tags         saved-jobs
// @Produce      json
// @Param        page       query  int  false  "Page number"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=domain.Page[domain.SavedJob]}
// @Router       /saved-jobs [get]
// @Security     BearerAuth
func (h *SavedJobHandler) List(c *gin.Context) {
	page, err := h.savedUC.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Saved jobs retrieved", page)
}

// Save godoc
// @Summary      Save a job
// @Tags         saved-jobs
// @Produce      json
// @Param        jobId  path      int  true  "Job ID"
// @Success      201    {object}  response.Response{data=domain.SavedJob}
// @Failure      409    {object}  response.Response
// @Router       /saved-jobs/{jobId} [post]
// @Security     BearerAuth
func (h *SavedJobHandler) Save(c *gin.Context) {
	jobID, ok := pathID(c, "jobId")
	if !ok {
		return
	}
	saved, err := h.savedUC.Save(c.Request.Context(), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job saved", saved)
}

// Remove godoc
// @Summary      Remove a saved job
// @Tags         saved-jobs
// @Produce      json
// @Param        jobId  path      int  true  "Job ID"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /saved-jobs/{jobId} [delete]
// @Security     BearerAuth
func (h *SavedJobHandler) Remove(c *gin.Context) {
	jobID, ok := pathID(c, "jobId")
	if !ok {
		return
	}
	if err := h.savedUC.Remove(c.Request.Context(), jobID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Saved job removed", nil)
}
