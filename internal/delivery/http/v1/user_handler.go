package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(protected *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := protected.Group("/users")
	{
		users.GET("/me", handler.Me)
		users.POST("/me", handler.Register)
		users.PATCH("/me", handler.UpdateProfile)
	}
}

type RegisterRequest struct {
	Name string `json:"name" binding:"max=100,no_emoji"`
	Role string `json:"role" binding:"required,oneof=seeker employer"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=100,no_emoji"`
}

// Me godoc
// @Summary      Current user
// @Description  Returns the local user for the authenticated identity. 404 until the identity registers.
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved", user)
}

// Register godoc
// @Summary      Register the authenticated identity
// @Description  Creates the local user with a permanent role. Admins cannot self-register.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Profile"
// @Success      201   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /users/me [post]
// @Security     BearerAuth
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.Register(
		c.Request.Context(),
		c.GetString(string(domain.KeyUserID)),
		c.GetString(string(domain.KeyUserEmail)),
		req.Name,
		domain.Role(req.Role),
	)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "User registered", user)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateProfileRequest  true  "Profile"
// @Success      200   {object}  response.Response{data=domain.User}
// @Router       /users/me [patch]
// @Security     BearerAuth
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.UpdateProfile(c.Request.Context(), req.Name)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", user)
}
