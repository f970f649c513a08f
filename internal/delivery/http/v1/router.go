package v1

import (
	"net/http"
	"time"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/payment"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	UserUC        domain.UserUsecase
	CompanyUC     domain.CompanyUsecase
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	SavedJobUC    domain.SavedJobUsecase
	JobAlertUC    domain.JobAlertUsecase
	PaymentUC     domain.PaymentUsecase
	AdminUC       domain.AdminUsecase
	HealthUC      usecase.HealthUsecase

	Users    domain.UserRepository // role lookup for the auth middleware
	Verifier middleware.TokenVerifier
	Webhooks *payment.Verifier
	Redis    *goredis.Client // optional, nil uses in-process rate limiting

	FrontendURL string
	RateLimit   RateLimitSettings
}

type RateLimitSettings struct {
	Window          time.Duration
	GlobalThreshold int
	WriteThreshold  int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	limiter := middleware.NewRateLimiter(deps.Redis)
	if deps.RateLimit.GlobalThreshold > 0 {
		r.Use(limiter.Middleware(middleware.RateLimitConfig{
			Limit:     deps.RateLimit.GlobalThreshold,
			Window:    deps.RateLimit.Window,
			KeyPrefix: "rl:global:",
		}))
	}

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	NewPaymentHandler(v1, deps.PaymentUC, deps.Webhooks)

	// Public routes see more when a valid token is present
	public := v1.Group("")
	public.Use(middleware.OptionalAuth(deps.Verifier, deps.Users))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.CSRFMiddleware())
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.Users))
	if deps.RateLimit.WriteThreshold > 0 {
		protected.Use(limiter.Middleware(middleware.RateLimitConfig{
			Limit:      deps.RateLimit.WriteThreshold,
			Window:     deps.RateLimit.Window,
			KeyPrefix:  "rl:write:",
			WritesOnly: true,
			KeyFunc:    userOrIP,
		}))
	}
	{
		NewUserHandler(protected, deps.UserUC)
		NewCompanyHandler(public, protected, deps.CompanyUC)
		NewJobHandler(public, protected, deps.JobUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewSavedJobHandler(protected, deps.SavedJobUC)
		NewJobAlertHandler(protected, deps.JobAlertUC)
		NewAdminHandler(protected, deps.AdminUC, deps.CompanyUC, deps.ApplicationUC)
	}

	return r
}

func userOrIP(c *gin.Context) string {
	if id := c.GetString(string(domain.KeyUserID)); id != "" {
		return "user:" + id
	}
	return c.ClientIP()
}

// healthHandler godoc
// @Summary      Health check
// @Description  Reports each backing dependency. 503 when any of them is unavailable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, ok := healthUC.Check(c.Request.Context())
		if !ok {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Success:   false,
				Message:   "System degraded",
				Data:      status,
				RequestID: c.GetString(string(domain.KeyRequestID)),
			})
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	}
}
