package v1

import (
	"net/http"
	"time"

	"applyfollow-backend/config"
	"applyfollow-backend/internal/delivery/http/middleware"
	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/internal/usecase"
	"applyfollow-backend/pkg/metrics"
	"applyfollow-backend/pkg/oauth"
	"applyfollow-backend/pkg/security"
	"applyfollow-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	UserUC        domain.UserUsecase
	ApplicationUC domain.ApplicationUsecase
	CompanyUC     domain.CompanyUsecase
	CalendarUC    domain.CalendarUsecase
	CVUC          domain.CVUsecase
	ContactUC     domain.ContactUsecase
	AdminUC       domain.AdminUsecase
	HealthUC      usecase.HealthUsecase

	Tokens          middleware.TokenValidator
	OAuth2Providers OAuth2Providers
	OAuth2Requests  *oauth.RequestCache

	Redis  *goredis.Client
	Audit  *security.AuditLogger
	Config *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
		validation.RegisterEnum(v, "application_status", domain.ApplicationStatuses...)
	}

	cfg := deps.Config
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins)) // CORS must be first
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler())

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	limiter := middleware.NewRateLimiter(deps.Redis, deps.Audit)

	r.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})
	r.GET("/metrics", metrics.Handler())

	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	api.Use(limiter.Middleware(middleware.IPRateLimitConfig("rl:ip:", cfg.RateLimit.GlobalThreshold, window, false)))

	// Public routes
	public := api.Group("")
	public.Use(limiter.Middleware(middleware.IPRateLimitConfig("rl:auth:", cfg.RateLimit.AuthThreshold, window, false)))
	NewOAuth2Handler(public, deps.AuthUC, deps.OAuth2Providers, deps.OAuth2Requests, cfg.OAuth2.AuthorizedRedirectURIs)
	NewContactHandler(api, deps.ContactUC,
		limiter.Middleware(middleware.IPRateLimitConfig("rl:contact:", cfg.RateLimit.AuthThreshold, window, false)))

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC, deps.Audit))
	adminOnly := middleware.RequireRole(deps.Audit, domain.RoleAdmin)
	{
		NewAuthHandler(public, protected, deps.AuthUC)
		NewUserHandler(protected, deps.UserUC)
		NewApplicationHandler(protected, deps.ApplicationUC, adminOnly)
		NewCompanyHandler(protected, deps.CompanyUC)
		NewCalendarHandler(protected, deps.CalendarUC)
		NewCVHandler(protected, deps.CVUC)

		admin := protected.Group("/admin")
		admin.Use(adminOnly)
		NewAdminHandler(admin, deps.AdminUC)
	}

	return r
}
