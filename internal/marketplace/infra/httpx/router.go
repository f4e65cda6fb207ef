package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/httpx/middlewares"
	"github.com/jcmexdev/course-marketplace/internal/pkg/reqctx"
)

type RouterConfig struct {
	// ServiceName is the otelhttp operation name; defaults to marketplace-api.
	ServiceName    string
	JWTSecret      []byte
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig, categories *CategoryHandler, payments *PaymentHandler) http.Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "marketplace-api"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(otelhttp.NewMiddleware(cfg.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", reqctx.HeaderXRequestId},
		ExposedHeaders:   []string{reqctx.HeaderXRequestId},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authenticate := middlewares.Authenticate(cfg.JWTSecret)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/course", func(r chi.Router) {
			r.Get("/showAllCategories", categories.ShowAllCategories)
			r.Post("/getCategoryPageDetails", categories.CategoryPageDetails)
			r.With(authenticate, middlewares.RequireRole(reqctx.AccountAdmin)).
				Post("/createCategory", categories.CreateCategory)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Use(authenticate, middlewares.RequireRole(reqctx.AccountStudent))
			r.Post("/capturePayment", payments.CapturePayment)
			r.Post("/verifyPayment", payments.VerifyPayment)
			r.Post("/sendPaymentSuccessEmail", payments.SendPaymentSuccessEmail)
			r.Get("/verification/{orderId}", payments.VerificationStatus)
		})
	})
	return r
}
