package routes

import (
	"net/http"

	"gams-bknd/internal/auth"
	"gams-bknd/internal/config"
	"gams-bknd/internal/handlers"
	"gams-bknd/internal/logger"
	mdlwr "gams-bknd/internal/middleware"
	"gams-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func NewRouter(db *bun.DB, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, "gams")
	if err != nil {
		logr.Fatal("failed to init jwt manager", zap.Error(err))
	}

	authSvc := services.NewAuthService(db, jwtMgr, cfg, logr)
	assetSvc := services.NewAssetService(db)

	authMW := mdlwr.NewAuthMiddleware(jwtMgr, authSvc, logr.Logger)

	authHandler := handlers.NewAuthHandler(authSvc, logr, cfg)
	assetHandler := handlers.NewAssetHandler(assetSvc, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/login", authHandler.LoginLocal)
			r.Post("/ldap", authHandler.LoginLDAP)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Every registry operation sits behind the admin gate; a
		// missing or non-admin session is rejected before any store
		// access.
		r.Route("/grid-assets", func(r chi.Router) {
			r.Use(authMW.RequireAdmin)
			r.Get("/", assetHandler.GetGridAssets)
			r.Post("/", assetHandler.CreateGridAsset)
			r.Patch("/", assetHandler.UpdateGridAsset)
			r.Delete("/", assetHandler.DeleteGridAsset)
		})
	})

	return r
}
