package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/file"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/repository"
	httpecho "github.com/mohammadpnp/crm-import/internal/interfaces/http/echo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ServerDeps struct {
	DB          *gorm.DB
	Pool        *pgxpool.Pool
	Uploads     *file.LocalSource
	Logger      *logrus.Logger
	MetricsPath string
}

func NewHTTPServer(deps ServerDeps) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("11M"))
	server.Use(requestLogger(deps.Logger))

	importJobRepo := repository.NewImportJobRepository(deps.DB)
	importErrorRepo := repository.NewImportErrorRepository(deps.Pool)
	recordStore := repository.NewRecordStore(deps.DB)

	importHandler := httpecho.NewImportHandler(httpecho.ImportUseCases{
		Preview:    app.NewPreviewImport(),
		Start:      app.NewStartImportOrganizations(importJobRepo),
		Run:        app.NewRunImport(recordStore, deps.Logger),
		GetJob:     app.NewGetImportJob(importJobRepo),
		ListErrors: app.NewListImportErrors(importJobRepo, importErrorRepo),
	}, deps.Uploads)

	organizationQueryRepo := repository.NewOrganizationQueryRepository(deps.DB)
	organizationHandler := httpecho.NewOrganizationHandler(app.NewGetOrganizationByID(organizationQueryRepo))

	httpecho.RegisterRoutes(server, importHandler, organizationHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	if deps.MetricsPath != "" {
		server.GET(deps.MetricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	return server
}

func requestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
