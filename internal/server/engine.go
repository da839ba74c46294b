package server

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhis2-sre/eventos/internal/middleware"
	"github.com/dhis2-sre/eventos/internal/tracing"
	"github.com/dhis2-sre/eventos/internal/util"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redocMiddleware "github.com/go-openapi/runtime/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// GetEngine returns an engine with the middleware and pages shared by every route. Routes of the
// individual packages are registered on the returned engine.
func GetEngine(logger *slog.Logger, cookieSettings util.CookieSettings) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddExposeHeaders(middleware.CorrelationIDHeader)
	r.Use(cors.New(corsConfig))

	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(util.WithCookieSettings(cookieSettings))
	r.Use(middleware.ErrorHandler())

	r.SetHTMLTemplate(template.Must(Templates()))

	redoc(r)

	r.GET("/health", health)

	return r
}

// Templates parses the embedded page templates. Pages are named after their file.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
}

type kindOption struct {
	Value string
	Label string
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.UTC().Format("02/01/2006 15:04")
	},
	"kinds": func() []kindOption {
		options := make([]kindOption, len(model.Kinds))
		for i, k := range model.Kinds {
			options[i] = kindOption{Value: string(k), Label: k.Label()}
		}
		return options
	},
}

func health(c *gin.Context) {
	// swagger:route GET /health health
	//
	// Health status
	//
	// Show service health status
	//
	// Responses:
	//   200: Health
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

func redoc(r *gin.Engine) {
	r.StaticFile("/swagger.yaml", "./swagger/swagger.yaml")

	redocOpts := redocMiddleware.RedocOpts{
		SpecURL: "./swagger.yaml",
	}
	r.GET("/docs", func(c *gin.Context) {
		redocHandler := redocMiddleware.Redoc(redocOpts, nil)
		redocHandler.ServeHTTP(c.Writer, c.Request)
	})
}
