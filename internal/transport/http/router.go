// Package http is the REST transport of the catalog service.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const healthPath = "/health"

type RouterConfig struct {
	Products *ProductHandler
	Tags     *TagHandler
	Events   *EventsHandler
	Uploads  *Uploader

	// MediaDir is served read-only under /media.
	MediaDir    string
	ServiceName string
	Logger      logrus.FieldLogger
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func routes(cfg RouterConfig) []route {
	p, t, upload := cfg.Products, cfg.Tags, cfg.Uploads.Middleware()
	return []route{
		{http.MethodPost, "/products", []gin.HandlerFunc{upload, p.Create}},
		{http.MethodGet, "/products", []gin.HandlerFunc{p.Find}},
		{http.MethodGet, "/products/count", []gin.HandlerFunc{p.Count}},
		{http.MethodGet, "/products/active", []gin.HandlerFunc{p.FindActive}},
		{http.MethodPatch, "/products", []gin.HandlerFunc{p.UpdateAll}},
		{http.MethodGet, "/products/:id", []gin.HandlerFunc{p.FindByID}},
		{http.MethodPatch, "/products/:id", []gin.HandlerFunc{p.UpdateByID}},
		{http.MethodPut, "/products/:id", []gin.HandlerFunc{upload, p.ReplaceByID}},
		{http.MethodDelete, "/products/:id", []gin.HandlerFunc{p.DeleteByID}},

		{http.MethodPost, "/tags", []gin.HandlerFunc{t.Create}},
		{http.MethodGet, "/tags", []gin.HandlerFunc{t.Find}},
		{http.MethodGet, "/tags/count", []gin.HandlerFunc{t.Count}},
		{http.MethodGet, "/tags/:id", []gin.HandlerFunc{t.FindByID}},
		{http.MethodPatch, "/tags/:id", []gin.HandlerFunc{t.UpdateByID}},
		{http.MethodDelete, "/tags/:id", []gin.HandlerFunc{t.DeleteByID}},
		{http.MethodDelete, "/tags", []gin.HandlerFunc{t.DeleteByID}},

		{http.MethodGet, "/events", []gin.HandlerFunc{cfg.Events.List}},
		{http.MethodGet, healthPath, []gin.HandlerFunc{health}},
	}
}

// NewRouter builds the gin engine from the route table.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != healthPath
		})),
		Recovery(cfg.Logger),
		RequestLogger(cfg.Logger, healthPath),
	)
	r.Static("/media", cfg.MediaDir)
	for _, rt := range routes(cfg) {
		r.Handle(rt.method, rt.path, rt.handlers...)
	}
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorBody{Error: ErrorDetail{
			StatusCode: http.StatusNotFound,
			Name:       statusNames[http.StatusNotFound],
			Message:    "Endpoint \"" + c.Request.Method + " " + c.Request.URL.Path + "\" not found.",
		}})
	})
	return r
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
