package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appmiddleware "guidebolt/internal/middleware"
	httprouters "guidebolt/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
	token   string
	uploads string
}

func New(log *slog.Logger, token string, host, port, uploadsDir string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	// Идентификатор зрителя живет в cookie-сессии
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(token))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	e.Use(appmiddleware.PrometheusMetrics)

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
		token:   token,
		uploads: uploadsDir,
	}
}

// Handler отдает собранный роутер, в тестах сервер монтируется в httptest
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	// Загруженные файлы раздаются как статика
	s.e.Static("/uploads", s.uploads)

	api := s.e.Group("/api/v1")
	{
		// Публичная поверхность зрителя
		api.GET("/view/:identifier", s.routers.ViewGuide)
		api.POST("/guides/:id/views", s.routers.IncrementViews)
		api.POST("/uploads", s.routers.UploadFile)
		api.DELETE("/uploads", s.routers.DeleteFile)
		api.POST("/responses", s.routers.SubmitResponses)

		debug := s.e.Group("/debug")
		{
			debug.GET("/statsviz/", echo.WrapHandler(s.m))
			debug.GET("/statsviz/*", echo.WrapHandler(s.m))
		}

		swagger := s.e.Group("/swag")
		{
			swagger.GET("/swagger/*", echoSwagger.WrapHandler)
		}

		jwtMiddleware := echojwt.WithConfig(echojwt.Config{
			SigningKey: []byte(s.token),
		})

		guideGroup := api.Group("/guides", jwtMiddleware)
		{
			guideGroup.POST("", s.routers.CreateGuide)
			guideGroup.GET("", s.routers.ListGuides)
			guideGroup.GET("/:id", s.routers.GetGuide)
			guideGroup.PUT("/:id", s.routers.SaveGuide)
			guideGroup.PATCH("/:id", s.routers.UpdateGuide)
			guideGroup.DELETE("/:id", s.routers.DeleteGuide)
			guideGroup.PATCH("/:id/publish", s.routers.PublishGuide)
			guideGroup.PATCH("/:id/unpublish", s.routers.UnpublishGuide)
		}

		api.GET("/responses", s.routers.ListResponses, jwtMiddleware)
	}
}
