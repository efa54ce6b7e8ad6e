// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/account-bank/internal/accountdelivery"
	"github.com/go-petr/account-bank/internal/accountrepo"
	"github.com/go-petr/account-bank/internal/accountservice"
	"github.com/go-petr/account-bank/internal/middleware"
	"github.com/go-petr/account-bank/internal/transferdelivery"
	"github.com/go-petr/account-bank/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)

	accountService := accountservice.New(accountRepo)

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(accountService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts/:number", accountHandler.Get)
	engine.POST("/accounts/:number/debit", accountHandler.Debit)
	engine.POST("/accounts/:number/credit", accountHandler.Credit)
	engine.POST("/accounts/:number/interest", accountHandler.YieldInterest)
	engine.POST("/interest", accountHandler.YieldInterestAll)

	engine.POST("/transfers", transferHandler.Create)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("accounttype", accountdelivery.ValidAccountType)
		if err != nil {
			return nil, errors.New("cannot register account type validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
