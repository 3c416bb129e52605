package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appsvc "suggestboard/internal/app"
	"suggestboard/internal/bootstrap"
	"suggestboard/internal/graph"
	"suggestboard/internal/platform/rabbitmq"
	"suggestboard/internal/repository"
	"suggestboard/internal/transport/http/handler"
	"suggestboard/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	boardRepo := repository.NewBoardRepository(app.MySQL)
	suggestionRepo := repository.NewSuggestionRepository(app.MySQL)
	eventPublisher := rabbitmq.NewUserEventPublisher(app.MQConn, app.Config.RabbitMQ.UserAddedQueue)
	authService := appsvc.NewAuthService(userRepo, app.Hub, eventPublisher, app.Config.Auth.JWTSecret)

	resolver := &graph.Resolver{
		Auth:        authService,
		Users:       userRepo,
		Boards:      boardRepo,
		Suggestions: suggestionRepo,
		Hub:         app.Hub,
		UserCache:   app.UserCache,
	}
	schema, err := resolver.Schema()
	if err != nil {
		return nil, fmt.Errorf("build graphql schema failed: %w", err)
	}

	graphqlHandler := handler.NewGraphQLHandler(schema)
	router.POST("/graphql", middleware.Identity(app.Config.Auth.JWTSecret), graphqlHandler.Execute)

	return router, nil
}
