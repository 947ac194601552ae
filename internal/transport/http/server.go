package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"ragdocs/internal/ai"
	appsvc "ragdocs/internal/app"
	"ragdocs/internal/bootstrap"
	"ragdocs/internal/cache"
	"ragdocs/internal/chunker"
	"ragdocs/internal/platform/rabbitmq"
	"ragdocs/internal/repository"
	"ragdocs/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docRepo := repository.NewDocumentRepository(app.DB)
	chunkRepo := repository.NewChunkRepository(app.DB)

	llmClient := ai.NewClient(app.Config.LLM.BaseURL, app.Config.LLM.APIKey)
	embedder := ai.NewEmbeddingClient(llmClient, app.Config.LLM.EmbeddingModel, app.Config.LLM.EmbeddingDimension)
	chatClient := ai.NewChatClient(llmClient, app.Config.LLM.Model)

	publisher := rabbitmq.NewIngestEventPublisher(app.MQConn, app.Config.RabbitMQ.IngestEventQueue)
	answerCache := cache.NewAnswerCache(app.Redis, time.Duration(app.Config.Redis.AnswerTTLSeconds)*time.Second)

	ingestService := appsvc.NewIngestService(
		docRepo,
		embedder,
		publisher,
		chunker.Config{
			MaxChars:                  app.Config.RAG.MaxChars,
			OverlapChars:              app.Config.RAG.OverlapChars,
			RespectSentenceBoundaries: app.Config.RAG.RespectSentenceBoundaries,
		},
		app.Config.LLM.EmbeddingBatchSize,
	)
	qaService := appsvc.NewQAService(docRepo, chunkRepo, embedder, chatClient, answerCache, app.Config.RAG.TopK)
	documentService := appsvc.NewDocumentService(docRepo, chunkRepo)

	documentHandler := handler.NewDocumentHandler(ingestService, documentService)
	qaHandler := handler.NewQAHandler(qaService)

	v1 := router.Group("/api/v1")
	docs := v1.Group("/documents")
	docs.POST("", documentHandler.Upload)
	docs.GET("", documentHandler.List)
	docs.GET("/:id", documentHandler.Get)
	docs.DELETE("/:id", documentHandler.Delete)

	qa := v1.Group("/qa")
	qa.POST("/ask", qaHandler.Ask)

	return router
}
