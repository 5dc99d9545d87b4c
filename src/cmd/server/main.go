package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"conciergeapi/src/helper/env"
	"conciergeapi/src/infra/kafka"
	"conciergeapi/src/infra/postgres"
	"conciergeapi/src/infra/redis"
	"conciergeapi/src/repositories"
	"conciergeapi/src/server"
	"conciergeapi/src/services/documents"
	"conciergeapi/src/services/events"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting concierge API server with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newSQLClient,
			newRedisClient,
			newEventPublisher,
			newServer,
			newEntityRepository,
			newCachedEntityRepository,
			newCurationRepository,
			newDocumentQueryRepository,
			newDocumentService,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newSQLClient configures and returns a pgxpool connection pool
func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

// newRedisClient é opcional: sem REDIS_ADDR o cache é desligado e as
// leituras vão direto ao PostgreSQL.
func newRedisClient() *redis.RedisClient {
	redisAddr := env.GetString("REDIS_ADDR", "")
	if redisAddr == "" {
		return nil
	}

	poolSize := env.GetInt("REDIS_POOL_SIZE", 10)
	ttlSeconds := env.GetInt("REDIS_TTL_SECONDS", 60)

	return redis.NewRedisClient(redisAddr, poolSize, time.Duration(ttlSeconds)*time.Second)
}

// newEventPublisher é opcional: sem KAFKA_BROKERS os eventos de domínio são
// descartados silenciosamente.
func newEventPublisher(logger *slog.Logger) (*events.DomainEventPublisher, error) {
	brokers := env.GetString("KAFKA_BROKERS", "")
	if brokers == "" {
		return nil, nil
	}

	kafkaClient, err := kafka.NewKafkaClient(brokers)
	if err != nil {
		return nil, err
	}

	topic := env.GetString("KAFKA_DOCUMENT_EVENTS_TOPIC", "concierge.document-events")
	return events.NewDomainEventPublisher(logger, kafkaClient, topic), nil
}

func newEntityRepository(pool *pgxpool.Pool) *repositories.EntityRepository {
	return repositories.NewEntityRepository(pool)
}

func newCachedEntityRepository(entityRepository *repositories.EntityRepository, redisClient *redis.RedisClient) *repositories.CachedEntityRepository {
	return repositories.NewCachedEntityRepository(entityRepository, redisClient)
}

func newCurationRepository(pool *pgxpool.Pool) *repositories.CurationRepository {
	return repositories.NewCurationRepository(pool)
}

func newDocumentQueryRepository(pool *pgxpool.Pool) *repositories.DocumentQueryRepository {
	return repositories.NewDocumentQueryRepository(pool)
}

func newDocumentService(
	cachedEntityRepository *repositories.CachedEntityRepository,
	curationRepository *repositories.CurationRepository,
	documentQueryRepository *repositories.DocumentQueryRepository,
	eventPublisher *events.DomainEventPublisher,
) *documents.DocumentService {
	return documents.NewDocumentService(cachedEntityRepository, curationRepository, documentQueryRepository, eventPublisher)
}

func newServer(
	logger *slog.Logger,
	documentService *documents.DocumentService,
	pool *pgxpool.Pool,
) *server.Server {
	port := env.GetInt("SERVER_PORT", 8888)

	return server.NewServer(logger, port, documentService, pool)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *server.Server, pool *pgxpool.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			log.Println("Shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}

			// Drena o pool depois que o servidor parou de aceitar requests.
			pool.Close()

			log.Println("Server exited gracefully")
			return nil
		},
	})
}
