// launching the HTTP server, postgres, redis and the RabbitMQ consumer
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parkgolf/slot-service/config"
	repository "github.com/parkgolf/slot-service/internal/database/postgres"
	cache "github.com/parkgolf/slot-service/internal/database/redis"
	"github.com/parkgolf/slot-service/internal/messaging"
	"github.com/parkgolf/slot-service/internal/service"
	"github.com/parkgolf/slot-service/internal/transport"
	"github.com/parkgolf/slot-service/internal/worker"

	"github.com/parkgolf/slot-service/pkg/postgres"
	"github.com/parkgolf/slot-service/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	slotRepo := repository.NewSlotRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	gameRepo := repository.NewGameRepository(db)

	// Initialize slot cache
	var slotCache service.SlotCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		slotCache = cache.NewSlotCache(redisClient, cfg.Redis.CacheTTL)
		logrus.Info("Slot cache initialized")
	} else {
		logrus.Warn("Redis disabled, slot lookups go straight to the database")
	}

	// Initialize services
	slotService := service.NewSlotService(slotRepo, scheduleRepo, gameRepo, slotCache, cfg.Generator.ReadTimeout)
	capacityService := service.NewCapacityService(slotRepo, slotCache)
	scheduleService := service.NewScheduleService(scheduleRepo, gameRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize RabbitMQ and the saga participant
	rabbitConfig := messaging.RabbitMQConfig{
		URL:           cfg.Rabbit.AMQPURL(),
		ExchangeName:  cfg.Rabbit.ExchangeName,
		QueueName:     cfg.Rabbit.QueueName,
		PrefetchCount: cfg.Rabbit.PrefetchCount,
	}

	rabbitMQ, err := messaging.NewRabbitMQ(rabbitConfig)
	if err != nil {
		logrus.Fatalf("Failed to connect to RabbitMQ: %s", err.Error())
	}
	defer rabbitMQ.Close()

	router := messaging.NewRouter()
	sagaHandler := messaging.NewSagaHandler(capacityService, slotService, rabbitMQ)
	sagaHandler.Register(router)

	if err := rabbitMQ.Consume(ctx, router); err != nil {
		logrus.Fatalf("Failed to start consumer: %s", err.Error())
	}
	logrus.Info("Saga command consumer started")

	// Initialize slot closer worker
	closerWorker := worker.NewSlotCloserWorker(slotRepo, cfg.Worker.CloseInterval, cfg.Worker.BatchSize)
	go closerWorker.Start(ctx)
	logrus.Info("Slot closer worker started")

	// Initialize handlers
	slotHandler := transport.NewSlotHandler(slotService, capacityService)
	scheduleHandler := transport.NewScheduleHandler(scheduleService)

	health := func(c *gin.Context) {
		status := http.StatusOK
		rabbitOK := rabbitMQ.HealthCheck() == nil
		if !rabbitOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status": "ok",
			"rabbit": rabbitOK,
		})
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(slotHandler, scheduleHandler, health)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
