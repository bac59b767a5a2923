package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/go-parking/internal/clock"
	"github.com/mateusmacedo/go-parking/internal/config"
	"github.com/mateusmacedo/go-parking/internal/parking"
	"github.com/mateusmacedo/go-parking/internal/parking/application"
	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/internal/parking/fare"
	"github.com/mateusmacedo/go-parking/internal/parking/infrastructure"
	pkgApp "github.com/mateusmacedo/go-parking/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-parking/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-parking/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/redis/adapter"
	zapAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/zaplogger/adapter"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(cfg.AppName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error(context.Background(), "Erro ao executar o servidor", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	appLogger.Info(context.Background(), "Servidor encerrado", nil)
}

func run(ctx context.Context, cfg config.Config, appLogger pkgApp.AppLogger) error {
	repository, err := newTicketRepository(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("ticket repository: %w", err)
	}

	eventBus, closeBus, err := newTicketPaidEventBus(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer func() {
		if err := closeBus.Close(); err != nil {
			appLogger.Error(context.Background(), "Erro ao fechar barramento de eventos", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	calculator, err := fare.NewCalculator(fare.RateTable{
		domain.ParkingTypeCar:  cfg.CarRatePerHour,
		domain.ParkingTypeBike: cfg.BikeRatePerHour,
	})
	if err != nil {
		return fmt.Errorf("fare calculator: %w", err)
	}

	commandBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ProcessExitingVehicleData], application.ProcessExitingVehicleData](appLogger)
	findQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindTicketsData], application.FindTicketsData, []domain.Ticket](appLogger)
	fareQueryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.QuoteFareData], application.QuoteFareData, domain.Ticket](appLogger)

	parkingSlice := parking.NewParkingSlice(
		commandBus,
		findQueryBus,
		fareQueryBus,
		eventBus,
		repository,
		calculator,
		clock.NewSystem(),
		appLogger,
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer)
	router.Use(requestIDLogging)
	parkingSlice.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	srvErr := make(chan error, 1)
	go func() {
		appLogger.Info(ctx, "Server starting on:"+cfg.HTTPAddr, map[string]interface{}{
			"repository": cfg.Repository,
			"event_bus":  cfg.EventBus,
		})
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		appLogger.Info(context.Background(), "Encerrando servidor...", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newTicketRepository(cfg config.Config, appLogger pkgApp.AppLogger) (domain.TicketRepository, error) {
	if cfg.Repository == config.RepositoryPostgres {
		return infrastructure.NewGormTicketRepository(cfg.DatabaseDSN, appLogger)
	}
	return infrastructure.NewInMemoryTicketRepository(appLogger), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newTicketPaidEventBus(ctx context.Context, cfg config.Config, appLogger pkgApp.AppLogger) (application.TicketPaidEventBus, io.Closer, error) {
	switch cfg.EventBus {
	case config.EventBusChannels:
		bus := channelsAdapter.NewGoChannelEventBus[pkgDomain.Event[application.TicketPaidData], application.TicketPaidData](appLogger)
		return bus, bus, nil

	case config.EventBusRedis:
		client, err := redisAdapter.NewRedisClient(ctx, redisAdapter.ClientConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		bus, err := redisAdapter.NewRedisStreamEventBus[pkgDomain.Event[application.TicketPaidData], application.TicketPaidData](client, redisAdapter.StreamConfig{
			ConsumerGroup: cfg.AppName,
			Consumer:      cfg.AppName + "-" + pkgInfra.GenerateUUID(),
		}, appLogger)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return bus, closerFunc(func() error {
			return errors.Join(bus.Close(), client.Close())
		}), nil

	case config.EventBusKafka:
		bus, err := kafkaAdapter.NewKafkaEventBus[pkgDomain.Event[application.TicketPaidData], application.TicketPaidData](kafkaAdapter.Config{
			Brokers:       cfg.KafkaBrokers,
			ConsumerGroup: cfg.KafkaConsumerGroup,
			ClientID:      cfg.AppName,
		}, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return bus, bus, nil
	}

	bus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.TicketPaidData], application.TicketPaidData](appLogger)
	return bus, closerFunc(func() error { return nil }), nil
}

// requestIDLogging propaga o request id do chi para os campos do AppLogger.
func requestIDLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			r = r.WithContext(zapAdapter.WithRequestID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}
