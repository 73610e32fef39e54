package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/config"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/controller"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/events"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/handlers"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/logging"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dbConnectTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "kiara",
		Short:         "Inventory and order API",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.syncLogger()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "path to the YAML config file")
	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.useraddCmd(), a.eventsCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) syncLogger() {
	if a.logger == nil {
		return
	}
	// Sync on a terminal stdout returns EINVAL on Linux.
	_ = a.logger.Sync()
}

func (a *app) connect(ctx context.Context) (*db.Repository, error) {
	repo, err := db.Connect(ctx, a.cfg.DBConfig(), dbConnectTimeout, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repo, nil
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	gin.SetMode(a.cfg.GinMode)

	repo, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.logger.Error("failed to close database", zap.Error(err))
		}
	}()

	producer, err := a.newProducer()
	if err != nil {
		return err
	}
	defer producer.Close()

	svc := controller.NewServices(repo, producer, a.logger)
	handler := handlers.NewHandler(svc, handlers.AuthConfig{
		JWTSecret: a.cfg.JWTSecret,
		Required:  a.cfg.AuthRequired,
	}, a.logger)
	server := handlers.NewServer(a.cfg.HTTPPort, handler.Router(), a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	return waitForShutdown(server, errCh, a.logger)
}

// orderProducer is what serve needs from the event publisher.
type orderProducer interface {
	controller.EventProducer
	Close()
}

func (a *app) newProducer() (orderProducer, error) {
	if !a.cfg.KafkaEnabled() {
		a.logger.Info("KAFKA_BROKERS not set, order events disabled")
		return events.NopProducer{}, nil
	}
	producer, err := events.NewProducer(a.cfg.KafkaBrokers, a.cfg.Topic, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
	}
	return producer, nil
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, or the
// server fails, then shuts the server down.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	server.Stop()
	logger.Info("Servers stopped properly")
	return nil
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Connect migrates before returning the repository.
			repo, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("Database schema up to date")
			return repo.Close()
		},
	}
}

func (a *app) useraddCmd() *cobra.Command {
	var (
		username string
		password string
		isAdmin  bool
	)
	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repo, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := controller.NewServices(repo, events.NopProducer{}, a.logger)
			u, err := svc.Users.Create(ctx, username, password, isAdmin)
			if err != nil {
				return err
			}
			a.logger.Info("User created",
				zap.Uint("user_id", u.ID),
				zap.String("username", u.Username),
				zap.Bool("is_admin", u.IsAdmin),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "plain text password, stored hashed")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant administrator rights")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) eventsCmd() *cobra.Command {
	var groupID string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail order events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.KafkaEnabled() {
				return errors.New("KAFKA_BROKERS is not configured")
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			consumer := events.NewConsumer(a.cfg.KafkaBrokers, a.cfg.Topic, groupID, a.logger)
			defer consumer.Close()
			consumer.RegisterHandler(func(_ context.Context, ev events.Event) error {
				a.logger.Info("Order event",
					zap.String("event_id", ev.ID),
					zap.String("type", string(ev.Type)),
					zap.Time("occurred_at", ev.OccurredAt),
					zap.Uint("order_id", ev.Order.ID),
					zap.String("codigo", ev.Order.Codigo),
					zap.String("total", ev.Order.Total),
				)
				return nil
			})
			consumer.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "kiara-events-tail", "Kafka consumer group")
	return cmd
}
