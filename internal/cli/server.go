package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/auth"
	"studybuddy-service/internal/config"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
	"studybuddy-service/internal/infra/memory"
	"studybuddy-service/internal/infra/postgres"
	redisinfra "studybuddy-service/internal/infra/redis"
	transport "studybuddy-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// repositories groups the storage backends chosen from config.
type repositories struct {
	tasks     app.TaskRepository
	summaries app.SummaryRepository
	chat      app.ChatRepository
	attempts  app.AttemptRepository
	progress  app.ProgressRepository
	users     app.UserRepository
	bank      app.QuestionBank
}

func memoryRepositories() repositories {
	return repositories{
		tasks:     memory.NewTaskRepository(),
		summaries: memory.NewSummaryRepository(),
		chat:      memory.NewChatRepository(),
		attempts:  memory.NewAttemptRepository(),
		progress:  memory.NewProgressRepository(domain.DefaultAchievements()),
		users:     memory.NewUserRepository(),
		bank:      memory.NewStaticQuestionBank(domain.DefaultQuestionBank()),
	}
}

func postgresRepositories(pool *pgxpool.Pool, quizID string) repositories {
	return repositories{
		tasks:     postgres.NewTaskRepository(pool),
		summaries: postgres.NewSummaryRepository(pool),
		chat:      postgres.NewChatRepository(pool),
		attempts:  postgres.NewAttemptRepository(pool),
		progress:  postgres.NewProgressRepository(pool),
		users:     postgres.NewUserRepository(pool),
		bank:      postgres.NewQuestionBank(pool, quizID),
	}
}

// quizSessionStore is a session repository that can expire idle sessions.
type quizSessionStore interface {
	app.QuizSessionRepository
	Sweep() []string
}

// sweepQuizSessions closes idle quiz sessions until ctx ends.
func sweepQuizSessions(ctx context.Context, store quizSessionStore, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if expired := store.Sweep(); len(expired) > 0 {
				log.Printf("expired %d idle quiz sessions", len(expired))
			}
		case <-ctx.Done():
			return
		}
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	repos := memoryRepositories()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		repos = postgresRepositories(pool, cfg.Postgres.QuizID)
	}

	var events event.Publisher = event.LogPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPub, err := event.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		events = amqpPub
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisinfra.NewQuestionBank(redisClient, repos.bank, quizTTL)
	} else {
		bank = memory.NewCachedQuestionBank(repos.bank, quizTTL)
	}

	local := memory.NewQuizSessionStore().WithIdleTimeout(config.TTLDuration(cfg.Quiz.IdleTimeout, 30*time.Minute))
	var sessions quizSessionStore = local
	if redisClient != nil {
		sessions = redisinfra.NewQuizSessionStore(redisClient, redisTTL).WithLocal(local)
	}
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepQuizSessions(sweepCtx, sessions, local.IdleTimeout())

	progress := app.NewProgressService(repos.progress, events)
	dashboard := app.NewDashboard(
		app.NewTaskService(repos.tasks, progress, events),
		app.NewSummaryService(repos.summaries, progress, events, config.TTLDuration(cfg.Summary.Delay, 2*time.Second)),
		app.NewQuizService(sessions, bank, repos.attempts, progress, events, config.TTLDuration(cfg.Quiz.GenerateDelay, 2*time.Second)),
		app.NewChatService(repos.chat, config.TTLDuration(cfg.Chat.ReplyDelay, 1500*time.Millisecond)),
		progress,
	)
	defer dashboard.Shutdown()

	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Printf("jwt secret not configured, using development secret")
	}
	authSvc := auth.NewService(repos.users, cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewHandler(dashboard, authSvc).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting studybuddy on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
