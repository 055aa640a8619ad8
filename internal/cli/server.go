package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"medprep-quiz-service/internal/app"
	"medprep-quiz-service/internal/config"
	"medprep-quiz-service/internal/domain"
	"medprep-quiz-service/internal/infra/grading"
	"medprep-quiz-service/internal/infra/httpapi"
	"medprep-quiz-service/internal/infra/memory"
	pgstore "medprep-quiz-service/internal/infra/postgres"
	redisstore "medprep-quiz-service/internal/infra/redis"
	transport "medprep-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
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
	attemptTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestionSets())
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questions app.QuestionSource
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
	}

	var attempts app.AttemptRepository
	if redisClient != nil {
		attempts = redisstore.NewAttemptStore(redisClient, attemptTTL)
	} else {
		attempts = memory.NewAttemptStore()
	}

	var submitter app.Submitter
	if cfg.Results.BaseURL != "" {
		timeout := config.TTLDuration(cfg.Results.Timeout, 15*time.Second)
		submitter = httpapi.NewSubmitter(cfg.Results.BaseURL, timeout)
	} else {
		var recorder grading.Recorder
		if cfg.Postgres.URL != "" {
			sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
			bundb := bun.NewDB(sqldb, pgdialect.New())
			defer bundb.Close()
			recorder = pgstore.NewAttemptRecorder(bundb)
		}
		submitter = grading.NewSubmitter(questions, recorder)
	}

	service := app.NewQuizService(attempts, questions, submitter)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz attempt service on :%s", finalPort)
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

// sampleQuestionSets provides demo content for running without Postgres.
func sampleQuestionSets() map[string][]domain.Question {
	return map[string][]domain.Question{
		"anatomy-1": {
			{
				ID:     "q1",
				Prompt: "Which chamber of the heart pumps oxygenated blood into the aorta?",
				Options: []domain.Option{
					{Key: "a", Content: "Right atrium"},
					{Key: "b", Content: "Left ventricle"},
					{Key: "c", Content: "Right ventricle"},
					{Key: "d", Content: "Left atrium"},
				},
				CorrectKey:  "b",
				Explanation: "The left ventricle ejects blood through the aortic valve.",
				Points:      1,
			},
			{
				ID:     "q2",
				Prompt: "Which nerve innervates the diaphragm?",
				Options: []domain.Option{
					{Key: "a", Content: "Vagus"},
					{Key: "b", Content: "Phrenic"},
					{Key: "c", Content: "Intercostal"},
					{Key: "d", Content: "Accessory"},
				},
				CorrectKey:  "b",
				Explanation: "The phrenic nerve arises from C3-C5.",
				Points:      1,
			},
		},
	}
}
