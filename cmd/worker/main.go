package main

import (
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"llm_api/answer"
	"llm_api/completion"
	"llm_api/completion/gemini"
	"llm_api/config"
	"llm_api/logger"
	"llm_api/taskqueue"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "worker",
		Short: "Background worker answering queued questions",
		Long:  `worker consumes question tasks from the redis broker, generates answers through Gemini and records results in the task store.`,
		Run: func(cmd *cobra.Command, args []string) {
			run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}

func run(configPath string) {
	logger.Init(false)
	config.LoadDotenv()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config: %v", err)
	}
	logger.Init(cfg.DevMode)

	if cfg.Broker.Mode != config.BrokerRedis {
		logger.Fatal("The worker needs an external broker, set broker mode to %q or set REDIS_ADDR", config.BrokerRedis)
	}

	store, err := taskqueue.OpenSQLStore(cfg.Store.Path)
	if err != nil {
		logger.Fatal("Failed to open task store: %v", err)
	}
	defer store.Close()

	// worker answers are always generated fresh, only the sync endpoint
	// reads the cache
	completionSvc := gemini.New(cfg.Endpoint, cfg.Model, cfg.GeminiAPIKey)
	pipeline := answer.NewPipeline(completion.PromptTemplate(cfg.PromptTemplate), completionSvc)

	processor := taskqueue.NewProcessor(
		asynq.RedisClientOpt{Addr: cfg.Broker.RedisAddr},
		store,
		pipeline.Answer,
		taskqueue.ProcessorConfig{Concurrency: cfg.Queue.Concurrency},
	)

	logger.Info("Starting worker with concurrency %d against broker %s", cfg.Queue.Concurrency, cfg.Broker.RedisAddr)
	if err := processor.Run(); err != nil {
		logger.Fatal("Error running worker: %v", err)
	}
}
