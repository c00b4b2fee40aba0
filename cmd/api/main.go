package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"llm_api/answer"
	"llm_api/cache"
	lruCache "llm_api/cache/lru"
	redisCache "llm_api/cache/redis"
	"llm_api/completion"
	"llm_api/completion/gemini"
	"llm_api/config"
	"llm_api/logger"
	"llm_api/server"
	"llm_api/taskqueue"
)

func main() {
	var (
		configPath string
		addr       string
		dev        bool
	)

	rootCmd := &cobra.Command{
		Use:   "api",
		Short: "HTTP API answering questions through Gemini",
		Long:  `api serves the question answering endpoints, with an LRU answer cache and a task queue for async generation.`,
		Run: func(cmd *cobra.Command, args []string) {
			run(configPath, addr, dev)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVarP(&addr, "addr", "a", "", "Bind address, overrides config and HOST/PORT")
	rootCmd.Flags().BoolVarP(&dev, "dev", "d", false, "Development mode: debug logging and pprof endpoints")

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}

func run(configPath string, addr string, dev bool) {
	logger.Init(false)
	config.LoadDotenv()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dev {
		cfg.DevMode = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config: %v", err)
	}
	logger.Init(cfg.DevMode)

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	completionSvc := gemini.New(cfg.Endpoint, cfg.Model, cfg.GeminiAPIKey)
	pipeline := answer.NewPipeline(completion.PromptTemplate(cfg.PromptTemplate), completionSvc)

	var cacheSvc cache.Service
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		cacheSvc = redisCache.New(cfg.Cache.RedisAddr, cfg.Cache.TTL())
	default:
		cacheSvc, err = lruCache.New(cfg.Cache.Capacity)
		if err != nil {
			logger.Fatal("Failed to init cache: %v", err)
		}
	}
	defer cacheSvc.Shutdown()

	store, err := taskqueue.OpenSQLStore(cfg.Store.Path)
	if err != nil {
		logger.Fatal("Failed to open task store: %v", err)
	}
	defer store.Close()

	brokerAddr := cfg.Broker.RedisAddr
	if cfg.Broker.Mode == config.BrokerEmbedded {
		embedded, err := taskqueue.StartEmbeddedBroker()
		if err != nil {
			logger.Fatal("Failed to start embedded broker: %v", err)
		}
		defer embedded.Close()
		brokerAddr = embedded.Addr()
		logger.Info("Embedded broker listening on %s", brokerAddr)
	}
	redisOpt := asynq.RedisClientOpt{Addr: brokerAddr}

	// with the embedded broker no external worker can reach the queue,
	// so the worker pool runs in-process
	if cfg.Broker.Mode == config.BrokerEmbedded {
		processor := taskqueue.NewProcessor(redisOpt, store, pipeline.Answer, taskqueue.ProcessorConfig{
			Concurrency: cfg.Queue.Concurrency,
		})
		if err := processor.Start(); err != nil {
			logger.Fatal("Failed to start worker pool: %v", err)
		}
		defer processor.Shutdown()
	}

	client := taskqueue.NewClient(redisOpt, store, taskqueue.ClientOptions{})
	defer client.Close()

	srv := server.New(answer.NewCached(pipeline, cacheSvc), client, store)
	router := srv.Router()

	if cfg.DevMode {
		logger.Info("Debug mode on")
		registerPprof(router)
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting server at %s", cfg.Addr)
		errChan <- httpServer.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down http server: %v", err)
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Error running http server: %v", err)
		}
	}
}

func registerPprof(router *gin.Engine) {
	router.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	router.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	router.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	router.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	router.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
}
