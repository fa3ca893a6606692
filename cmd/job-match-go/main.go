package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"job-match-go/internal/api/handler"
	"job-match-go/internal/api/router"
	"job-match-go/internal/config"
	"job-match-go/internal/constants"
	"job-match-go/internal/logger"
	"job-match-go/internal/parser"
	"job-match-go/internal/processor"
	"job-match-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	var configPath string
	pflag.StringVar(&configPath, "config", "config.yaml", "配置文件路径")
	pflag.Parse()

	// .env用于本地开发注入密钥，不存在时忽略
	_ = godotenv.Load()

	ctx := context.Background()

	// 1. 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	logger.Info().Str("config", configPath).Msg("配置加载成功")

	// 2. 初始化存储层
	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化存储层失败: %v", err)
	}
	defer store.Close()
	logger.Info().Msg("存储层初始化成功")

	// 3. 初始化解析和向量化组件
	tikaExtractor := parser.NewTikaExtractor(cfg.Tika.ServerURL,
		parser.WithTikaTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))

	referenceYear := cfg.JobCache.ReferenceYear
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}
	resumeParser := parser.NewResumeParser(
		parser.WithReferenceYear(referenceYear),
		parser.WithSkillContext(true),
	)

	embedder, err := parser.NewAliyunEmbedder(cfg.Embedding.APIKey, cfg.Embedding)
	if err != nil {
		log.Fatalf("初始化向量化组件失败: %v", err)
	}

	jsearchClient, err := parser.NewJSearchClient(&cfg.JSearch)
	if err != nil {
		log.Fatalf("初始化JSearch客户端失败: %v", err)
	}

	// 4. 组装业务服务
	compOpts := []processor.ComponentOpt{
		processor.WithcompTextExtractor(tikaExtractor),
		processor.WithcompResumeParser(resumeParser),
		processor.WithcompEmbedder(embedder),
		processor.WithcompJobSource(jsearchClient),
		processor.WithcompStorage(store),
	}

	ttlDays := cfg.JobCache.TTLDays
	if ttlDays <= 0 {
		ttlDays = constants.DefaultJobCacheTTLDays
	}
	setOpts := []processor.SettingOpt{
		processor.WithsetJobCacheTTL(time.Duration(ttlDays) * 24 * time.Hour),
		processor.WithsetDefaultLocation(cfg.JSearch.DefaultLocation),
		processor.WithsetDebug(cfg.Logger.Level == "debug"),
	}

	resumeService, err := processor.NewResumeService(compOpts, setOpts)
	if err != nil {
		log.Fatalf("初始化简历服务失败: %v", err)
	}

	matchService, err := processor.NewJobMatchService(compOpts, setOpts)
	if err != nil {
		log.Fatalf("初始化岗位匹配服务失败: %v", err)
	}
	logger.Info().Msg("业务服务初始化成功")

	// 5. 启动周期性缓存清理
	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	if cfg.JobCache.Enable {
		intervalHours := cfg.JobCache.CleanupIntervalHours
		if intervalHours <= 0 {
			intervalHours = 24
		}
		go runCleanupLoop(cleanupCtx, matchService, time.Duration(intervalHours)*time.Hour)
	}

	// 6. 注册路由并启动Hertz服务器
	resumeHandler := handler.NewResumeHandler(cfg, resumeService)
	jobMatchHandler := handler.NewJobMatchHandler(cfg, matchService)

	h := server.Default(server.WithHostPorts(cfg.Server.Address))
	router.RegisterRoutes(h, resumeHandler, jobMatchHandler)

	// 收到退出信号时先停清理协程再关服务器
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("收到退出信号，开始关闭")
		cancelCleanup()
		_ = h.Shutdown(ctx)
	}()

	logger.Info().Str("address", cfg.Server.Address).Msg("服务启动")
	h.Spin()
}

// runCleanupLoop 周期性清理过期的岗位缓存，ctx取消时退出
func runCleanupLoop(ctx context.Context, matchService *processor.JobMatchService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("缓存清理协程退出")
			return
		case <-ticker.C:
			deleted, err := matchService.CleanupExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("清理过期缓存失败")
				continue
			}
			logger.Info().Int64("deleted", deleted).Msg("过期缓存清理完成")
		}
	}
}
