package app

import (
	"context"
	"log/slog"
	"time"

	httpapp "guidebolt/internal/app/http"
	"guidebolt/internal/config"
	"guidebolt/internal/lib/logger/sl"
	"guidebolt/internal/repository"
	guide "guidebolt/internal/services/guide_service"
	media "guidebolt/internal/services/media_service"
	resp "guidebolt/internal/services/response_service"
	"guidebolt/internal/storage/filestorage"
	redisapp "guidebolt/internal/storage/redis"
	httprouters "guidebolt/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Repo       *repository.Repository
	Redis      *redisapp.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	repo, err := repository.NewRepository(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	fileStorage, err := filestorage.NewLocalFileStorage(
		cfg.FileStorage.BaseDir,
		cfg.FileStorage.BaseURL,
		cfg.FileStorage.MaxSize,
		cfg.FileStorage.AllowedTypes,
	)
	if err != nil {
		panic(err)
	}

	// Черновики редактора живут в Redis; без него переживание
	// перезапуска не гарантируется, но редактор остается рабочим
	drafts, redisClient := buildDraftRepository(log, cfg)

	guideService := guide.NewGuideService(log, repo.Guide, repo.Response, drafts)
	mediaService := media.NewMediaService(log, fileStorage)
	responseService := resp.NewResponseService(log, repo.Response)

	routers := httprouters.NewRouter(log, guideService, mediaService, responseService)

	server := httpapp.New(log, cfg.AppSecret, cfg.HTTP.Host, cfg.HTTP.Port, fileStorage.GetBaseDir(), routers)

	return &App{
		HTTPServer: server,
		Repo:       repo,
		Redis:      redisClient,
	}
}

func buildDraftRepository(log *slog.Logger, cfg *config.Config) (repository.DraftRepository, *redisapp.Client) {
	if cfg.Redis.RedisAddr == "" {
		log.Warn("redis address is not configured, editor drafts are kept in memory")
		return repository.NewMemoryDraftRepo(cfg.Editor.DraftTTL), nil
	}

	client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		log.Warn("redis is unreachable, editor drafts are kept in memory", sl.Err(err))
		client.Close()
		return repository.NewMemoryDraftRepo(cfg.Editor.DraftTTL), nil
	}

	return repository.NewRedisDraftRepo(client), client
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	a.Repo.Close()
}
