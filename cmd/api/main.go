package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/google"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/google/googleclient"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/naver"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/naver/naverclient"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/tiktok"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/tiktok/tiktokclient"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/api"
	"github.com/vfg2006/adsync-api/internal/api/handler"
	"github.com/vfg2006/adsync-api/internal/cache"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/scheduler"
	"github.com/vfg2006/adsync-api/internal/usecases/authenticating"
	"github.com/vfg2006/adsync-api/internal/usecases/connecting"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/pkg/log"
	"github.com/vfg2006/adsync-api/pkg/tokencrypt"
	"github.com/vfg2006/adsync-api/pkg/utils"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	redisClient := redisconn(ctx, cfg.Redis)
	defer redisClient.Close()

	cipher, err := tokencrypt.New(cfg.Encryption.Key, cfg.Encryption.PreviousKeys...)
	if err != nil {
		logrus.WithError(err).Fatal("Chave de criptografia inválida")
	}

	accountRepo := repository.NewAccountRepository(pgConn)
	campaignRepo := repository.NewCampaignRepository(pgConn)
	insightRepo := repository.NewInsightRepository(pgConn)
	stateStore := repository.NewOAuthStateStore(redisClient)

	registry := newRegistry(cfg, utils.NewHTTPClient(cfg.RateLimit.HTTPTimeout))

	insightCache := cache.New[[]domain.NormalizedInsight](cfg.Sync.CacheMaxEntries, nil)
	syncService := syncing.NewService(
		cfg.Sync,
		accountRepo,
		campaignRepo,
		insightRepo,
		registry,
		cipher,
		insightCache,
		nil,
	)

	connectService := connecting.NewService(accountRepo, stateStore, registry, cipher, insightCache, cfg)
	authenticator := authenticating.NewService(cfg.Auth)

	accountSyncService := scheduler.NewAccountSyncService(accountRepo, campaignRepo, syncService, cfg.Scheduler)
	if err := accountSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de contas")
	} else {
		logrus.Info("Agendador de sincronização de contas iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		authenticator,
		connectService,
		syncService,
		handler.Repositories{
			Accounts:  accountRepo,
			Campaigns: campaignRepo,
			Insights:  insightRepo,
		},
		accountSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// newRegistry cria um cliente por plataforma, cada um com seu próprio limitador
func newRegistry(cfg *config.Config, httpClient *http.Client) *integrator.Registry {
	limiter := func(p domain.Platform) *rate.Limiter {
		return utils.NewLimiter(cfg.RateLimit.RPS(p), cfg.RateLimit.Burst)
	}

	return integrator.NewRegistry(
		meta.New(cfg.Meta, metaclient.NewClient(cfg.Meta, httpClient, limiter(domain.PlatformMeta))),
		google.New(cfg.Google, googleclient.NewClient(cfg.Google, httpClient, limiter(domain.PlatformGoogle))),
		tiktok.New(cfg.TikTok, tiktokclient.NewClient(cfg.TikTok, httpClient, limiter(domain.PlatformTikTok))),
		naver.New(naverclient.NewClient(cfg.Naver, httpClient, limiter(domain.PlatformNaver))),
	)
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

func redisconn(ctx context.Context, cfg config.Redis) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao Redis")
	}

	logrus.Info("Conexão com Redis estabelecida com sucesso")
	return client
}
