package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/habitchain/backend/config"
	"github.com/habitchain/backend/internal/common"
	"github.com/habitchain/backend/internal/domain"
	"github.com/habitchain/backend/internal/domain/statistic"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/kafka"
	"github.com/habitchain/backend/pkg/logger"
	"github.com/habitchain/backend/pkg/prometheus"
	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/habitchain/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher

	challengeRepo   repository.ChallengeRepository
	participantRepo repository.ParticipantRepository
	ledgerRepo      repository.LedgerTransactionRepository
	payoutRepo      repository.PayoutRepository
	accountRepo     repository.AccountRepository
	depositRepo     repository.DepositRepository

	leaderboard     statistic.Leaderboard
	challengeDomain domain.ChallengeDomain
	payoutDomain    domain.PayoutDomain
	depositDomain   domain.DepositDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))

	node, err := snowflake.NewNode(cfg.SnowFlake.NodeID)
	if err != nil {
		return err
	}
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)

	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka

	var err error
	s.publisher, err = kafka.NewPublisher(cfg.ClientID, []string{cfg.Addr})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.challengeRepo = repository.NewChallengeRepository()
	s.participantRepo = repository.NewParticipantRepository()
	s.ledgerRepo = repository.NewLedgerTransactionRepository()
	s.payoutRepo = repository.NewPayoutRepository()
	s.accountRepo = repository.NewAccountRepository()
	s.depositRepo = repository.NewDepositRepository()
}

func (s *srv) loadDomains() {
	s.leaderboard = statistic.New(s.participantRepo, s.redisClient)
	s.challengeDomain = domain.NewChallengeDomain(
		s.challengeRepo,
		s.participantRepo,
		s.ledgerRepo,
		s.payoutRepo,
		s.accountRepo,
		s.depositRepo,
		s.leaderboard,
		s.redisClient,
		s.publisher,
	)
	s.payoutDomain = domain.NewPayoutDomain(s.payoutRepo, s.publisher)
	s.depositDomain = domain.NewDepositDomain(s.challengeRepo, s.depositRepo, s.payoutRepo, s.accountRepo)
}

// loadService prepares everything a long running command needs.
func (s *srv) loadService() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadDomains()
}

func (s *srv) startPrometheus() {
	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.PrometheusServer.Address(),
		Handler: prometheus.NewHandler(common.PromCollectors()...),
	}

	xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		xcontext.Logger(s.ctx).Errorf("Prometheus server stopped: %v", err)
	}
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
