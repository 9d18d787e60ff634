package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/habitchain/backend/config"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/logger"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/habitchain/backend/pkg/xredis"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMockContext returns a context holding a fresh in-memory database with all
// tables migrated.
func NewMockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	cfg := config.Default()
	cfg.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.Database = dsn
	cfg.Challenge.OperatorAddress = Operator.Hex()
	cfg.Challenge.WeekDuration = config.Duration{Duration: time.Hour}

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

// MockContextWithCaller authenticates address on ctx.
func MockContextWithCaller(ctx context.Context, address string) context.Context {
	return xcontext.WithRequestUserID(ctx, address)
}

// NewRedisClient starts an in-process redis server for the duration of the
// test.
func NewRedisClient(t *testing.T, ctx context.Context) (xredis.Client, *miniredis.Miniredis) {
	server := miniredis.RunT(t)

	cfg := xcontext.Configs(ctx)
	cfg.Redis.Addr = server.Addr()

	client, err := xredis.NewClient(xcontext.WithConfigs(ctx, cfg))
	require.NoError(t, err)

	return client, server
}
