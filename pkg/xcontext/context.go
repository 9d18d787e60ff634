package xcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/habitchain/backend/config"
	"github.com/habitchain/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey   struct{}
	loggerKey    struct{}
	dbKey        struct{}
	dbTxKey      struct{}
	snowflakeKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg := ctx.Value(configsKey{})
	if cfg == nil {
		return config.Configs{}
	}

	return cfg.(config.Configs)
}

func WithLogger(ctx context.Context, logger logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func Logger(ctx context.Context) logger.Logger {
	l := ctx.Value(loggerKey{})
	if l == nil {
		return logger.NewLogger(logger.INFO)
	}

	return l.(logger.Logger)
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node := ctx.Value(snowflakeKey{})
	if node == nil {
		return nil
	}

	return node.(*snowflake.Node)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if WithDBTransaction was called on this
// context, otherwise the root database.
func DB(ctx context.Context) *gorm.DB {
	if tx := ctx.Value(dbTxKey{}); tx != nil {
		return tx.(*gorm.DB)
	}

	db := ctx.Value(dbKey{})
	if db == nil {
		return nil
	}

	return db.(*gorm.DB)
}

func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTxKey{}, DB(ctx).Begin())
}

func WithCommitDBTransaction(ctx context.Context) error {
	tx := ctx.Value(dbTxKey{})
	if tx == nil {
		return nil
	}

	return tx.(*gorm.DB).Commit().Error
}

// WithRollbackDBTransaction is safe to defer right after WithDBTransaction; it
// is a no-op on a committed transaction.
func WithRollbackDBTransaction(ctx context.Context) {
	tx := ctx.Value(dbTxKey{})
	if tx == nil {
		return
	}

	tx.(*gorm.DB).Rollback()
}
