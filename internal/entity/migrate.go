package entity

import (
	"context"

	"github.com/habitchain/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Challenge{},
		&Participant{},
		&LedgerTransaction{},
		&Payout{},
		&Account{},
		&Deposit{},
	)
}
