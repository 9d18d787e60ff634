package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/habitchain/backend/pkg/kafka"
	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSubscriber(*cli.Context) error {
	s.loadService()
	cfg := xcontext.Configs(s.ctx).Kafka

	router := pubsub.Router{
		cfg.PayoutResultTopic: s.payoutDomain.Subscribe,
		cfg.DepositTopic:      s.depositDomain.Subscribe,
	}

	subscriber, err := kafka.NewSubscriber(cfg.GroupID, []string{cfg.Addr}, router)
	if err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot create subscriber: %v", err)
		return err
	}

	go s.startPrometheus()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	subscriber.Subscribe(ctx)
	xcontext.Logger(s.ctx).Infof("Subscribed to %v", router.Topics())

	<-ctx.Done()
	return subscriber.Stop(s.ctx)
}
