package kafka

import (
	"context"
	"errors"

	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/xcontext"

	"github.com/Shopify/sarama"
)

type subscriber struct {
	groupID     string
	brokerAddrs []string
	router      pubsub.Router
	client      sarama.ConsumerGroup
}

// NewSubscriber joins groupID and consumes every topic of router.
func NewSubscriber(groupID string, brokerAddrs []string, router pubsub.Router) (*subscriber, error) {
	if len(router) == 0 {
		return nil, errors.New("no topic to subscribe")
	}

	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		groupID:     groupID,
		brokerAddrs: brokerAddrs,
		router:      router,
		client:      client,
	}, nil
}

func (g *subscriber) Stop(ctx context.Context) error {
	return g.client.Close()
}

// Subscribe blocks until the first consumer session is set up. Messages are
// then handled in background until ctx is cancelled.
func (g *subscriber) Subscribe(ctx context.Context) {
	consumer := consumerGroupHandler{
		ready:  make(chan bool),
		router: g.router,
	}

	go func() {
		for {
			// Consume returns on every server-side rebalance, the session must be
			// recreated to get the new claims.
			if err := g.client.Consume(ctx, g.router.Topics(), &consumer); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}

				xcontext.Logger(ctx).Errorf("Error from consumer: %v", err)
			}

			if ctx.Err() != nil {
				return
			}

			consumer.ready = make(chan bool)
		}
	}()

	<-consumer.ready
}

type consumerGroupHandler struct {
	ready  chan bool
	router pubsub.Router
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *consumerGroupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		pack := &pubsub.Pack{Key: message.Key, Msg: message.Value}
		if !h.router.Handle(session.Context(), message.Topic, pack, message.Timestamp) {
			xcontext.Logger(session.Context()).Warnf("Skip message of unrouted topic %s", message.Topic)
		}

		session.MarkMessage(message, "")
	}

	return nil
}
