package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type Publishable interface {
	GetEventTopicName() string
}

type Client struct {
	client *pubsub.Client
}

func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("pub sub missing projectID to initialize")
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing pub sub connection: %w", err)
	}

	log.Info().Str("projectId", projectID).Msg("Successful pubsub init")
	return &Client{client: client}, nil
}

// Subscribe blocks receiving messages until ctx is done.
func (c *Client) Subscribe(ctx context.Context, subscriptionHandler SubscriptionHandler) {
	sub := c.client.Subscription(subscriptionHandler.SubscriptionId)
	err := sub.Receive(ctx, subscriptionHandler.Handler)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Subscriber error for sub id %s", subscriptionHandler.SubscriptionId))
	}
}

// Publish sends the message and waits for the server acknowledgement.
func (c *Client) Publish(ctx context.Context, message Publishable) error {
	t, err := c.getTopic(ctx, message.GetEventTopicName())
	if err != nil {
		return err
	}
	defer t.Stop()

	data, err := encodeMessage(message)
	if err != nil {
		return err
	}

	result := t.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Failed to publish message for %s", message.GetEventTopicName()))
		return err
	}
	return nil
}

func (c *Client) Close() {
	if err := c.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing pubsub client")
	}
}

func (c *Client) getTopic(ctx context.Context, topicName string) (*pubsub.Topic, error) {
	t := c.client.Topic(topicName)
	exists, err := t.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking topic %s: %w", topicName, err)
	}
	if exists {
		return t, nil
	}

	log.Info().Msg(fmt.Sprintf("Topic %s does not exist. Creating new", topicName))
	nt, err := c.client.CreateTopic(ctx, topicName)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Cant create topic %s", topicName))
		return nil, err
	}
	return nt, nil
}

func encodeMessage(message any) ([]byte, error) {
	switch m := message.(type) {
	case string:
		return []byte(m), nil
	default:
		return json.Marshal(message)
	}
}
