package config

import (
	"fmt"
	"time"
)

const (
	defaultQueueName         = "activity_events"
	defaultReconnectInterval = 5 * time.Second
	defaultPrefetchCount     = 100
)

// QueueConfig defines the connection to the RabbitMQ activity source.
type QueueConfig struct {
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Url               string        `mapstructure:"url"`
	QueueName         string        `mapstructure:"queue-name"`
	PrefetchCount     int           `mapstructure:"prefetch-count"`
	ReconnectInterval time.Duration `mapstructure:"reconnect-interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.User == "" {
		return fmt.Errorf("queue user is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("queue password is required")
	}
	if cfg.Url == "" {
		return fmt.Errorf("queue url is required")
	}
	if cfg.QueueName == "" {
		cfg.QueueName = defaultQueueName
	}
	if cfg.PrefetchCount <= 0 {
		cfg.PrefetchCount = defaultPrefetchCount
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = defaultReconnectInterval
	}

	return nil
}

func (cfg *QueueConfig) AmqpURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.User, cfg.Password, cfg.Url)
}
