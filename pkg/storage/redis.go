package storage

import (
	"fmt"

	"github.com/dhis2-sre/eventos/pkg/config"
	"github.com/go-redis/redis"
)

// NewRedis connects to the Redis holding the sessions and fails if it can't be reached.
func NewRedis(c config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password: c.Password,
		DB:       c.DB,
	})

	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s:%d: %v", c.Host, c.Port, err)
	}

	return client, nil
}
