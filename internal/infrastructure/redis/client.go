package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to redis and verifies the connection with a ping.
func NewClient(address string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		PoolSize: 100,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
