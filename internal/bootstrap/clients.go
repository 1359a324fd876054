package bootstrap

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// InitFirestore honours FIRESTORE_EMULATOR_HOST through the client library.
func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	return firestore.NewClient(ctx, projectID)
}

func InitRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
