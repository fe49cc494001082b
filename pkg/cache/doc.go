// Package cache provides the typed caches the console keeps between
// requests: the current-user lookup behind the auth middleware, the last
// successfully fetched page data, browser sessions and staged CSV uploads.
//
// Two backends implement Cache. Memory is process-local and bounded by
// WithCapacity. Redis is used when the console runs as several instances:
//
//	client := redis.MustOpen(ctx, cfg.RedisURL)
//	sessions := cache.NewRedis[session.Record](client, nil,
//	    cache.WithNamespace("sess"),
//	)
//
// A Loader collapses concurrent misses for one key into one call:
//
//	users := cache.NewLoader[sakeapi.User](cache.NewMemory[sakeapi.User]())
//	user, err := users.Get(ctx, key, func(ctx context.Context) (sakeapi.User, time.Duration, error) {
//	    u, err := api.CurrentUser(ctx)
//	    return u, 30 * time.Second, err
//	})
package cache
