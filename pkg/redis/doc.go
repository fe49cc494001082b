// Package redis opens the optional Redis connection that backs sessions
// and shared caches when the console runs on more than one instance.
//
//	client, err := redis.Open(ctx, cfg.RedisURL, redis.WithRetry(5, time.Second))
//	if err != nil {
//	    return err
//	}
//	app := admin.New(
//	    admin.WithHealthChecks(admin.WithReadinessCheck("redis", redis.Ping(client))),
//	    admin.WithShutdownHook(redis.Closer(client)),
//	)
package redis
