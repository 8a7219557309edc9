// Package redis stores chat documents in Redis.
//
// Client wraps go-redis with the chatgate logger; TypedStore keeps one
// JSON value per key and implements provider.Store:
//
//	client, err := redis.New(redis.Config{Addr: "localhost:6379"}, log)
//	store := redis.NewTypedStore[chat.Envelope](client, "")
package redis
