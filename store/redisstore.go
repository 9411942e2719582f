package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"kirana/utils"
)

// OpenRedis opens a handle backed by Redis. Values live under
// "<namespace>:<key>" and every write is announced on the
// "<namespace>:changes" pub/sub channel, so handles in other processes get
// the change signal too.
func OpenRedis(ctx context.Context, addr, namespace string) (Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	s := &redisStore{
		client: client,
		ns:     namespace,
		origin: utils.GetUUID(),
		subs:   make(map[int]func(Change)),
	}
	s.pubsub = client.Subscribe(ctx, s.channel())
	go s.listen()
	return s, nil
}

type redisStore struct {
	client *redis.Client
	ns     string
	origin string
	pubsub *redis.PubSub

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

func (s *redisStore) channel() string { return s.ns + ":changes" }

func (s *redisStore) valueKey(key string) string { return s.ns + ":" + key }

func (s *redisStore) listen() {
	for msg := range s.pubsub.Channel() {
		var ch Change
		if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
			log.Printf("store: bad change payload: %v", err)
			continue
		}
		if ch.Origin == s.origin {
			continue
		}
		s.mu.Lock()
		fns := make([]func(Change), 0, len(s.subs))
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(ch)
		}
	}
}

func (s *redisStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.valueKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *redisStore) Write(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.valueKey(key), data, 0).Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(Change{Key: key, Origin: s.origin})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel(), payload).Err(); err != nil {
		log.Printf("store: publish change for %q failed: %v", key, err)
	}
	return nil
}

func (s *redisStore) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *redisStore) Origin() string { return s.origin }

func (s *redisStore) Close() error {
	s.pubsub.Close()
	return s.client.Close()
}
