package reaction

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store holds reaction counters per comment.
type Store interface {
	// Increment bumps one counter by 1 and returns both counters as
	// they stand after the increment.
	Increment(ctx context.Context, commentID int64, kind Kind) (Counters, error)
	Counters(ctx context.Context, commentID int64) (Counters, error)
	// SumLikes returns the total likes across the given comments.
	SumLikes(ctx context.Context, commentIDs []int64) (int64, error)
}

const (
	fieldLikes    = "likes"
	fieldDislikes = "dislikes"
)

func commentKey(commentID int64) string {
	return fmt.Sprintf("comment:%d:reactions", commentID)
}

func (k Kind) field() string {
	if k == KindDislike {
		return fieldDislikes
	}
	return fieldLikes
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Increment(ctx context.Context, commentID int64, kind Kind) (Counters, error) {
	key := commentKey(commentID)

	var incr *redis.IntCmd
	var other *redis.StringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, kind.field(), 1)
		otherField := fieldDislikes
		if kind == KindDislike {
			otherField = fieldLikes
		}
		other = pipe.HGet(ctx, key, otherField)
		return nil
	})
	if err != nil && err != redis.Nil {
		return Counters{}, fmt.Errorf("failed to increment reaction: %w", err)
	}

	otherVal, err := other.Int64()
	if err == redis.Nil {
		otherVal = 0
	} else if err != nil {
		return Counters{}, fmt.Errorf("failed to read reaction counter: %w", err)
	}

	counters := Counters{}
	if kind == KindDislike {
		counters.Dislikes = incr.Val()
		counters.Likes = otherVal
	} else {
		counters.Likes = incr.Val()
		counters.Dislikes = otherVal
	}
	return counters, nil
}

func (s *RedisStore) Counters(ctx context.Context, commentID int64) (Counters, error) {
	values, err := s.client.HMGet(ctx, commentKey(commentID), fieldLikes, fieldDislikes).Result()
	if err != nil {
		return Counters{}, fmt.Errorf("failed to read reaction counters: %w", err)
	}

	var counters Counters
	counters.Likes = hashFieldToInt64(values[0])
	counters.Dislikes = hashFieldToInt64(values[1])
	return counters, nil
}

func (s *RedisStore) SumLikes(ctx context.Context, commentIDs []int64) (int64, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}

	cmds := make([]*redis.StringCmd, len(commentIDs))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range commentIDs {
			cmds[i] = pipe.HGet(ctx, commentKey(id), fieldLikes)
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("failed to sum likes: %w", err)
	}

	var total int64
	for _, cmd := range cmds {
		v, err := cmd.Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read like counter: %w", err)
		}
		total += v
	}
	return total, nil
}

// hashFieldToInt64 tolerates absent fields (HMGET yields nil) and
// string values from Redis.
func hashFieldToInt64(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// MemoryStore backs tests and local development.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[int64]Counters
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[int64]Counters)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Increment(ctx context.Context, commentID int64, kind Kind) (Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters[commentID]
	if kind == KindDislike {
		c.Dislikes++
	} else {
		c.Likes++
	}
	s.counters[commentID] = c
	return c, nil
}

func (s *MemoryStore) Counters(ctx context.Context, commentID int64) (Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[commentID], nil
}

func (s *MemoryStore) SumLikes(ctx context.Context, commentIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, id := range commentIDs {
		total += s.counters[id].Likes
	}
	return total, nil
}
