package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"conferencehub/internal/domain"
)

const (
	daysKey       = "schedule:days"
	dayKeyPrefix  = "schedule:day:"
	dayKeyPattern = dayKeyPrefix + "*"
)

type scheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScheduleCache returns a ScheduleCache backed by Redis. Entries expire
// after ttl; a miss or any Redis failure surfaces as domain.ErrNotFound so
// callers fall through to the database.
func NewScheduleCache(client *redis.Client, ttl time.Duration) domain.ScheduleCache {
	return &scheduleCache{client: client, ttl: ttl}
}

// NewClient connects to Redis at addr and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func dayKey(day time.Time) string {
	return dayKeyPrefix + day.Format("2006-01-02")
}

func (c *scheduleCache) GetDays(ctx context.Context) ([]time.Time, error) {
	raw, err := c.client.Get(ctx, daysKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var days []time.Time
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, domain.ErrNotFound
	}
	return days, nil
}

func (c *scheduleCache) SetDays(ctx context.Context, days []time.Time) error {
	raw, err := json.Marshal(days)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, daysKey, raw, c.ttl).Err()
}

func (c *scheduleCache) GetDaySchedule(ctx context.Context, day time.Time) ([]*domain.LocationSchedule, error) {
	raw, err := c.client.Get(ctx, dayKey(day)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var schedule []*domain.LocationSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil, domain.ErrNotFound
	}
	return schedule, nil
}

func (c *scheduleCache) SetDaySchedule(ctx context.Context, day time.Time, schedule []*domain.LocationSchedule) error {
	raw, err := json.Marshal(schedule)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dayKey(day), raw, c.ttl).Err()
}

// Invalidate drops every cached schedule entry. Called after each
// successful subscribe/unsubscribe so cached subscriber lists and vacancy
// counts never outlive a mutation.
func (c *scheduleCache) Invalidate(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, dayKeyPattern).Result()
	if err != nil {
		return err
	}
	keys = append(keys, daysKey)
	return c.client.Del(ctx, keys...).Err()
}
