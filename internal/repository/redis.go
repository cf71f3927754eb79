package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"semainier/internal/clipboard"
	"semainier/internal/planning"
)

// DefaultBufferTTL bounds how long a copy buffer outlives its session.
const DefaultBufferTTL = 4 * time.Hour

// RedisRepository stores weeks, rosters and copy buffers in redis as JSON
// values.
type RedisRepository struct {
	client    *redis.Client
	bufferTTL time.Duration
}

// NewRedisRepository wraps an existing redis client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client, bufferTTL: DefaultBufferTTL}
}

func weekKey(shop, weekStart string) string {
	return fmt.Sprintf("planning:%s:%s", shop, weekStart)
}

func employeesKey(shop string) string {
	return fmt.Sprintf("employees:%s", shop)
}

func bufferKey(shop string) string {
	return fmt.Sprintf("copybuffer:%s", shop)
}

func gridSlotsKey(shop string) string {
	return fmt.Sprintf("gridslots:%s", shop)
}

// GetWeek returns the stored snapshot. A missing or unparseable value yields
// an empty snapshot, per the storage contract.
func (r *RedisRepository) GetWeek(ctx context.Context, shop, weekStart string) (planning.WeekSnapshot, error) {
	val, err := r.client.Get(ctx, weekKey(shop, weekStart)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return make(planning.WeekSnapshot), nil
		}
		return nil, fmt.Errorf("get week %s/%s: %w", shop, weekStart, err)
	}

	var snap planning.WeekSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return make(planning.WeekSnapshot), nil
	}
	if snap == nil {
		snap = make(planning.WeekSnapshot)
	}
	return snap, nil
}

func (r *RedisRepository) PutWeek(ctx context.Context, shop, weekStart string, snap planning.WeekSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal week %s/%s: %w", shop, weekStart, err)
	}
	if err := r.client.Set(ctx, weekKey(shop, weekStart), data, 0).Err(); err != nil {
		return fmt.Errorf("put week %s/%s: %w", shop, weekStart, err)
	}
	return nil
}

func (r *RedisRepository) GetEmployees(ctx context.Context, shop string) ([]string, error) {
	val, err := r.client.Get(ctx, employeesKey(shop)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employees %s: %w", shop, err)
	}

	var employees []string
	if err := json.Unmarshal([]byte(val), &employees); err != nil {
		return nil, nil
	}
	return employees, nil
}

func (r *RedisRepository) PutEmployees(ctx context.Context, shop string, employees []string) error {
	data, err := json.Marshal(employees)
	if err != nil {
		return fmt.Errorf("marshal employees %s: %w", shop, err)
	}
	if err := r.client.Set(ctx, employeesKey(shop), data, 0).Err(); err != nil {
		return fmt.Errorf("put employees %s: %w", shop, err)
	}
	return nil
}

func (r *RedisRepository) GetGridSlots(ctx context.Context, shop string) ([]string, error) {
	val, err := r.client.Get(ctx, gridSlotsKey(shop)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grid slots %s: %w", shop, err)
	}

	var slots []string
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, nil
	}
	return slots, nil
}

func (r *RedisRepository) PutGridSlots(ctx context.Context, shop string, slots []string) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal grid slots %s: %w", shop, err)
	}
	if err := r.client.Set(ctx, gridSlotsKey(shop), data, 0).Err(); err != nil {
		return fmt.Errorf("put grid slots %s: %w", shop, err)
	}
	return nil
}

// PurgeEmployee walks every planning key of the shop and drops the employee
// from each stored snapshot.
func (r *RedisRepository) PurgeEmployee(ctx context.Context, shop, employee string) error {
	pattern := fmt.Sprintf("planning:%s:*", shop)
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("purge %s from %s: %w", employee, key, err)
		}

		var snap planning.WeekSnapshot
		if err := json.Unmarshal([]byte(val), &snap); err != nil {
			continue
		}
		if _, ok := snap[employee]; !ok {
			continue
		}
		delete(snap, employee)
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("purge %s from %s: %w", employee, key, err)
		}
		if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
			return fmt.Errorf("purge %s from %s: %w", employee, key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("purge %s scan: %w", employee, err)
	}
	return nil
}

func (r *RedisRepository) GetBuffer(ctx context.Context, shop string) (*clipboard.Buffer, error) {
	val, err := r.client.Get(ctx, bufferKey(shop)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get buffer %s: %w", shop, err)
	}

	var buf clipboard.Buffer
	if err := json.Unmarshal([]byte(val), &buf); err != nil {
		return nil, nil
	}
	return &buf, nil
}

func (r *RedisRepository) PutBuffer(ctx context.Context, shop string, buf *clipboard.Buffer) error {
	data, err := json.Marshal(buf)
	if err != nil {
		return fmt.Errorf("marshal buffer %s: %w", shop, err)
	}
	if err := r.client.Set(ctx, bufferKey(shop), data, r.bufferTTL).Err(); err != nil {
		return fmt.Errorf("put buffer %s: %w", shop, err)
	}
	return nil
}

func (r *RedisRepository) ClearBuffer(ctx context.Context, shop string) error {
	if err := r.client.Del(ctx, bufferKey(shop)).Err(); err != nil {
		return fmt.Errorf("clear buffer %s: %w", shop, err)
	}
	return nil
}
