package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	dueSetKey   = "rabbitflow:schedules:due"
	recordsKey  = "rabbitflow:schedules:records"
	defaultAddr = "localhost:6379"
)

// ErrScheduleNotFound indicates no schedule exists for the workflow.
var ErrScheduleNotFound = errors.New("schedule not found")

// RedisStore keeps schedules in a sorted set scored by due time, with the
// full records in a companion hash. Multiple scheduler processes can share it.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	if addr == "" {
		addr = defaultAddr
	}

	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Save upserts a schedule and indexes its due time.
func (s *RedisStore) Save(ctx context.Context, schedule *Schedule) error {
	record, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshaling schedule: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, recordsKey, schedule.WorkflowID, record)
	pipe.ZAdd(ctx, dueSetKey, redis.Z{
		Score:  float64(schedule.NextDueAt.Unix()),
		Member: schedule.WorkflowID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving schedule %s: %w", schedule.WorkflowID, err)
	}

	return nil
}

// Get returns the schedule for a workflow.
func (s *RedisStore) Get(ctx context.Context, workflowID string) (*Schedule, error) {
	record, err := s.client.HGet(ctx, recordsKey, workflowID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, workflowID)
		}

		return nil, fmt.Errorf("loading schedule %s: %w", workflowID, err)
	}

	var schedule Schedule
	if err := json.Unmarshal([]byte(record), &schedule); err != nil {
		return nil, fmt.Errorf("decoding schedule %s: %w", workflowID, err)
	}

	return &schedule, nil
}

// Due returns every schedule whose due time is at or before the given moment.
func (s *RedisStore) Due(ctx context.Context, before time.Time) ([]*Schedule, error) {
	ids, err := s.client.ZRangeByScore(ctx, dueSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", before.Unix()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("querying due schedules: %w", err)
	}

	schedules := make([]*Schedule, 0, len(ids))

	for _, id := range ids {
		schedule, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrScheduleNotFound) {
				continue
			}

			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	return schedules, nil
}

// Delete removes a workflow's schedule.
func (s *RedisStore) Delete(ctx context.Context, workflowID string) error {
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, recordsKey, workflowID)
	pipe.ZRem(ctx, dueSetKey, workflowID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting schedule %s: %w", workflowID, err)
	}

	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
