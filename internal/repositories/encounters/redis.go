package encounters

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	redisclient "github.com/KirkDiggler/encounter-api/internal/redis"
)

const (
	encounterKeyPrefix = "encounter:"

	// Error messages
	errEncounterNil     = "encounter is required"
	errEncounterIDEmpty = "encounter ID is required"
	errInputNil         = "input is required"
)

type redisRepository struct {
	client redisclient.Client
	ttl    time.Duration
}

// RedisConfig contains configuration for the Redis encounter repository.
type RedisConfig struct {
	Client redisclient.Client
	// TTL bounds how long a stored encounter lives. Zero means no expiry.
	TTL time.Duration
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed encounter repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    cfg.TTL,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil || input.Encounter == nil {
		return nil, errors.InvalidArgument(errEncounterNil)
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	key := encounterKeyPrefix + input.Encounter.ID

	// Check if already exists
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}

	if exists > 0 {
		return nil, errors.AlreadyExistsf("encounter with ID %s already exists", input.Encounter.ID)
	}

	data, err := json.Marshal(input.Encounter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter")
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to save encounter")
	}

	return &SaveOutput{Encounter: input.Encounter}, nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	key := encounterKeyPrefix + input.EncounterID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("encounter with ID %s not found", input.EncounterID)
		}
		return nil, errors.Wrapf(err, "failed to get encounter")
	}

	var encounter entities.Encounter
	if err := json.Unmarshal([]byte(result), &encounter); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal encounter")
	}

	return &GetOutput{Encounter: &encounter}, nil
}

func (r *redisRepository) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil || input.Encounter == nil {
		return nil, errors.InvalidArgument(errEncounterNil)
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	key := encounterKeyPrefix + input.Encounter.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}

	if exists == 0 {
		return nil, errors.NotFoundf("encounter with ID %s not found", input.Encounter.ID)
	}

	data, err := json.Marshal(input.Encounter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter")
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update encounter")
	}

	return &UpdateOutput{Encounter: input.Encounter}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	key := encounterKeyPrefix + input.EncounterID

	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete encounter")
	}

	if deleted == 0 {
		return nil, errors.NotFoundf("encounter with ID %s not found", input.EncounterID)
	}

	return &DeleteOutput{}, nil
}
