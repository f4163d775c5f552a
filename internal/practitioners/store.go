package practitioners

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps practitioner profiles in Redis as JSON documents.
type Store struct {
	redis *redis.Client
}

// NewStore creates a profile store over the given Redis client.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("practitioners: redis client required")
	}
	return &Store{redis: redisClient}
}

func (s *Store) key(practitionerID string) string {
	return fmt.Sprintf("practitioner:profile:%s", practitionerID)
}

// Get returns the profile, or (nil, nil) when the practitioner has no
// stored configuration.
func (s *Store) Get(ctx context.Context, practitionerID string) (*Profile, error) {
	data, err := s.redis.Get(ctx, s.key(practitionerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("practitioners: load profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("practitioners: decode profile: %w", err)
	}
	return &p, nil
}

// Set persists the profile.
func (s *Store) Set(ctx context.Context, p *Profile) error {
	if p == nil || p.PractitionerID == "" {
		return fmt.Errorf("practitioners: profile with practitioner_id required")
	}
	p.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("practitioners: encode profile: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(p.PractitionerID), data, 0).Err(); err != nil {
		return fmt.Errorf("practitioners: save profile: %w", err)
	}
	return nil
}

// WorkingHours returns the published schedule, nil when the practitioner
// has none configured.
func (s *Store) WorkingHours(ctx context.Context, practitionerID string) (*WeeklyHours, error) {
	p, err := s.Get(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p.WorkingHours, nil
}
