package session

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(redis *redis.Client) *repository {
	return &repository{redis: redis}
}

type repository struct {
	redis *redis.Client
}

var _ sessionRepository = repository{}

func sessionKey(userId uint, sessionId string) string {
	return fmt.Sprintf("session:%d:%s", userId, sessionId)
}

func (r repository) Set(userId uint, sessionId string, expiresIn time.Duration) error {
	if err := r.redis.Set(sessionKey(userId, sessionId), 0, expiresIn).Err(); err != nil {
		return fmt.Errorf("could not store session %s of user %d: %v", sessionId, userId, err)
	}
	return nil
}

func (r repository) Exists(userId uint, sessionId string) (bool, error) {
	n, err := r.redis.Exists(sessionKey(userId, sessionId)).Result()
	if err != nil {
		return false, fmt.Errorf("could not look up session %s of user %d: %v", sessionId, userId, err)
	}
	return n > 0, nil
}

func (r repository) Delete(userId uint, sessionId string) error {
	if err := r.redis.Del(sessionKey(userId, sessionId)).Err(); err != nil {
		return fmt.Errorf("could not delete session %s of user %d: %v", sessionId, userId, err)
	}
	return nil
}

func (r repository) DeleteAll(userId uint) error {
	keys, err := r.redis.Keys(fmt.Sprintf("session:%d:*", userId)).Result()
	if err != nil {
		return fmt.Errorf("could not find sessions of user %d: %v", userId, err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.redis.Del(keys...).Err(); err != nil {
		return fmt.Errorf("could not delete sessions of user %d: %v", userId, err)
	}
	return nil
}
