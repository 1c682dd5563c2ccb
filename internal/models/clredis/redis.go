package clredis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const countersTTL = 31 * 24 * time.Hour

// Cache est un client clé/valeur injecté explicitement dans les
// composants qui en ont besoin : jamais d'état ambiant global.
type Cache struct {
	client     *redis.Client
	expiration time.Duration
}

func New(addr string, db int) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	}))
}

func NewFromClient(client *redis.Client) *Cache {
	return &Cache{
		client:     client,
		expiration: 5 * time.Minute,
	}
}

func (c *Cache) Get(key string) (string, error) {
	val, err := c.client.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set enregistre une valeur avec une expiration explicite.
// expiry <= 0 utilise l'expiration par défaut du cache.
func (c *Cache) Set(key, value string, expiry time.Duration) error {
	if expiry <= 0 {
		expiry = c.expiration
	}
	return c.client.Set(context.Background(), key, value, expiry).Err()
}

func (c *Cache) Incr(key string, expiry time.Duration) (int64, error) {
	ctx := context.Background()
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if expiry > 0 {
		c.client.Expire(ctx, key, expiry)
	}
	return n, nil
}

func (c *Cache) Delete(key string) error {
	return c.client.Del(context.Background(), key).Err()
}

// RecordVisit met à jour les compteurs temps réel du jour
func (c *Cache) RecordVisit(day string, sessionID string) {
	ctx := context.Background()

	dailyKey := fmt.Sprintf("analytics:daily:%s", day)
	c.client.HIncrBy(ctx, dailyKey, "page_views", 1)
	c.client.Expire(ctx, dailyKey, countersTTL)

	visitorKey := fmt.Sprintf("analytics:visitors:%s", day)
	c.client.SAdd(ctx, visitorKey, sessionID)
	c.client.Expire(ctx, visitorKey, countersTTL)
}

// RealtimeStats lit les compteurs du jour depuis Redis
func (c *Cache) RealtimeStats(day string) (map[string]interface{}, error) {
	ctx := context.Background()

	pageViews, err := c.client.HGet(ctx, fmt.Sprintf("analytics:daily:%s", day), "page_views").Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	uniqueVisitors, err := c.client.SCard(ctx, fmt.Sprintf("analytics:visitors:%s", day)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	return map[string]interface{}{
		"today_page_views":      pageViews,
		"today_unique_visitors": uniqueVisitors,
	}, nil
}

// CaptchaStore adapte Cache au contrat base64Captcha.Store
type CaptchaStore struct {
	cache *Cache
}

func NewCaptchaStore(cache *Cache) *CaptchaStore {
	return &CaptchaStore{cache: cache}
}

func (s *CaptchaStore) Set(id string, value string) error {
	return s.cache.Set("captcha:"+id, value, 0)
}

func (s *CaptchaStore) Get(id string, clear bool) string {
	val, _ := s.cache.Get("captcha:" + id)
	if clear {
		s.cache.Delete("captcha:" + id)
	}
	return val
}

func (s *CaptchaStore) Verify(id, answer string, clear bool) bool {
	return s.Get(id, clear) == answer
}
