package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/logger"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// cachedLodging はキャッシュに保存する宿泊施設の表現
type cachedLodging struct {
	ID            string          `json:"id"`
	HostID        string          `json:"host_id"`
	Name          string          `json:"name"`
	MaxCapacity   int             `json:"max_capacity"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	State         string          `json:"state"`
	RetiredAt     *time.Time      `json:"retired_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LodgingCache は宿泊施設を読み取りスルーでキャッシュする lodging.Catalog
// キャッシュは予約の事前検証にのみ使われ、確定判定はトランザクション内で行われる
type LodgingCache struct {
	client *redis.Client
	next   lodging.Catalog
	ttl    time.Duration
}

// NewLodgingCache は next の前段に置くキャッシュを作成する
func NewLodgingCache(client *redis.Client, next lodging.Catalog, ttl time.Duration) *LodgingCache {
	return &LodgingCache{client: client, next: next, ttl: ttl}
}

// GetByID はキャッシュから宿泊施設を返し、なければ next から取得して保存する
// Redis の障害時は next にフォールバックする
func (c *LodgingCache) GetByID(ctx context.Context, id string) (*lodging.Lodging, error) {
	l, err := c.Get(ctx, id)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("宿泊施設キャッシュの取得に失敗しました", zap.String("lodging_id", id), zap.Error(err))
	}

	l, err = c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, l); err != nil {
		logger.Warn("宿泊施設キャッシュの保存に失敗しました", zap.String("lodging_id", id), zap.Error(err))
	}
	return l, nil
}

// Get はキャッシュから宿泊施設を取得する
func (c *LodgingCache) Get(ctx context.Context, id string) (*lodging.Lodging, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var v cachedLodging
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("キャッシュのデコードに失敗: %w", err)
	}
	return &lodging.Lodging{
		ID:            v.ID,
		HostID:        v.HostID,
		Name:          v.Name,
		MaxCapacity:   v.MaxCapacity,
		PricePerNight: v.PricePerNight,
		State:         lodging.State(v.State),
		RetiredAt:     v.RetiredAt,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}, nil
}

// Set は宿泊施設をキャッシュに保存する
func (c *LodgingCache) Set(ctx context.Context, l *lodging.Lodging) error {
	data, err := json.Marshal(cachedLodging{
		ID:            l.ID,
		HostID:        l.HostID,
		Name:          l.Name,
		MaxCapacity:   l.MaxCapacity,
		PricePerNight: l.PricePerNight,
		State:         string(l.State),
		RetiredAt:     l.RetiredAt,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.key(l.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は宿泊施設のキャッシュを無効化する
func (c *LodgingCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *LodgingCache) key(id string) string {
	return fmt.Sprintf("cache:lodging:%s", id)
}

var _ lodging.Catalog = (*LodgingCache)(nil)
