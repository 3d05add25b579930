package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"stockpilot/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService is a read-through projection cache. Balances cached here
// are for display only; the ledger transaction never consults the cache
// when authorizing a stock-out.
type CacheService interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*int, error)
	SetBalance(ctx context.Context, productID, warehouseID uuid.UUID, quantity int, ttl time.Duration) error
	GetAggregateBalance(ctx context.Context, productID uuid.UUID) (*int, error)
	SetAggregateBalance(ctx context.Context, productID uuid.UUID, quantity int, ttl time.Duration) error
	InvalidateBalances(ctx context.Context, productID, warehouseID uuid.UUID) error

	InvalidateAll(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// and rediss:// style addresses too.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	key := fmt.Sprintf("stockpilot:product:%s", productID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("stockpilot:product:%s", product.ID.String())
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	key := fmt.Sprintf("stockpilot:product:%s", productID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*int, error) {
	return r.getInt(ctx, balanceKey(productID, warehouseID))
}

func (r *redisCacheService) SetBalance(ctx context.Context, productID, warehouseID uuid.UUID, quantity int, ttl time.Duration) error {
	return r.client.Set(ctx, balanceKey(productID, warehouseID), quantity, ttl).Err()
}

func (r *redisCacheService) GetAggregateBalance(ctx context.Context, productID uuid.UUID) (*int, error) {
	return r.getInt(ctx, aggregateKey(productID))
}

func (r *redisCacheService) SetAggregateBalance(ctx context.Context, productID uuid.UUID, quantity int, ttl time.Duration) error {
	return r.client.Set(ctx, aggregateKey(productID), quantity, ttl).Err()
}

// InvalidateBalances drops both the per-warehouse and the aggregate
// balance for a product. Called after every successful ledger write.
func (r *redisCacheService) InvalidateBalances(ctx context.Context, productID, warehouseID uuid.UUID) error {
	return r.client.Del(ctx, balanceKey(productID, warehouseID), aggregateKey(productID)).Err()
}

func (r *redisCacheService) InvalidateAll(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "stockpilot:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) getInt(ctx context.Context, key string) (*int, error) {
	val, err := r.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}
	return &val, nil
}

func balanceKey(productID, warehouseID uuid.UUID) string {
	return fmt.Sprintf("stockpilot:balance:%s:%s", productID.String(), warehouseID.String())
}

func aggregateKey(productID uuid.UUID) string {
	return fmt.Sprintf("stockpilot:balance:%s:all", productID.String())
}
