package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"

	"OpenWeb3-Client/internal/manager"
)

// DefaultCacheableMethods are requests whose results never change for a
// given endpoint, so serving them from cache is always safe.
var DefaultCacheableMethods = []string{
	"eth_chainId",
	"net_version",
	"web3_clientVersion",
}

// CacheConfig describes the Redis-backed response cache.
type CacheConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
	Methods  []string
}

// Cache serves cacheable methods from Redis. Cache failures degrade to a
// normal dispatch; they never fail the request.
func Cache(cfg CacheConfig, log *slog.Logger) (manager.Middleware, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = DefaultCacheableMethods
	}
	cacheable := make(map[string]struct{}, len(methods))
	for _, method := range methods {
		cacheable[method] = struct{}{}
	}

	mw := manager.Middleware{
		Name: "cache",
		Wrap: func(next manager.CallFunc) manager.CallFunc {
			return func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				if _, ok := cacheable[method]; !ok {
					return next(ctx, method, params)
				}
				key, keyErr := cacheKey(method, params)
				if keyErr == nil {
					if cached, err := client.Get(ctx, key).Bytes(); err == nil {
						return json.RawMessage(cached), nil
					} else if err != redis.Nil {
						log.DebugContext(ctx, "cache read failed", "method", method, "error", err)
					}
				}

				result, err := next(ctx, method, params)
				if err != nil {
					return nil, err
				}
				if keyErr == nil {
					if err := client.Set(ctx, key, []byte(result), ttl).Err(); err != nil {
						log.DebugContext(ctx, "cache write failed", "method", method, "error", err)
					}
				}
				return result, nil
			}
		},
	}
	return mw, nil
}

// cacheKey derives a stable key from the method and the canonical JSON of
// its parameters.
func cacheKey(method string, params []any) (string, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	digest := crypto.Keccak256(append([]byte(method), encoded...))
	return "openweb3:rpc:" + method + ":" + hexutil.Encode(digest), nil
}
