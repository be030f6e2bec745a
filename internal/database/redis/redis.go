package redis

import (
	"context"
	"fmt"
	"log"
	"sync"

	"MeetMind/internal/config"

	"github.com/go-redis/redis/v8"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 Redis 客户端实例。
// MeetMind 用它缓存喂给时间链接引擎的历史会议上下文。
func GetClient(cfg *config.RedisConfig) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		// 启动时用 Ping 验证连接，失败则缓存初始化错误。
		ctx := context.Background()
		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = fmt.Errorf("redis 初始化连接失败: %w", err)
			return
		}

		log.Println("✅ 成功初始化 Redis 历史缓存客户端!")
		client = rdb
	})

	return client, initErr
}

// Close 安全地关闭单例的 Redis 连接。
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck 检查 Redis 连接的健康状况。
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis 客户端未初始化，无法进行健康检查")
	}
	return client.Ping(ctx).Err()
}
