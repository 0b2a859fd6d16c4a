package redisdrv

/*
Redis connector for the position namespaces.

Settings section expected in the config:

host = "localhost"
port = "6379"
password = ""
db = "0"
scan_count = "100"
*/

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	goredis "github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type Settings struct {
	Host      string
	Port      string
	Password  string
	DB        int
	ScanCount int64
}

// Connector owns the single logical connection shared by every namespace
// store. The connection is established lazily on first use; concurrent
// first uses are serialized so "already connecting" is never an error.
type Connector struct {
	settings Settings

	mu     sync.Mutex
	client *goredis.Client
}

func getOptionValue(optionName string, optionDefaultValue string, settings map[string]string) string {
	optionValue := settings[optionName]
	if optionValue == "" {
		log.Warnf("Key '%s' not found in the storage configuration. Using default value '%s'.", optionName, optionDefaultValue)
		optionValue = optionDefaultValue
	}

	return optionValue
}

func (c *Connector) FillSettings(settings map[string]string) error {
	c.settings.Host = getOptionValue("host", "localhost", settings)
	c.settings.Port = getOptionValue("port", "6379", settings)
	c.settings.Password = settings["password"]

	db, err := strconv.Atoi(getOptionValue("db", "0", settings))
	if err != nil {
		return fmt.Errorf("could not parse db number: %v", err)
	}
	c.settings.DB = db

	scanCount, err := strconv.ParseInt(getOptionValue("scan_count", "100", settings), 10, 64)
	if err != nil {
		return fmt.Errorf("could not parse scan_count: %v", err)
	}
	c.settings.ScanCount = scanCount

	return nil
}

// Connect stores the connection settings. No connection is made here: the
// client is created on first use and reused afterwards.
func (c *Connector) Connect(settings map[string]string) error {
	if settings == nil {
		return fmt.Errorf("invalid storage configuration reference")
	}
	return c.FillSettings(settings)
}

func (c *Connector) ensure(ctx context.Context) (*goredis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     c.settings.Host + ":" + c.settings.Port,
		Password: c.settings.Password,
		DB:       c.settings.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis is unreachable: %v", err)
	}

	log.Infof("Connected to redis at %s:%s (db %d)", c.settings.Host, c.settings.Port, c.settings.DB)
	c.client = client
	return c.client, nil
}

func (c *Connector) Exists(ctx context.Context, key string) (bool, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return false, err
	}
	n, err := client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Connector) Type(ctx context.Context, key string) (string, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return "", err
	}
	return client.Type(ctx, key).Result()
}

func (c *Connector) Get(ctx context.Context, key string) (string, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return "", err
	}
	value, err := client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	return value, err
}

func (c *Connector) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.HGetAll(ctx, key).Result()
}

func (c *Connector) HLen(ctx context.Context, key string) (int64, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return 0, err
	}
	return client.HLen(ctx, key).Result()
}

func (c *Connector) LLen(ctx context.Context, key string) (int64, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return 0, err
	}
	return client.LLen(ctx, key).Result()
}

func (c *Connector) LIndex(ctx context.Context, key string, index int64) (string, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return "", err
	}
	value, err := client.LIndex(ctx, key, index).Result()
	if err == goredis.Nil {
		return "", nil
	}
	return value, err
}

func (c *Connector) ZCard(ctx context.Context, key string) (int64, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return 0, err
	}
	return client.ZCard(ctx, key).Result()
}

func (c *Connector) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.ZRevRange(ctx, key, start, stop).Result()
}

func (c *Connector) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	iter := client.Scan(ctx, 0, pattern, c.settings.ScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *Connector) MemoryUsage(ctx context.Context, key string) (int64, error) {
	client, err := c.ensure(ctx)
	if err != nil {
		return 0, err
	}
	bytes, err := client.MemoryUsage(ctx, key).Result()
	if err == goredis.Nil {
		return 0, nil
	}
	return bytes, err
}

func (c *Connector) Ping(ctx context.Context) error {
	client, err := c.ensure(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

// Close releases the connection. Subsequent use reconnects lazily.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
