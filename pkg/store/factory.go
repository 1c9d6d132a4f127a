package store

import (
	"fmt"
	"strings"

	"github.com/go-training/gh-notifier/pkg/core"
)

// StoreType represents the type of store backend.
type StoreType string

const (
	// StoreTypeMemory represents in-memory storage. Nothing survives the process.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeRedis represents Redis storage.
	StoreTypeRedis StoreType = "redis"
	// StoreTypeFile represents a JSON file in the user config directory.
	StoreTypeFile StoreType = "file"
)

// Config contains configuration for creating a store.
type Config struct {
	// Type specifies the store type (memory, redis or file).
	Type StoreType
	// Redis contains Redis-specific configuration.
	Redis RedisOptions
	// Path is the credentials file for the file store. Empty uses DefaultFilePath.
	Path string
}

// Factory creates store instances based on configuration.
type Factory struct {
	config Config
}

// NewFactory creates a new store factory with the provided configuration.
func NewFactory(config Config) *Factory {
	return &Factory{
		config: config,
	}
}

// Create creates and returns a new store instance based on the factory configuration.
// Returns an error if the store type is invalid or if store creation fails.
func (f *Factory) Create() (core.Store, error) {
	switch f.config.Type {
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		return NewRedisStoreFromOptions(f.config.Redis)
	case StoreTypeFile:
		path := f.config.Path
		if path == "" {
			var err error
			path, err = DefaultFilePath()
			if err != nil {
				return nil, err
			}
		}
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", f.config.Type)
	}
}

// NewStore is a convenience function that creates a store directly from configuration.
// It's equivalent to NewFactory(config).Create().
func NewStore(config Config) (core.Store, error) {
	factory := NewFactory(config)
	return factory.Create()
}

// ParseStoreType parses a string into a StoreType.
// Returns StoreTypeFile for invalid inputs.
func ParseStoreType(s string) StoreType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "memory":
		return StoreTypeMemory
	case "redis":
		return StoreTypeRedis
	default:
		return StoreTypeFile
	}
}

// String returns the string representation of a StoreType.
func (t StoreType) String() string {
	return string(t)
}

// IsValid returns true if the StoreType is valid.
func (t StoreType) IsValid() bool {
	switch t {
	case StoreTypeMemory, StoreTypeRedis, StoreTypeFile:
		return true
	default:
		return false
	}
}

// Closer is implemented by stores holding a connection.
type Closer interface {
	Close()
}

// Close releases the store's resources if it holds any.
func Close(s core.Store) {
	if c, ok := s.(Closer); ok {
		c.Close()
	}
}

// DefaultConfig returns the default store configuration (file store).
func DefaultConfig() Config {
	return Config{
		Type: StoreTypeFile,
	}
}

// RedisConfig creates a Redis store configuration with the provided options.
func RedisConfig(redisOpts RedisOptions) Config {
	return Config{
		Type:  StoreTypeRedis,
		Redis: redisOpts,
	}
}

// MemoryConfig creates a memory store configuration.
func MemoryConfig() Config {
	return Config{
		Type: StoreTypeMemory,
	}
}

// FileConfig creates a file store configuration writing to path.
func FileConfig(path string) Config {
	return Config{
		Type: StoreTypeFile,
		Path: path,
	}
}
