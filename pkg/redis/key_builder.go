package redis

import "fmt"

// KeyBuilder prefixes keys with the deployment environment
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder; unknown environments share the prod prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging":
		prefix = "staging"
	case "test":
		prefix = "test"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyIdentity is the cache key for an identity record
func (kb *KeyBuilder) KeyIdentity(userID int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyIdentity, userID))
}
