package container

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-api/internal/config"
	"marketplace-api/internal/domain"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/repository/memstore"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/redis"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "test",
		TokenSigningSecret: "container-secret",
		TokenTTL:           time.Hour,
		TokenIssuer:        "marketplace-api",
		CookieDomain:       "shop.example.com",
		CookieSecure:       true,
		CookieMaxAge:       time.Hour,
		BcryptCost:         4,
		IdentityCacheTTL:   time.Minute,
	}
}

func memRepositories() *repository.Repositories {
	catalog := memstore.NewCatalog()
	return &repository.Repositories{
		Users:      memstore.NewCredentialStore(),
		Categories: catalog.Categories(),
		Products:   catalog.Products(),
		Reviews:    catalog.Reviews(),
		Orders:     catalog.Orders(),
	}
}

func TestBuild(t *testing.T) {
	c, err := Build(testConfig(), logger.NewNop(), memRepositories(), nil)
	require.NoError(t, err)

	assert.NotNil(t, c.Services.Auth)
	assert.NotNil(t, c.Services.Accounts)
	assert.NotNil(t, c.Services.Categories)
	assert.NotNil(t, c.Services.Products)
	assert.NotNil(t, c.Services.Reviews)
	assert.NotNil(t, c.Services.Orders)
	assert.False(t, c.HasRedis())
	assert.False(t, c.HasDatabase())

	opts := c.Transport.Options()
	assert.Equal(t, "shop.example.com", opts.Domain)
	assert.Equal(t, time.Hour, opts.MaxAge)
	assert.True(t, opts.Secure)
	assert.True(t, opts.HTTPOnly)

	_, isMem := c.Repositories.Users.(*memstore.CredentialStore)
	assert.True(t, isMem, "identity store is used directly without redis")

	families, err := c.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestBuild_MissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.TokenSigningSecret = ""

	c, err := Build(cfg, logger.NewNop(), memRepositories(), nil)
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestBuild_WithRedisWrapsIdentityStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", nil)
	require.NoError(t, err)
	defer client.Close()

	c, err := Build(testConfig(), logger.NewNop(), memRepositories(), client)
	require.NoError(t, err)
	assert.True(t, c.HasRedis())

	_, cached := c.Repositories.Users.(*repository.CachedUserRepository)
	require.True(t, cached)

	ctx := context.Background()
	identity, err := c.Services.Auth.SignUp(ctx, domain.SignUpRequest{Email: "a@x.com", Username: "a", Password: "pw"})
	require.NoError(t, err)

	result, err := c.Services.Auth.SignIn(ctx, domain.SignInRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	resolved, err := c.Services.Auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, resolved.ID)
	assert.True(t, mr.Exists("test:identity:1"))
}
