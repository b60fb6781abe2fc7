package cli

import (
	"context"
	"os"

	"github.com/matzehuels/stackbundle/pkg/cache"
	"github.com/matzehuels/stackbundle/pkg/config"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/extension"
	pkgio "github.com/matzehuels/stackbundle/pkg/io"
	"github.com/matzehuels/stackbundle/pkg/report"
)

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the configuration. Without --config, stackbundle.toml in
// the working directory is used when it exists.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(config.FileName); err == nil {
			path = config.FileName
		}
	}
	envFiles := c.envFiles
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	cfg, err := config.Load(path, envFiles...)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "file", path)
	}
	return cfg, nil
}

// newCache opens the configured tree cache. An unreachable Redis falls back
// to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   cfg.Cache.RedisAddr,
			Prefix: appName + ":",
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured report store. It returns nil when reports
// are disabled.
func (c *CLI) newStore(ctx context.Context, cfg *config.Config) (report.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMongo:
		return report.NewMongoStore(ctx, report.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.Database,
		})
	default:
		return report.NewFileStore(cfg.Store.Dir)
	}
}

// newResolver builds the tree resolver: tree files under dir, behind the
// cache.
func (c *CLI) newResolver(cfg *config.Config, cch cache.Cache, dir string, refresh bool) deps.TreeResolver {
	inner := pkgio.NewDirResolver(dir)
	inner.Logger = c.Logger

	resolver := deps.NewCachedResolver(inner, cch, cfg.Repositories)
	resolver.TTL = cfg.Cache.TTL.Duration
	resolver.Refresh = refresh
	return resolver
}

// loadRegistry reads the extension registry. An empty path yields an empty
// registry.
func loadRegistry(path string) (*extension.Registry, error) {
	if path == "" {
		return extension.NewRegistry(), nil
	}
	return extension.LoadRegistry(path)
}
