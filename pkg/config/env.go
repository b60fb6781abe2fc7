package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/stackbundle/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STACKBUNDLE_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from STACKBUNDLE_* variables. List values are
// comma-separated.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok
	}

	bools := map[string]*bool{
		"CHECK_CERTIFICATES":       &cfg.CheckCertificates,
		"INSTALL_MISSING":          &cfg.InstallMissingDependencies,
		"INCLUDE_SHARED_RESOURCES": &cfg.IncludeSharedResources,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
			}
			*dst = b
		}
	}

	lists := map[string]*[]string{
		"SHARED_RESOURCE_PATHS": &cfg.SharedResourcePaths,
		"REPOSITORIES":          &cfg.Repositories,
	}
	for name, dst := range lists {
		if v, ok := get(name); ok {
			*dst = splitList(v)
		}
	}

	strs := map[string]*string{
		"WORK_DIR":       &cfg.WorkDir,
		"CACHE_BACKEND":  &cfg.Cache.Backend,
		"CACHE_DIR":      &cfg.Cache.Dir,
		"REDIS_ADDR":     &cfg.Cache.RedisAddr,
		"STORE_BACKEND":  &cfg.Store.Backend,
		"STORE_DIR":      &cfg.Store.Dir,
		"MONGO_URI":      &cfg.Store.MongoURI,
		"MONGO_DATABASE": &cfg.Store.Database,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("VERSION_DIGITS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sVERSION_DIGITS", EnvPrefix)
		}
		cfg.VersionDigits = n
	}
	if v, ok := get("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sCACHE_TTL", EnvPrefix)
		}
		cfg.Cache.TTL = Duration{d}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
