package classpath

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbundle/pkg/observability"
	"github.com/matzehuels/stackbundle/pkg/versionrange"
)

// DefaultSharedResourcePaths are re-bundled when no prefixes are configured.
var DefaultSharedResourcePaths = []string{"META-INF/services/"}

// Options configures a [Resolver].
type Options struct {
	// ModuleID labels log lines and hook events.
	ModuleID string

	// IncludeSharedResources copies entries under SharedResourcePaths out
	// of every shared artifact into a side archive in WorkDir.
	IncludeSharedResources bool
	SharedResourcePaths    []string
	WorkDir                string

	// VersionDigits is passed to versionrange.ToRange for Require-Bundle
	// and Import-Package ranges.
	VersionDigits int

	// Existing header values the run appends to.
	ExistingClassPath     []string
	ExistingImports       []string
	ExistingRequireBundle []string

	Logger *log.Logger
	Hooks  observability.ResolutionHooks
}

// DefaultOptions returns options with re-bundling off and minor-version
// ranges.
func DefaultOptions() Options {
	return Options{VersionDigits: versionrange.Minor}
}

// WithDefaults fills unset fields. VersionDigits is left alone since 0 is a
// valid setting.
func (o Options) WithDefaults() Options {
	if len(o.SharedResourcePaths) == 0 {
		o.SharedResourcePaths = DefaultSharedResourcePaths
	}
	if o.WorkDir == "" {
		o.WorkDir = os.TempDir()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

func (o Options) hooks() observability.ResolutionHooks {
	if o.Hooks != nil {
		return o.Hooks
	}
	return observability.Resolution()
}
