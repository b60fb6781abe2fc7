// Package pipeline connects the resolver, the extension registry and the
// classpath resolver into one run over a module.
//
// # Architecture
//
// A run has four stages:
//
//  1. Resolve: obtain the module's dependency tree from a [deps.TreeResolver]
//     (or use a tree supplied by the caller)
//  2. Merge: apply the module's enabled extensions, unioning their patterns
//     and resolving their trees
//  3. Classify: run [classpath.Resolver] over the tree and extension trees
//  4. Write back: copy the classpath, Require-Bundle, Import-Package and
//     Applied-Extensions values into a copy of the module's instructions
//
// Only stage 1 and the re-bundling step of stage 3 can fail a run; missing
// extensions and unreadable jars are logged and skipped.
//
// # Usage
//
//	runner := pipeline.NewRunner(resolver, registry, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Root:         deps.MustParseIdentity("com.acme:app:1.0"),
//	    Instructions: instructions,
//	    Config:       cfg,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Instructions.Properties()["Bundle-ClassPath"])
package pipeline

import (
	"time"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/config"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/manifest"
	"github.com/matzehuels/stackbundle/pkg/observability"
	"github.com/matzehuels/stackbundle/pkg/report"
)

// Options configures a single run.
type Options struct {
	// Root is resolved through the runner's resolver when Tree is nil.
	Root deps.Identity
	// Tree, when set, is used as-is and Root is ignored.
	Tree *deps.Node

	// Instructions are the module's current manifest values and filters.
	// Execute never modifies them.
	Instructions manifest.Instructions

	// Config defaults to [config.Default] when nil.
	Config *config.Config
}

// ValidateAndSetDefaults checks the options and fills in config defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Tree == nil && o.Root == (deps.Identity{}) {
		return errors.New(errors.ErrCodeInvalidInput, "either a root coordinate or a tree is required")
	}
	if o.Tree == nil {
		if err := errors.ValidateCoordinate(o.Root.Coordinate()); err != nil {
			return err
		}
	}
	if id := o.Instructions.ModuleID; id != "" {
		if err := errors.ValidateModuleID(id); err != nil {
			return err
		}
	}
	if o.Config == nil {
		o.Config = config.Default()
	} else {
		cfg := *o.Config
		o.Config = cfg.WithDefaults()
	}
	if problems := o.Config.Validate(); len(problems) > 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, &config.ValidationError{Errors: problems}, "invalid configuration")
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	ModuleID string
	Tree     *deps.Node
	State    *classpath.State

	// Instructions is a copy of the input instructions with the resolved
	// values written back.
	Instructions manifest.Instructions

	// Applied lists the extensions that were merged; Extensions holds
	// their resolved trees in the same order.
	Applied    []string
	Extensions []*deps.Node

	// Install is the install-order list handed to the installer. It is
	// empty unless the configuration allows installing missing
	// dependencies.
	Install []*deps.Node

	// Report is set when the runner has a report store.
	Report *report.Report

	Stats Stats
}

// Stats holds timing and size information for a run.
type Stats struct {
	ResolveTime  time.Duration
	ClassifyTime time.Duration
	NodeCount    int
	Counts       observability.BucketCounts
}
