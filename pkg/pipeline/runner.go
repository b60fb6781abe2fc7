package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/extension"
	"github.com/matzehuels/stackbundle/pkg/report"
)

// Runner executes resolution runs.
//
// The Runner holds no per-run state. Multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Resolver deps.TreeResolver
	Registry *extension.Registry
	// Store, when set, receives a report for every successful run.
	Store  report.Store
	Logger *log.Logger
}

// NewRunner creates a runner. A nil registry means no extensions are known;
// a nil logger uses log.Default().
func NewRunner(resolver deps.TreeResolver, registry *extension.Registry, logger *log.Logger) *Runner {
	if registry == nil {
		registry = extension.NewRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Resolver: resolver,
		Registry: registry,
		Logger:   logger,
	}
}

// Execute runs resolve → merge → classify → write back for one module.
// Fatal failures are returned as "resolution failed for module X" with the
// code of the failing stage.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger()
	cfg := opts.Config
	in := opts.Instructions

	moduleID := in.ModuleID
	if moduleID == "" && opts.Tree == nil {
		moduleID = opts.Root.SymbolicName()
	}
	if !cfg.CheckCertificates {
		logger.Warn("certificate checks are disabled for repository access", "module", moduleID)
	}

	// Stage 1: Resolve
	resolveStart := time.Now()
	tree, err := r.resolveTree(ctx, opts)
	if err != nil {
		return nil, failed(moduleID, err)
	}
	if moduleID == "" {
		moduleID = tree.ID.SymbolicName()
	}
	result := &Result{ModuleID: moduleID, Tree: tree}
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.NodeCount = tree.Count()

	logger.Info("resolved dependency tree",
		"module", moduleID,
		"root", tree.ID,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.ResolveTime)

	// Stage 2: Merge extensions
	merger := &extension.Merger{Registry: r.Registry, Resolver: r.Resolver, Logger: logger}
	merged, err := merger.Merge(ctx, moduleID, classpath.PatternsFromInstructions(in), in.EnabledExtensions)
	if err != nil {
		return nil, failed(moduleID, err)
	}
	result.Applied = merged.Applied
	result.Extensions = merged.Trees

	// Stage 3: Classify
	classifyStart := time.Now()
	resolver := classpath.New(merged.Patterns, classpath.Options{
		ModuleID:               moduleID,
		IncludeSharedResources: cfg.IncludeSharedResources,
		SharedResourcePaths:    cfg.SharedResourcePaths,
		WorkDir:                cfg.WorkDir,
		VersionDigits:          cfg.VersionDigits,
		ExistingClassPath:      in.BundleClassPath,
		ExistingImports:        in.ImportPackage,
		ExistingRequireBundle:  in.RequireBundle,
		Logger:                 logger,
	})
	state, err := resolver.Resolve(ctx, tree, merged.Trees...)
	if err != nil {
		return nil, failed(moduleID, err)
	}
	result.State = state
	result.Stats.ClassifyTime = time.Since(classifyStart)
	result.Stats.Counts = state.Counts()

	// Stage 4: Write back
	out := in.Clone()
	out.ModuleID = moduleID
	out.BundleClassPath = state.BundleClassPath
	out.RequireBundle = state.RequireBundle
	imports := append([]string(nil), state.ImportPackage...)
	out.ImportPackage = classpath.MergeClauses(imports, classpath.ImportClauses(state, cfg.VersionDigits))
	out.AppliedExtensions = merged.Applied
	result.Instructions = out

	if cfg.InstallMissingDependencies {
		result.Install = state.Install
	} else if len(state.Install) > 0 {
		logger.Debug("install list withheld, installing missing dependencies is disabled",
			"module", moduleID, "count", len(state.Install))
	}

	counts := result.Stats.Counts
	logger.Info("classified dependencies",
		"module", moduleID,
		"shared", counts.Shared,
		"nonshared", counts.NonShared,
		"optional", counts.Optional,
		"excluded", counts.Excluded,
		"embedded", counts.Embedded,
		"extensions", len(merged.Applied),
		"duration", result.Stats.ClassifyTime)

	if r.Store != nil {
		result.Report = r.saveReport(ctx, result)
	}
	return result, nil
}

func (r *Runner) resolveTree(ctx context.Context, opts Options) (*deps.Node, error) {
	if opts.Tree != nil {
		return opts.Tree, nil
	}
	if r.Resolver == nil {
		return nil, errors.New(errors.ErrCodeTreeResolution, "no resolver configured for %s", opts.Root)
	}
	tree, err := r.Resolver.ResolveTree(ctx, opts.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTreeResolution, err, "resolve %s", opts.Root)
	}
	if tree == nil {
		return nil, errors.New(errors.ErrCodeTreeResolution, "resolver returned no tree for %s", opts.Root)
	}
	return tree, nil
}

// saveReport persists a report of the run. Store failures are logged; the
// run itself already succeeded.
func (r *Runner) saveReport(ctx context.Context, result *Result) *report.Report {
	logger := r.logger()
	elapsed := result.Stats.ResolveTime + result.Stats.ClassifyTime
	rep, err := report.New(result.ModuleID, result.Tree.ID, result.State, result.Applied, elapsed)
	if err != nil {
		logger.Warn("cannot build report", "module", result.ModuleID, "err", err)
		return nil
	}
	if err := r.Store.Save(ctx, rep); err != nil {
		logger.Warn("cannot save report", "module", result.ModuleID, "report", rep.ID, "err", err)
		return rep
	}
	logger.Debug("saved report", "module", result.ModuleID, "report", rep.ID)
	return rep
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func failed(moduleID string, err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "resolution failed for module %s", moduleID)
}
