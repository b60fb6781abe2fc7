package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbundle/pkg/deps"
	pkgio "github.com/matzehuels/stackbundle/pkg/io"
	"github.com/matzehuels/stackbundle/pkg/manifest"
	"github.com/matzehuels/stackbundle/pkg/pipeline"
	"github.com/matzehuels/stackbundle/pkg/render/nodelink"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	instructions string   // instructions TOML file
	trees        string   // directory of tree files used to resolve coordinates
	registry     string   // extension registry TOML file
	enable       []string // extensions enabled on top of the instructions
	output       string   // write resulting instructions here

	share           []string
	requireBundle   []string
	exclude         []string
	excludeOptional []string

	dot         string // write the classified tree as DOT
	svg         string // render the classified tree to SVG
	detailed    bool   // detailed node labels in DOT/SVG
	noCache     bool
	refresh     bool
	interactive bool
}

// load reads the instructions file, if any, and appends the flag values.
func (o *resolveOpts) load() (manifest.Instructions, error) {
	var in manifest.Instructions
	if o.instructions != "" {
		var err error
		if in, err = manifest.Load(o.instructions); err != nil {
			return in, err
		}
	}
	in.EnabledExtensions = append(in.EnabledExtensions, o.enable...)
	in.ShareFilter = append(in.ShareFilter, o.share...)
	in.RequireBundleFilter = append(in.RequireBundleFilter, o.requireBundle...)
	in.ExcludePackageFilter = append(in.ExcludePackageFilter, o.exclude...)
	in.ExcludeOptionalFilter = append(in.ExcludeOptionalFilter, o.excludeOptional...)
	return in, nil
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve <coordinate|tree-file>",
		Short: "Classify a module's dependencies and compute its bundle headers",
		Long: `Classify every dependency of a module as shared, embedded, optional or
excluded and compute Bundle-ClassPath, Require-Bundle and Import-Package.

The argument is either a tree file (.json, .yaml, .yml) or a Maven coordinate
that is looked up in --trees.

Examples:
  stackbundle resolve app-tree.yaml --share org.slf4j
  stackbundle resolve com.acme:app:1.0 --trees ./trees -i bundle.toml -o out.toml
  stackbundle resolve com.acme:app:1.0 --registry extensions.toml -e kafka --svg app.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.instructions, "instructions", "i", "", "instructions file (TOML)")
	f.StringVar(&opts.trees, "trees", ".", "directory containing tree files for coordinates")
	f.StringVar(&opts.registry, "registry", "", "extension registry file (TOML)")
	f.StringArrayVarP(&opts.enable, "enable", "e", nil, "enable an extension (repeatable)")
	f.StringVarP(&opts.output, "output", "o", "", "write the resulting instructions to this file")
	f.StringArrayVar(&opts.share, "share", nil, "share filter pattern (repeatable)")
	f.StringArrayVar(&opts.requireBundle, "require-bundle", nil, "require-bundle filter pattern (repeatable)")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "exclude-package filter pattern (repeatable)")
	f.StringArrayVar(&opts.excludeOptional, "exclude-optional", nil, "exclude-optional filter pattern (repeatable)")
	f.StringVar(&opts.dot, "dot", "", "write the classified tree as Graphviz DOT")
	f.StringVar(&opts.svg, "svg", "", "render the classified tree to SVG")
	f.BoolVar(&opts.detailed, "detailed", false, "show bucket and file in diagram labels")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the tree cache")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached trees but refresh the cache")
	f.BoolVar(&opts.interactive, "interactive", false, "browse the result interactively")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, arg string, opts *resolveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	in, err := opts.load()
	if err != nil {
		return err
	}
	registry, err := loadRegistry(opts.registry)
	if err != nil {
		return err
	}

	cch, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cch.Close()

	logger := loggerFromContext(ctx)
	store, err := c.newStore(ctx, cfg)
	if err != nil {
		logger.Warn("report store unavailable, reports disabled", "backend", cfg.Store.Backend, "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close(context.WithoutCancel(ctx))
	}

	runner := pipeline.NewRunner(c.newResolver(cfg, cch, opts.trees, opts.refresh), registry, c.Logger)
	runner.Store = store

	popts := pipeline.Options{Instructions: in, Config: cfg}
	if isTreeFile(arg) {
		tree, err := pkgio.ImportTree(arg)
		if err != nil {
			return err
		}
		popts.Tree = tree
	} else {
		id, err := deps.ParseIdentity(arg)
		if err != nil {
			return err
		}
		popts.Root = id
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s...", arg))
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Resolution failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.interactive {
		_, err := tea.NewProgram(NewBucketBrowserModel(result.State), tea.WithContext(ctx)).Run()
		return err
	}

	printSuccess("Resolved %s", StyleValue.Render(result.ModuleID))
	printStats(
		fmt.Sprintf("%d nodes", result.Stats.NodeCount),
		fmt.Sprintf("%d extensions", len(result.Applied)),
		(result.Stats.ResolveTime + result.Stats.ClassifyTime).String(),
	)
	printNewline()
	fmt.Println(countsTable(result.Stats.Counts))
	printNewline()

	out := result.Instructions
	printClauses(manifest.KeyBundleClassPath, out.BundleClassPath)
	printClauses(manifest.KeyRequireBundle, out.RequireBundle)
	printClauses(manifest.KeyImportPackage, out.ImportPackage)
	if len(out.AppliedExtensions) > 0 {
		printKeyValue("Extensions", strings.Join(out.AppliedExtensions, " "))
	}
	if len(result.Install) > 0 {
		printInfo("Install order:")
		for _, n := range result.Install {
			printDetail("%s", n.ID.Coordinate())
		}
	}

	if err := c.writeOutputs(ctx, result, opts); err != nil {
		return err
	}

	if result.Report != nil {
		printNewline()
		printNextStep("Inspect report", appName+" report show "+result.Report.ID)
	}
	return nil
}

// writeOutputs writes the instructions file and diagrams requested by flags.
func (c *CLI) writeOutputs(ctx context.Context, result *pipeline.Result, opts *resolveOpts) error {
	if opts.output != "" {
		if err := writeInstructions(opts.output, result.Instructions); err != nil {
			return err
		}
		printFile(opts.output)
	}

	if opts.dot == "" && opts.svg == "" {
		return nil
	}
	dot := nodelink.ToDOT(result.Tree, result.State, nodelink.Options{
		Detailed:   opts.detailed,
		Extensions: result.Extensions,
	})
	if opts.dot != "" {
		if err := os.WriteFile(opts.dot, []byte(dot), 0644); err != nil {
			return fmt.Errorf("write %s: %w", opts.dot, err)
		}
		printFile(opts.dot)
	}
	if opts.svg != "" {
		prog := newProgress(loggerFromContext(ctx))
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		prog.done("Rendered " + opts.svg)
		if err := os.WriteFile(opts.svg, svg, 0644); err != nil {
			return fmt.Errorf("write %s: %w", opts.svg, err)
		}
		printFile(opts.svg)
	}
	return nil
}

func writeInstructions(path string, in manifest.Instructions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := in.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// isTreeFile reports whether arg names a tree file rather than a coordinate.
func isTreeFile(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
