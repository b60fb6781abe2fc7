package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/config"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/extension"
	"github.com/matzehuels/stackbundle/pkg/manifest"
	"github.com/matzehuels/stackbundle/pkg/report"
)

func node(coord string, pkgs []string, children ...*deps.Node) *deps.Node {
	if pkgs == nil {
		pkgs = []string{}
	}
	return &deps.Node{ID: deps.MustParseIdentity(coord), Provides: pkgs, Children: children}
}

// appTree returns a module depending on a shared logging API and a plain
// utility jar that is backed by a real file.
func appTree(t *testing.T) *deps.Node {
	t.Helper()
	jar := filepath.Join(t.TempDir(), "util-1.2.jar")
	if err := os.WriteFile(jar, []byte("jar"), 0644); err != nil {
		t.Fatal(err)
	}
	slf4j := node("org.slf4j:slf4j-api:2.0.9", []string{"org.slf4j"})
	slf4j.Bundle = true
	util := node("com.acme:util:1.2", nil, node("com.acme:junit-helper:1.0", nil))
	util.File = jar
	return node("com.acme:app:1.0", nil, slf4j, util)
}

func quietRunner(resolver deps.TreeResolver, registry *extension.Registry) *Runner {
	return NewRunner(resolver, registry, log.New(io.Discard))
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"nothing to resolve", Options{}, errors.ErrCodeInvalidInput},
		{"bad module id", Options{Tree: &deps.Node{}, Instructions: manifest.Instructions{ModuleID: "../x"}}, errors.ErrCodeInvalidModuleID},
		{"bad config", Options{Tree: &deps.Node{}, Config: &config.Config{VersionDigits: 9}}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	opts := Options{Root: deps.MustParseIdentity("com.acme:app:1.0")}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Config == nil || opts.Config.VersionDigits != config.Default().VersionDigits {
		t.Errorf("Config not defaulted: %+v", opts.Config)
	}
}

func TestValidateAndSetDefaults_DoesNotMutateConfig(t *testing.T) {
	cfg := &config.Config{VersionDigits: 1}
	opts := Options{Tree: &deps.Node{}, Config: cfg}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != "" {
		t.Error("caller's config was modified")
	}
	if opts.Config.Cache.Backend != config.BackendFile {
		t.Errorf("defaults not applied: %+v", opts.Config.Cache)
	}
}

func TestExecute(t *testing.T) {
	tree := appTree(t)
	in := manifest.Instructions{
		ModuleID:             "com.acme.app",
		ShareFilter:          []string{"org.slf4j"},
		RequireBundleFilter:  []string{"org.slf4j"},
		ExcludePackageFilter: []string{"*:junit-helper"},
		ImportPackage:        []string{"javax.annotation"},
		Extra:                map[string]string{"Bundle-Vendor": "ACME"},
	}

	result, err := quietRunner(nil, nil).Execute(context.Background(), Options{Tree: tree, Instructions: in})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	out := result.Instructions
	if got := strings.Join(out.BundleClassPath, ","); got != ".,com.acme.util.jar" {
		t.Errorf("BundleClassPath = %s", got)
	}
	if len(out.RequireBundle) != 1 || out.RequireBundle[0] != `org.slf4j.slf4j-api;bundle-version="[2.0.9,2.1.0)"` {
		t.Errorf("RequireBundle = %v", out.RequireBundle)
	}
	wantImports := []string{"javax.annotation", `org.slf4j;version="[2.0.9,2.1.0)"`}
	if strings.Join(out.ImportPackage, " ") != strings.Join(wantImports, " ") {
		t.Errorf("ImportPackage = %v, want %v", out.ImportPackage, wantImports)
	}
	if out.Extra["Bundle-Vendor"] != "ACME" {
		t.Error("pass-through instruction lost")
	}

	if len(in.BundleClassPath) != 0 || len(in.ImportPackage) != 1 {
		t.Error("input instructions were modified")
	}

	c := result.Stats.Counts
	if c.Shared != 1 || c.NonShared != 1 || c.Excluded != 1 || c.Embedded != 1 {
		t.Errorf("Counts = %+v", c)
	}
	if result.Stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", result.Stats.NodeCount)
	}
	if len(result.Install) != 0 {
		t.Errorf("Install = %v, want empty when installing is disabled", result.Install)
	}
	if result.Report != nil {
		t.Error("Report set without a store")
	}
}

func TestExecute_ModuleIDFromTree(t *testing.T) {
	result, err := quietRunner(nil, nil).Execute(context.Background(), Options{Tree: appTree(t)})
	if err != nil {
		t.Fatal(err)
	}
	if result.ModuleID != "com.acme.app" || result.Instructions.ModuleID != "com.acme.app" {
		t.Errorf("ModuleID = %q", result.ModuleID)
	}
}

func TestExecute_InstallMissing(t *testing.T) {
	cfg := config.Default()
	cfg.InstallMissingDependencies = true

	result, err := quietRunner(nil, nil).Execute(context.Background(), Options{
		Tree:         appTree(t),
		Instructions: manifest.Instructions{ShareFilter: []string{"org.slf4j"}},
		Config:       cfg,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Install) != 1 || result.Install[0].ID.ArtifactID != "slf4j-api" {
		t.Errorf("Install = %v", result.Install)
	}
}

func TestExecute_ResolverFailure(t *testing.T) {
	boom := stderrors.New("repository offline")
	resolver := deps.ResolverFunc(func(context.Context, deps.Identity) (*deps.Node, error) {
		return nil, boom
	})

	_, err := quietRunner(resolver, nil).Execute(context.Background(), Options{
		Root: deps.MustParseIdentity("com.acme:app:1.0"),
	})
	if !errors.Is(err, errors.ErrCodeTreeResolution) {
		t.Fatalf("error = %v, want TREE_RESOLUTION", err)
	}
	if !stderrors.Is(err, boom) {
		t.Error("cause not preserved")
	}
	if !strings.Contains(err.Error(), "resolution failed for module com.acme.app") {
		t.Errorf("error message = %q", err.Error())
	}

	_, err = quietRunner(nil, nil).Execute(context.Background(), Options{Root: deps.MustParseIdentity("com.acme:app:1.0")})
	if !errors.Is(err, errors.ErrCodeTreeResolution) {
		t.Errorf("no resolver error = %v", err)
	}
}

func TestExecute_Extensions(t *testing.T) {
	kafkaID := deps.MustParseIdentity("com.acme:kafka-support:1.0")
	registry := extension.NewRegistry()
	registry.MustRegister(extension.Descriptor{
		ID:         "kafka",
		Extends:    "com.acme.app",
		Dependency: &kafkaID,
		Patterns:   classpath.Patterns{Share: []string{"org.apache.kafka"}},
	})
	registry.MustRegister(extension.Descriptor{ID: "other", Extends: "com.acme.other", Dependency: &kafkaID})

	resolver := deps.ResolverFunc(func(_ context.Context, id deps.Identity) (*deps.Node, error) {
		switch id {
		case kafkaID:
			return node(id.Coordinate(), []string{"com.acme.kafka"}, node("org.apache.kafka:kafka-clients:3.6.0", nil)), nil
		}
		return appTree(t), nil
	})

	result, err := quietRunner(resolver, registry).Execute(context.Background(), Options{
		Root: deps.MustParseIdentity("com.acme:app:1.0"),
		Instructions: manifest.Instructions{
			ModuleID:          "com.acme.app",
			EnabledExtensions: []string{"kafka", "other", "missing"},
		},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.Join(result.Applied, " ") != "kafka" {
		t.Errorf("Applied = %v", result.Applied)
	}
	if strings.Join(result.Instructions.AppliedExtensions, " ") != "kafka" {
		t.Errorf("AppliedExtensions = %v", result.Instructions.AppliedExtensions)
	}

	var shared []string
	for _, n := range result.State.Shared {
		shared = append(shared, n.ID.ArtifactID)
	}
	if strings.Join(shared, ",") != "kafka-support,kafka-clients" {
		t.Errorf("Shared = %v", shared)
	}
	found := false
	for _, c := range result.Instructions.ImportPackage {
		if strings.HasPrefix(c, "com.acme.kafka;") {
			found = true
		}
	}
	if !found {
		t.Errorf("extension packages not imported: %v", result.Instructions.ImportPackage)
	}
}

func TestExecute_SavesReport(t *testing.T) {
	store, err := report.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := quietRunner(nil, nil)
	runner.Store = store

	result, err := runner.Execute(context.Background(), Options{
		Tree:         appTree(t),
		Instructions: manifest.Instructions{ModuleID: "com.acme.app", ShareFilter: []string{"org.slf4j"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Report == nil {
		t.Fatal("Report not built")
	}

	saved, err := store.Get(context.Background(), result.Report.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if saved.ModuleID != "com.acme.app" || len(saved.Shared) != 1 || len(saved.Embedded) != 1 {
		t.Errorf("saved report = %+v", saved)
	}
	if saved.Embedded[0].SHA256 == "" {
		t.Error("embedded file not hashed")
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner(nil, nil).Execute(ctx, Options{Tree: appTree(t)})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
