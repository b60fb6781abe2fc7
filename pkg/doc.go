// Package pkg provides the core libraries for stackbundle.
//
// # Overview
//
// stackbundle takes a module's resolved dependency tree and its packaging
// instructions and decides, for every dependency, whether it is shared with
// other bundles, embedded into the module, optional, or excluded. The
// outcome is written back as Bundle-ClassPath, Require-Bundle and
// Import-Package headers.
//
// # Architecture
//
//	tree file / coordinate
//	         ↓
//	    [deps] + [io] (resolve the tree, cached)
//	         ↓
//	    [extension] (merge enabled extensions)
//	         ↓
//	    [classpath] (classify, embed, re-bundle shared resources)
//	         ↓
//	    [manifest] headers, [report], [render/nodelink] diagram
//
// [pipeline] runs these stages in order and is what the CLI calls.
//
// # Main Packages
//
// [filter] compiles coordinate patterns such as "org.slf4j" or
// "*:guava:1.*". [versionrange] turns versions into OSGi ranges.
// [manifest] parses and writes instruction headers and jar manifests.
// [archive] reads and writes jar files.
//
// [config] loads stackbundle.toml and STACKBUNDLE_* variables. [cache]
// stores resolved trees on disk or in Redis. [observability] defines the
// hooks that [observability/prom] turns into Prometheus metrics.
//
// # Quick Start
//
//	tree, _ := io.ImportTree("app-tree.yaml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Tree: tree,
//	    Instructions: manifest.Instructions{ShareFilter: []string{"org.slf4j"}},
//	})
//	fmt.Println(result.Instructions.ImportPackage)
//
// # Testing
//
//	go test ./...                        # Unit tests
//	go test -tags integration ./pkg/...  # Redis and MongoDB backends
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/pipeline
// [filter]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/filter
// [versionrange]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/versionrange
// [archive]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/archive
// [config]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/observability/prom
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/deps
// [io]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/io
// [extension]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/extension
// [classpath]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/classpath
// [report]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/report
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stackbundle/pkg/render/nodelink
package pkg
