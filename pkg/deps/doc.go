// Package deps defines the resolved dependency tree that stackbundle
// classifies.
//
// # Overview
//
// An external artifact resolver (Maven, a local repository, fixture files)
// produces a tree of [Node] values rooted at the module being packaged.
// Every node carries a full Maven [Identity], the local artifact file, the
// manifest headers already present in that artifact, and its resolved
// children. This package only models that tree; it never fetches
// artifacts and never mutates a tree once built.
//
// # Identity
//
// [Identity] is a comparable (groupId, artifactId, version, extension,
// classifier) tuple and is used directly as a map key for deduplication:
//
//	id, _ := deps.ParseIdentity("org.slf4j:slf4j-api:2.0.9")
//	id.Coordinate() // "org.slf4j:slf4j-api:2.0.9"
//	id.JarName()    // "org.slf4j.slf4j-api.jar"
//
// # Packages
//
// [Node.Packages] lists the Java packages an artifact provides. Fixtures may
// pre-compute them in [Node.Provides]; otherwise the jar is opened through
// [archive.ListPackages]. Listing can fail with an [*EnumerationError], which
// callers treat as "this node contributes no packages".
//
// # Resolvers
//
// [TreeResolver] is the contract for the external resolver. [CachedResolver]
// wraps any resolver with a [cache.Cache] so repeated runs (one per module,
// or extension re-resolution) reuse previously resolved trees.
//
// [archive.ListPackages]: github.com/matzehuels/stackbundle/pkg/archive.ListPackages
// [cache.Cache]: github.com/matzehuels/stackbundle/pkg/cache.Cache
package deps
