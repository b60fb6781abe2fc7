// Package classpath classifies a resolved dependency tree into the buckets
// a bundle packager needs.
//
// # Buckets
//
// Every direct child of the root is classified with four pattern filters,
// evaluated in a fixed order; the first match wins:
//
//  1. Exclude-Package-Filter: the node and its whole subtree are dropped.
//  2. Exclude-Optional-Filter: the node becomes optional, and so does every
//     descendant not matched by the exclude-package filter (one flat pass,
//     no further classification).
//  3. Share-Filter or Require-Bundle-Filter: the node is shared. All of its
//     descendants are flattened into the shared bucket except those matched
//     by either exclude filter, and the node is added to the install order.
//  4. Otherwise the node is non-shared (embedded) and its direct children
//     are classified again from step 1.
//
// The root itself is never classified. Trees of enabled extensions are
// folded in after the root's children, always through the shared branch.
//
// # Output
//
// After the walk each bucket is deduplicated by [deps.Identity] (first
// occurrence wins), identity conflicts between buckets are settled, and
// every embeddable non-shared artifact is added to the Bundle-ClassPath as
// "{groupId}.{artifactId}.jar". The first segment ever added to an empty
// classpath is preceded by "." so the module's own classes stay first.
//
// Shared artifacts may additionally have their service-loader metadata
// copied into a "-resources.jar" side archive ([Options.IncludeSharedResources]).
//
// A [Resolver] is immutable; each [Resolver.Resolve] call owns a private
// run state, so one Resolver may be used from several goroutines on
// different trees.
package classpath
