// Package io reads and writes dependency trees and resolution reports.
//
// # Tree Format
//
// A tree file is a single root node in JSON or YAML. Each node names its
// artifact by Maven coordinate and nests its resolved dependencies:
//
//	coordinate: com.acme:app:1.0.0
//	dependencies:
//	  - coordinate: org.slf4j:slf4j-api:2.0.9
//	    file: jars/slf4j-api-2.0.9.jar
//	    bundle: true
//	  - coordinate: com.acme:util:1.2
//	    packages: [com.acme.util]
//	    dependencies:
//	      - coordinate: com.google.guava:guava:32.1.0
//	        url: https://repo1.maven.org/maven2/com/google/guava/...
//
// Node fields:
//   - coordinate: required, any form accepted by [deps.ParseIdentity]
//   - file: local artifact path
//   - url: artifact origin
//   - bundle: artifact already carries module metadata
//   - headers: manifest entries
//   - packages: pre-computed package list (otherwise read from file)
//   - dependencies: child nodes
//
// # Import
//
// [ReadJSON] and [ReadYAML] decode from any io.Reader; [ImportTree] picks the
// decoder from the file extension (.json, .yaml, .yml).
//
// # Directory Resolver
//
// [DirResolver] implements [deps.TreeResolver] over a directory of tree
// files named after the root coordinate, so extension trees can be
// resolved without a repository:
//
//	com.acme_kafka-support_1.0.yaml   (groupId_artifactId_version)
//	com.acme_kafka-support.yaml       (groupId_artifactId)
//
// Relative file paths inside a fixture are resolved against the
// directory. Nodes without headers get them from the jar's manifest.
//
// # Export
//
// [WriteJSON], [WriteYAML] and [ExportTree] write trees in the same format,
// with coordinates in the full "groupId:artifactId:extension:version" form.
// An import followed by an export keeps every field except empty package
// lists, which are written as absent. [WriteReport] and
// [ExportReport] write a [report.Report].
package io
