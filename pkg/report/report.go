// Package report records the outcome of a resolution run so it can be
// inspected after the fact.
//
// A [Report] is a flattened, serialisable copy of a [classpath.State]: the
// bucket membership of every node, the classpath and manifest values that
// were written back, and a content hash of every embedded file. Reports
// are keyed by a random run id and persisted through a [Store]:
//
//   - [FileStore]: one JSON file per run, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared build hosts
//
// Build a report from a finished run with [New]:
//
//	rep, err := report.New(moduleID, rootID, state, merged.Applied, elapsed)
//	if err != nil {
//	    return err
//	}
//	err = store.Save(ctx, rep)
package report

import (
	"context"
	stderrors "errors"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackbundle/pkg/cache"
	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
)

// ErrNotFound is returned when no report exists for an id.
var ErrNotFound = stderrors.New("report not found")

// Entry is one classified dependency.
type Entry struct {
	Coordinate string `json:"coordinate" bson:"coordinate" yaml:"coordinate"`
	File       string `json:"file,omitempty" bson:"file,omitempty" yaml:"file,omitempty"`
	Bundle     bool   `json:"bundle,omitempty" bson:"bundle,omitempty" yaml:"bundle,omitempty"`
}

// Embedded is one classpath segment embedded into the bundle.
type Embedded struct {
	Segment  string `json:"segment" bson:"segment" yaml:"segment"`
	Location string `json:"location" bson:"location" yaml:"location"`
	// SHA256 is empty when the location is not a local file.
	SHA256 string `json:"sha256,omitempty" bson:"sha256,omitempty" yaml:"sha256,omitempty"`
}

// Report is the persisted result of one resolution run.
type Report struct {
	ID        string        `json:"id" bson:"_id" yaml:"id"`
	ModuleID  string        `json:"module_id" bson:"module_id" yaml:"module_id"`
	Root      string        `json:"root,omitempty" bson:"root,omitempty" yaml:"root,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at" yaml:"created_at"`
	Duration  time.Duration `json:"duration" bson:"duration" yaml:"duration"`
	Applied   []string      `json:"applied_extensions,omitempty" bson:"applied_extensions,omitempty" yaml:"applied_extensions,omitempty"`

	Shared    []Entry `json:"shared" bson:"shared" yaml:"shared"`
	NonShared []Entry `json:"nonshared" bson:"nonshared" yaml:"nonshared"`
	Optional  []Entry `json:"optional" bson:"optional" yaml:"optional"`
	Install   []Entry `json:"install" bson:"install" yaml:"install"`
	Excluded  []Entry `json:"excluded,omitempty" bson:"excluded,omitempty" yaml:"excluded,omitempty"`

	BundleClassPath []string   `json:"bundle_classpath,omitempty" bson:"bundle_classpath,omitempty" yaml:"bundle_classpath,omitempty"`
	RequireBundle   []string   `json:"require_bundle,omitempty" bson:"require_bundle,omitempty" yaml:"require_bundle,omitempty"`
	ImportPackage   []string   `json:"import_package,omitempty" bson:"import_package,omitempty" yaml:"import_package,omitempty"`
	Embedded        []Embedded `json:"embedded,omitempty" bson:"embedded,omitempty" yaml:"embedded,omitempty"`
}

// New builds a report for a finished run. Embedded local files are hashed;
// a file that cannot be read fails the whole report.
func New(moduleID string, root deps.Identity, s *classpath.State, applied []string, elapsed time.Duration) (*Report, error) {
	r := &Report{
		ID:              uuid.NewString(),
		ModuleID:        moduleID,
		CreatedAt:       time.Now().UTC(),
		Duration:        elapsed,
		Applied:         append([]string(nil), applied...),
		Shared:          entries(s.Shared),
		NonShared:       entries(s.NonShared),
		Optional:        entries(s.Optional),
		Install:         entries(s.Install),
		Excluded:        entries(s.Excluded),
		BundleClassPath: append([]string(nil), s.BundleClassPath...),
		RequireBundle:   append([]string(nil), s.RequireBundle...),
		ImportPackage:   append([]string(nil), s.ImportPackage...),
	}
	if root != (deps.Identity{}) {
		r.Root = root.String()
	}

	segments := make([]string, 0, len(s.Embedded))
	for seg := range s.Embedded {
		segments = append(segments, seg)
	}
	sort.Strings(segments)
	for _, seg := range segments {
		e := Embedded{Segment: seg, Location: s.Embedded[seg]}
		if info, err := os.Stat(e.Location); err == nil && info.Mode().IsRegular() {
			sum, err := cache.HashFile(e.Location)
			if err != nil {
				return nil, err
			}
			e.SHA256 = sum
		}
		r.Embedded = append(r.Embedded, e)
	}
	return r, nil
}

func entries(nodes []*deps.Node) []Entry {
	out := make([]Entry, len(nodes))
	for i, n := range nodes {
		out[i] = Entry{Coordinate: n.ID.Coordinate(), File: n.File, Bundle: n.Bundle}
	}
	return out
}

// Total returns the number of classified entries across the four
// classification buckets.
func (r *Report) Total() int {
	return len(r.Shared) + len(r.NonShared) + len(r.Optional) + len(r.Excluded)
}

// validateID rejects ids that are not UUIDs. Ids end up as file names and
// document keys.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid report id %q", id)
	}
	return nil
}

// Store persists reports.
type Store interface {
	// Save inserts or replaces the report with the same id.
	Save(ctx context.Context, r *Report) error

	// Get returns the report with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Report, error)

	// List returns the most recent reports first. An empty moduleID lists
	// every module; limit <= 0 means no limit.
	List(ctx context.Context, moduleID string, limit int) ([]*Report, error)

	Close(ctx context.Context) error
}
