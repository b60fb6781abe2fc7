package deps

import (
	"strings"

	"github.com/matzehuels/stackbundle/pkg/errors"
)

// DefaultExtension is assumed when a coordinate names no packaging type.
const DefaultExtension = "jar"

// Identity is the (groupId, artifactId, version, extension, classifier)
// tuple of a resolved artifact. Two nodes are the same dependency iff their
// identities are equal; the struct is comparable and safe as a map key.
type Identity struct {
	GroupID    string `json:"groupId" yaml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId"`
	Version    string `json:"version" yaml:"version"`
	Extension  string `json:"extension,omitempty" yaml:"extension,omitempty"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
}

// Normalize returns a copy with an empty extension replaced by "jar".
func (id Identity) Normalize() Identity {
	if id.Extension == "" {
		id.Extension = DefaultExtension
	}
	return id
}

// Coordinate returns "groupId:artifactId:version[:classifier]", the form
// pattern filters match against.
func (id Identity) Coordinate() string {
	s := id.GroupID + ":" + id.ArtifactID + ":" + id.Version
	if id.Classifier != "" {
		s += ":" + id.Classifier
	}
	return s
}

// String returns the Maven/Aether form
// "groupId:artifactId:extension[:classifier]:version".
func (id Identity) String() string {
	ext := id.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	parts := []string{id.GroupID, id.ArtifactID, ext}
	if id.Classifier != "" {
		parts = append(parts, id.Classifier)
	}
	return strings.Join(append(parts, id.Version), ":")
}

// Key returns "groupId:artifactId", the version-less package key.
func (id Identity) Key() string {
	return id.GroupID + ":" + id.ArtifactID
}

// JarName returns the classpath segment an embedded copy of this artifact
// is stored under: "{groupId}.{artifactId}.jar".
func (id Identity) JarName() string {
	return id.GroupID + "." + id.ArtifactID + ".jar"
}

// ResourcesJarName returns the side archive name used when re-bundling
// shared resources: "{groupId}.{artifactId}-resources.jar".
func (id Identity) ResourcesJarName() string {
	return id.GroupID + "." + id.ArtifactID + "-resources.jar"
}

// SymbolicName returns the default bundle symbolic name "groupId.artifactId".
func (id Identity) SymbolicName() string {
	return id.GroupID + "." + id.ArtifactID
}

// IsPOM reports whether the identity names a POM-only artifact.
func (id Identity) IsPOM() bool {
	return id.Extension == "pom"
}

// ParseIdentity parses a Maven coordinate. Accepted forms:
//
//	groupId:artifactId
//	groupId:artifactId:version
//	groupId:artifactId:extension:version
//	groupId:artifactId:extension:classifier:version
//
// A coordinate without a colon may use the filename-safe underscore form
// ("groupId_artifactId"), see [NormalizeCoordinate]. The extension
// defaults to "jar".
func ParseIdentity(coord string) (Identity, error) {
	coord = NormalizeCoordinate(strings.TrimSpace(coord))
	if err := errors.ValidateCoordinate(coord); err != nil {
		return Identity{}, err
	}

	p := strings.Split(coord, ":")
	id := Identity{GroupID: p[0], ArtifactID: p[1], Extension: DefaultExtension}
	switch len(p) {
	case 2:
	case 3:
		id.Version = p[2]
	case 4:
		id.Extension, id.Version = p[2], p[3]
	case 5:
		id.Extension, id.Classifier, id.Version = p[2], p[3], p[4]
	default:
		return Identity{}, errors.New(errors.ErrCodeInvalidCoordinate, "too many segments in %q", coord)
	}
	if id.Extension == "" {
		id.Extension = DefaultExtension
	}
	return id, nil
}

// MustParseIdentity is like [ParseIdentity] but panics on error.
func MustParseIdentity(coord string) Identity {
	id, err := ParseIdentity(coord)
	if err != nil {
		panic(err)
	}
	return id
}

// NormalizeCoordinate converts filename-safe coordinates to Maven format.
// Since colons are not allowed in filenames (especially on Windows and in some
// build tools), underscores can be used as a substitute. This function converts
// "groupId_artifactId" to "groupId:artifactId" when no colon is present.
//
// Examples:
//   - "com.google.guava:guava" → "com.google.guava:guava" (unchanged)
//   - "com.google.guava_guava" → "com.google.guava:guava" (converted)
func NormalizeCoordinate(coord string) string {
	if strings.Contains(coord, ":") {
		return coord
	}
	// GroupIds follow reverse domain notation (no underscores typically)
	// while artifactIds may contain hyphens or underscores
	if idx := strings.LastIndex(coord, "_"); idx != -1 {
		return coord[:idx] + ":" + coord[idx+1:]
	}
	return coord
}
