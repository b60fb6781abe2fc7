// Package manifest models the packaging instructions stackbundle reads and
// writes, and parses the OSGi header syntax they use.
//
// Instructions arrive as a flat string→string property bag (the same shape
// as a jar manifest or a Maven plugin <instructions> block). The keys
// stackbundle understands are lifted into typed fields of [Instructions];
// everything else is kept verbatim in [Instructions.Extra] and written back
// unchanged.
package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackbundle/pkg/errors"
)

// Recognised instruction keys.
const (
	KeyModuleID              = "Module-Id"
	KeyBundleClassPath       = "Bundle-ClassPath"
	KeyRequireBundle         = "Require-Bundle"
	KeyImportPackage         = "Import-Package"
	KeyEnabledExtensions     = "Enabled-Extensions"
	KeyAppliedExtensions     = "Applied-Extensions"
	KeyShareFilter           = "Share-Filter"
	KeyRequireBundleFilter   = "Require-Bundle-Filter"
	KeyExcludePackageFilter  = "Exclude-Package-Filter"
	KeyExcludeOptionalFilter = "Exclude-Optional-Filter"

	// Artifact headers read from dependency manifests.
	KeyBundleSymbolicName = "Bundle-SymbolicName"
	KeyExportPackage      = "Export-Package"
)

// Instructions is the typed view of a module's packaging instructions.
//
// Clause-valued headers (Bundle-ClassPath, Require-Bundle, Import-Package)
// hold one clause per element. Filter and extension headers hold one
// whitespace-separated token per element.
type Instructions struct {
	ModuleID          string
	BundleClassPath   []string
	RequireBundle     []string
	ImportPackage     []string
	EnabledExtensions []string
	AppliedExtensions []string

	ShareFilter           []string
	RequireBundleFilter   []string
	ExcludePackageFilter  []string
	ExcludeOptionalFilter []string

	// Extra holds every property that is not one of the keys above.
	Extra map[string]string
}

// FromProperties builds Instructions from a raw property map.
func FromProperties(props map[string]string) Instructions {
	in := Instructions{Extra: make(map[string]string)}
	for k, v := range props {
		switch k {
		case KeyModuleID:
			in.ModuleID = strings.TrimSpace(v)
		case KeyBundleClassPath:
			in.BundleClassPath = SplitClauses(v)
		case KeyRequireBundle:
			in.RequireBundle = SplitClauses(v)
		case KeyImportPackage:
			in.ImportPackage = SplitClauses(v)
		case KeyEnabledExtensions:
			in.EnabledExtensions = splitTokens(v)
		case KeyAppliedExtensions:
			in.AppliedExtensions = splitTokens(v)
		case KeyShareFilter:
			in.ShareFilter = strings.Fields(v)
		case KeyRequireBundleFilter:
			in.RequireBundleFilter = strings.Fields(v)
		case KeyExcludePackageFilter:
			in.ExcludePackageFilter = strings.Fields(v)
		case KeyExcludeOptionalFilter:
			in.ExcludeOptionalFilter = strings.Fields(v)
		default:
			in.Extra[k] = v
		}
	}
	return in
}

// Properties flattens the instructions back into a property map. Empty
// headers are omitted.
func (in Instructions) Properties() map[string]string {
	props := make(map[string]string, len(in.Extra)+10)
	for k, v := range in.Extra {
		props[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			props[key] = value
		}
	}
	set(KeyModuleID, in.ModuleID)
	set(KeyBundleClassPath, strings.Join(in.BundleClassPath, ","))
	set(KeyRequireBundle, strings.Join(in.RequireBundle, ","))
	set(KeyImportPackage, strings.Join(in.ImportPackage, ","))
	set(KeyEnabledExtensions, strings.Join(in.EnabledExtensions, " "))
	set(KeyAppliedExtensions, strings.Join(in.AppliedExtensions, " "))
	set(KeyShareFilter, strings.Join(in.ShareFilter, " "))
	set(KeyRequireBundleFilter, strings.Join(in.RequireBundleFilter, " "))
	set(KeyExcludePackageFilter, strings.Join(in.ExcludePackageFilter, " "))
	set(KeyExcludeOptionalFilter, strings.Join(in.ExcludeOptionalFilter, " "))
	return props
}

// Clone returns a deep copy.
func (in Instructions) Clone() Instructions {
	out := in
	out.BundleClassPath = cloneStrings(in.BundleClassPath)
	out.RequireBundle = cloneStrings(in.RequireBundle)
	out.ImportPackage = cloneStrings(in.ImportPackage)
	out.EnabledExtensions = cloneStrings(in.EnabledExtensions)
	out.AppliedExtensions = cloneStrings(in.AppliedExtensions)
	out.ShareFilter = cloneStrings(in.ShareFilter)
	out.RequireBundleFilter = cloneStrings(in.RequireBundleFilter)
	out.ExcludePackageFilter = cloneStrings(in.ExcludePackageFilter)
	out.ExcludeOptionalFilter = cloneStrings(in.ExcludeOptionalFilter)
	out.Extra = make(map[string]string, len(in.Extra))
	for k, v := range in.Extra {
		out.Extra[k] = v
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// splitTokens splits on whitespace and commas.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Load reads instructions from a TOML file. Keys are the property names;
// values are strings or arrays of strings:
//
//	"Module-Id" = "my-module"
//	"Share-Filter" = ["org.slf4j", "com.acme.*"]
//	"Bundle-ClassPath" = ".,lib/a.jar"
func Load(path string) (Instructions, error) {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return Instructions{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "instructions file %s", path)
		}
		return Instructions{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	props := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := propertyValue(k, v)
		if err != nil {
			return Instructions{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
		}
		props[k] = s
	}
	return FromProperties(props), nil
}

func propertyValue(key string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("%s: array items must be strings, got %T", key, item)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, separatorFor(key)), nil
	default:
		return "", fmt.Errorf("%s: expected string or array of strings, got %T", key, v)
	}
}

// separatorFor returns the join separator used when a header is given as
// a TOML array.
func separatorFor(key string) string {
	switch key {
	case KeyEnabledExtensions, KeyAppliedExtensions, KeyShareFilter,
		KeyRequireBundleFilter, KeyExcludePackageFilter, KeyExcludeOptionalFilter:
		return " "
	default:
		return ","
	}
}

// Encode writes the instructions as TOML, one string property per key.
func (in Instructions) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(in.Properties())
}
