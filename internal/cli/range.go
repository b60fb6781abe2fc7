package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/filter"
	"github.com/matzehuels/stackbundle/pkg/versionrange"
)

// rangeCommand creates the range command.
func (c *CLI) rangeCommand() *cobra.Command {
	var digits int

	cmd := &cobra.Command{
		Use:   "range <version>...",
		Short: "Convert versions to OSGi version ranges",
		Long: `Convert concrete versions to OSGi version ranges.

--digits selects how much of the version may float: 0 exact, 1 micro,
2 minor, 3 major, 4 unbounded. Without --digits the configured
version_digits is used.

Examples:
  stackbundle range 1.2.3              # [1.2.3,1.3.0)
  stackbundle range 1.2.3 --digits 3   # [1.2.3,2.0.0)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("digits") {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				digits = cfg.VersionDigits
			}
			if digits < versionrange.Exact || digits > versionrange.Unbounded {
				return errors.New(errors.ErrCodeInvalidInput, "--digits must be between %d and %d", versionrange.Exact, versionrange.Unbounded)
			}
			w := cmd.OutOrStdout()
			for _, v := range args {
				fmt.Fprintf(w, "%s %s %s\n", v, StyleDim.Render(iconArrow), StyleValue.Render(versionrange.ToRange(v, digits)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&digits, "digits", "d", versionrange.Minor, "version digits that may float (0-4)")
	return cmd
}

// matchCommand creates the match command.
func (c *CLI) matchCommand() *cobra.Command {
	var failUnmatched bool

	cmd := &cobra.Command{
		Use:   "match <patterns> <coordinate>...",
		Short: "Test coordinates against a filter expression",
		Long: `Test coordinates against a whitespace-separated filter expression, the
same syntax used by Share-Filter and the exclude filters.

Examples:
  stackbundle match 'org.slf4j *:guava' org.slf4j:slf4j-api:2.0.9 com.google.guava:guava:33.0
  stackbundle match 'com.acme.*:*:1.*' com.acme.core:util:1.4 --fail`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := filter.Compile(args[0])
			if f.Empty() {
				printWarning("filter %q has no patterns and matches nothing", args[0])
			}
			w := cmd.OutOrStdout()
			unmatched := 0
			for _, coord := range args[1:] {
				if f.MatchCoordinate(coord) {
					fmt.Fprintf(w, "%s %s\n", styleIconSuccess.Render(iconSuccess), coord)
					continue
				}
				unmatched++
				fmt.Fprintf(w, "%s %s\n", styleIconError.Render(iconError), StyleDim.Render(coord))
			}
			if failUnmatched && unmatched > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%d of %d coordinates did not match", unmatched, len(args)-1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failUnmatched, "fail", false, "exit non-zero if any coordinate does not match")
	return cmd
}
