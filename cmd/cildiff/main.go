// Command cildiff reports the structural differences between two CIL
// policy files: which declarations and rules were added or removed, the
// same way a native diff tool would, but aware of CIL's
// set-of-statements semantics rather than treating the files as flat
// text.
package main

import (
	"bytes"
	"compress/bzip2"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cildiff/cildiff"
	"github.com/cildiff/cildiff/internal/cilparse"
)

// version is stamped at release time; "dev" covers local builds.
const version = "dev"

var log zerolog.Logger

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	if err := newRootCmd().Execute(); err != nil {
		reportFatal(err)
		os.Exit(1)
	}
}

// reportFatal logs a top-level failure without a raw Go stack trace.
// Structural-invariant panics from the comparison engine are recovered
// in the root command's RunE, at the CLI boundary, and reach here as
// ordinary errors, ending in the same clean non-zero exit as any other
// error — the core package never recovers its own
// panics.
func reportFatal(err error) {
	log.Error().Msg(err.Error())
}

// jsonFlag implements pflag.Value for --json, which is valid bare (just
// switches the report to JSON) or with an explicit "pretty" value
// (--json=pretty, indented). A plain bool flag can't express this:
// pflag's bool Set always runs the value through strconv.ParseBool, so
// --json=pretty would fail to parse.
type jsonFlag struct {
	set    bool
	pretty bool
}

func (j *jsonFlag) String() string {
	switch {
	case !j.set:
		return ""
	case j.pretty:
		return "pretty"
	default:
		return "true"
	}
}

func (j *jsonFlag) Set(s string) error {
	switch s {
	case "", "true":
		j.pretty = false
	case "pretty":
		j.pretty = true
	default:
		return errors.Errorf("invalid value %q for --json (want \"pretty\" or no value)", s)
	}
	j.set = true
	return nil
}

func (j *jsonFlag) Type() string { return "json" }

func newRootCmd() *cobra.Command {
	var (
		jsonOut jsonFlag
		check   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:     "cildiff LEFT RIGHT",
		Short:   "Structurally diff two CIL policy files",
		Version: version,
		Args:    cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			defer func() {
				if r := recover(); r != nil {
					if pErr, ok := r.(error); ok {
						err = errors.Wrap(pErr, "cildiff: internal invariant violation")
					} else {
						err = errors.Errorf("cildiff: internal invariant violation: %v", r)
					}
				}
			}()

			leftPath, rightPath := args[0], args[1]

			if check {
				if err := preflight(leftPath, rightPath); err != nil {
					return err
				}
			}

			leftAST, rightAST, err := loadBoth(leftPath, rightPath)
			if err != nil {
				return err
			}

			log.Debug().Msg("building comparison roots")
			leftRoot := cildiff.BuildComparisonRoot(leftAST)
			rightRoot := cildiff.BuildComparisonRoot(rightAST)

			log.Debug().Msg("comparing roots")
			tree := cildiff.CompareRoots(leftRoot, rightRoot)

			st := cildiff.ComputeStats(tree)
			log.Debug().
				Int("leftRecords", st.LeftRecords).
				Int("rightRecords", st.RightRecords).
				Int("nodesVisited", st.NodesVisited).
				Msg("diff complete")

			if jsonOut.set {
				if err := cildiff.PrintDiffTreeJSON(cmd.OutOrStdout(), tree, jsonOut.pretty); err != nil {
					return errors.Wrap(err, "cildiff: writing json report")
				}
			} else {
				if err := cildiff.PrintDiffTree(cmd.OutOrStdout(), tree, cilparse.Renderer{}); err != nil {
					return errors.Wrap(err, "cildiff: writing report")
				}
			}

			if !tree.IsEmpty() {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().Var(&jsonOut, "json", "emit the report as JSON instead of plain text; --json=pretty indents it")
	cmd.Flags().Lookup("json").NoOptDefVal = "true"
	cmd.Flags().BoolVar(&check, "check", false, "validate both inputs are readable before parsing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each comparison phase")
	cmd.Flags().BoolP("version", "V", false, "print version and exit")
	cmd.SetVersionTemplate("cildiff {{.Version}}\n")

	return cmd
}

// preflight reads both inputs (decompressing if needed) purely to
// validate them, aggregating failures from both sides into one error via
// go-multierror rather than stopping at the first bad input.
func preflight(leftPath, rightPath string) error {
	var result *multierror.Error
	for _, p := range []string{leftPath, rightPath} {
		if _, err := readInput(p); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "check %s", p))
		}
	}
	return result.ErrorOrNil()
}

func loadBoth(leftPath, rightPath string) (cildiff.ASTNode, cildiff.ASTNode, error) {
	leftSrc, err := readInput(leftPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", leftPath)
	}
	rightSrc, err := readInput(rightPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", rightPath)
	}

	leftAST, err := cilparse.Parse(leftSrc)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", leftPath)
	}
	rightAST, err := cilparse.Parse(rightSrc)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", rightPath)
	}
	return leftAST, rightAST, nil
}

// readInput reads path (or stdin, for "-"), transparently decompressing
// bzip2 input identified by its "BZh" magic — CIL policies are sometimes
// shipped bzip2-compressed alongside a compiled binary policy.
func readInput(path string) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(raw, []byte("BZh")) {
		decompressed, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, errors.Wrap(err, "decompressing bzip2 input")
		}
		return decompressed, nil
	}
	return raw, nil
}
