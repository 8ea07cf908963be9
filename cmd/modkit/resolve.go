// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"modkit/internal/config"
	"modkit/internal/diag"
	"modkit/internal/issue"
	"modkit/internal/loader"
	"modkit/internal/semver"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	modsDirFlag string
	devFlag     bool
	reportFlag  string

	resolveCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the mods directory into a load order",
		Long: `Scan the mods directory, validate manifests and dependency
constraints, extract payloads into the content cache and compute the
final load order. All problems found in a stage are reported together.`,
		RunE: runResolve,
	}
)

func init() {
	resolveCmd.Flags().StringVar(&modsDirFlag, "mods-dir", "", "mods directory (overrides config)")
	resolveCmd.Flags().BoolVar(&devFlag, "dev", false, "development mode: accept raw .dll/.pak files")
	resolveCmd.Flags().StringVar(&reportFlag, "report", "", "write a load order report to this path")
}

func runResolve(cmd *cobra.Command, _ []string) error {
	h, err := newHandler(cmd)
	if err != nil {
		return err
	}

	if err := h.LoadMods(cmd.Context()); err != nil {
		return renderLoadError(err)
	}

	mods := h.LoadedMods()
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("✓ %d mod(s) loaded", len(mods))))
	printLoadOrder(mods)
	return nil
}

// newHandler builds a pipeline handler from config plus command flags.
func newHandler(cmd *cobra.Command) (*loader.Handler, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		renderIssue(issue.ConfigLoadFailedId)
		cfg = config.DefaultConfig()
	}

	opts := loader.Options{
		ModsDir:     cfg.ModsDir,
		CacheDir:    cfg.CacheDir,
		ConfigsDir:  cfg.ConfigsDir,
		Development: cfg.Development || devFlag,
		Version:     loaderVersion(),
		ReportPath:  cfg.ReportPath,
		Logger:      newLogger(cfg.LogLevel),
	}
	if modsDirFlag != "" {
		opts.ModsDir = modsDirFlag
	}
	if reportFlag != "" {
		opts.ReportPath = reportFlag
	}

	return loader.New(opts)
}

func loaderVersion() semver.Version {
	if v, err := semver.Parse(Version); err == nil {
		return v
	}
	return semver.MustParse("0.0.0")
}

func newLogger(level config.LogLevel) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "modkit"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	switch level {
	case config.LogLevelDebug:
		logger.SetLevel(log.DebugLevel)
	case config.LogLevelWarn:
		logger.SetLevel(log.WarnLevel)
	case config.LogLevelError:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// renderLoadError prints the full diagnostic batch of a failed stage, plus
// the help card for the first fatal code, and converts it into an exit error.
func renderLoadError(err error) error {
	var se *loader.StageError
	if !errors.As(err, &se) {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintln(os.Stderr, ErrorStyle.Render(se.Error()))
	for _, d := range se.Diagnostics {
		style := VerboseStyle
		if d.Severity == diag.SeverityFatal {
			style = ErrorStyle
		}
		fmt.Fprintln(os.Stderr, "  "+style.Render(d.String()))
	}

	for _, d := range se.Diagnostics {
		if d.Severity != diag.SeverityFatal {
			continue
		}
		if id, ok := issueForCode(d.Code); ok {
			renderIssue(id)
		}
		break
	}

	return &ExitError{Code: 1, Err: se}
}

// issueForCode maps diagnostic codes onto the user-facing issue catalog.
func issueForCode(code diag.Code) (issue.Id, bool) {
	switch code {
	case diag.CodeInvalidManifest, diag.CodeMissingObject, diag.CodeUnknownObjectType:
		return issue.ManifestParseErrorId, true
	case diag.CodeDuplicateModID, diag.CodeDuplicateModule:
		return issue.DuplicateModId, true
	case diag.CodeRawModRejected, diag.CodeRawModConflict:
		return issue.RawModRejectedId, true
	case diag.CodeMissingDependency:
		return issue.MissingDependencyId, true
	case diag.CodeVersionMismatch:
		return issue.VersionMismatchId, true
	case diag.CodeCycleDetected:
		return issue.DependencyCycleId, true
	case diag.CodeExtractionFailed:
		return issue.CacheCorruptedId, true
	default:
		return 0, false
	}
}

func printLoadOrder(mods []*loader.ModContainer) {
	for i, mc := range mods {
		kind := "paks only"
		if mc.HasModuleRef() {
			kind = "module"
		}
		line := fmt.Sprintf("%2d. %s %s %s",
			i+1,
			ModStyle.Render(mc.Descriptor.ModID),
			mc.Descriptor.Version,
			SubtitleStyle.Render("("+kind+")"))
		fmt.Println(line)
		if verbose {
			fmt.Println("     " + VerboseStyle.Render(mc.SourcePath))
		}
	}
}
