// The convert command orchestrates the full pipeline:
// normalize → lower → emit → validate → write.
//
// It handles flag validation, dialect selection, batch vs. single-file
// mode, and the strictness exit policy. The core never decides policy; it
// reports warnings and issues as data and this command acts on them.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/output"
	"github.com/gaurav-prasanna/flareconv/core/pipeline"
	"github.com/gaurav-prasanna/flareconv/toc"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagDialect     string
	flagMath        string
	flagStrictness  string
	flagTableStyle  string
	flagCollapsible bool
	flagInferAlpha  bool
	flagMaxDepth    int
	flagOutputDir   string
	flagWorkers     int
	flagTOC         string
	flagMasterTitle string
	flagCopyImages  bool
	flagPDF         bool
	flagReport      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <path>",
	Short: "Convert a topic file or content directory to the selected dialect",
	Long: `Convert reads Flare HTML export files, repairs their structural
anomalies, lowers them to the canonical block structure, and emits the
selected dialect. Emitted text is re-parsed for structural defects, which
are reported per file.

Examples:
  flareconv convert Content/intro.htm --dialect asciidoc
  flareconv convert Content/ --dialect markdown --out ./converted
  flareconv convert Content/ --toc Project/TOCs/Master.fltoc --dialect asciidoc
  flareconv convert Content/intro.htm --dialect markdown --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&flagDialect, "dialect", "asciidoc", "Target dialect: asciidoc, markdown, or helpdesk")
	convertCmd.Flags().StringVar(&flagMath, "math", "latex", "Math output convention: latex or asciimath")
	convertCmd.Flags().StringVar(&flagStrictness, "strictness", "normal", "Validation strictness: strict, normal, or lenient")
	convertCmd.Flags().StringVar(&flagTableStyle, "table-style", "all", "Table frame/grid style: all or none")
	convertCmd.Flags().BoolVar(&flagCollapsible, "collapsible", false, "Render admonitions collapsible where the dialect supports it")
	convertCmd.Flags().BoolVar(&flagInferAlpha, "infer-alpha", false, "Infer alphabetic list style from marker text")
	convertCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "Maximum list nesting depth before style degrades (0 = default)")
	convertCmd.Flags().StringVar(&flagOutputDir, "out", "", "Output directory (default: current directory)")
	convertCmd.Flags().IntVar(&flagWorkers, "workers", 4, "Concurrent conversions in batch mode")
	convertCmd.Flags().StringVar(&flagTOC, "toc", "", "TOC file for master document assembly (batch mode)")
	convertCmd.Flags().StringVar(&flagMasterTitle, "master-title", "Documentation", "Title for the assembled master document")
	convertCmd.Flags().BoolVar(&flagCopyImages, "copy-images", false, "Copy referenced images into the output tree (batch mode)")
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Also write a PDF review copy (markdown dialect only)")
	convertCmd.Flags().BoolVar(&flagReport, "report", false, "Also write a JSON conversion report per topic")
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading input path: %w", err)
	}

	if info.IsDir() {
		return runBatch(cmd.Context(), path, opts, writer)
	}
	return runSingle(path, opts, writer)
}

// buildOptions translates and validates the flags into the options value
// the core consumes.
func buildOptions() (core.Options, error) {
	opts := core.Options{
		Dialect:      core.Dialect(flagDialect),
		Math:         core.MathConvention(flagMath),
		Strictness:   core.Strictness(flagStrictness),
		TableStyle:   core.TableStyle(flagTableStyle),
		Collapsible:  flagCollapsible,
		InferAlpha:   flagInferAlpha,
		MaxListDepth: flagMaxDepth,
	}

	switch opts.Dialect {
	case core.DialectAsciiDoc, core.DialectMarkdown, core.DialectHelpdesk:
	default:
		return opts, fmt.Errorf("unknown dialect %q (want asciidoc, markdown, or helpdesk)", flagDialect)
	}
	switch opts.Math {
	case core.MathLaTeX, core.MathAsciiMath:
	default:
		return opts, fmt.Errorf("unknown math convention %q (want latex or asciimath)", flagMath)
	}
	switch opts.Strictness {
	case core.StrictnessStrict, core.StrictnessNormal, core.StrictnessLenient:
	default:
		return opts, fmt.Errorf("unknown strictness %q (want strict, normal, or lenient)", flagStrictness)
	}
	if flagPDF && opts.Dialect != core.DialectMarkdown {
		return opts, fmt.Errorf("--pdf requires --dialect markdown")
	}
	return opts, nil
}

// runSingle converts one topic file.
func runSingle(path string, opts core.Options, writer *output.Writer) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := pipeline.Convert(string(raw), path, opts)
	if err != nil {
		return fmt.Errorf("converting %s: %w", path, err)
	}

	outPath, err := writer.WriteFlat(path, []byte(result.Content), pipeline.Extension(opts))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", outPath)

	if flagPDF {
		data, err := output.RenderPDF(result.Content, topicTitle(path))
		if err != nil {
			return fmt.Errorf("rendering PDF: %w", err)
		}
		pdfPath, err := writer.WriteFlat(path, data, ".pdf")
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Written: %s\n", pdfPath)
	}

	if flagReport {
		if err := writeReport(writer, path, opts, result); err != nil {
			return err
		}
	}

	reportFindings(path, result)
	return strictnessExit(opts, result.Issues)
}

func writeReport(writer *output.Writer, sourcePath string, opts core.Options, result core.Result) error {
	data, err := output.RenderReport(sourcePath, opts.Dialect, result)
	if err != nil {
		return err
	}
	reportPath, err := writer.WriteFlat(sourcePath, data, ".report.json")
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Report: %s\n", reportPath)
	return nil
}

// runBatch converts every topic under root.
func runBatch(ctx context.Context, root string, opts core.Options, writer *output.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := toc.DiscoverTopics(root)
	if err != nil {
		return fmt.Errorf("discovering topics: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Found %d topics to process\n", len(paths))

	read := func(p string) (string, error) {
		data, err := os.ReadFile(p)
		return string(data), err
	}
	results := toc.ConvertAll(ctx, paths, opts, flagWorkers, read)

	copier := toc.NewCopier(writer.OutputDir)
	searchDirs := []string{root, filepath.Join(root, "Resources", "Images")}

	var errCount int
	var allIssues []core.ValidationIssue
	for i, res := range results {
		fmt.Fprintf(os.Stdout, "[%d/%d] %s\n", i+1, len(results), res.SourcePath)
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Error: %v\n", res.Err)
			errCount++
			continue
		}

		outPath, err := writer.WriteMirrored(root, res.SourcePath, []byte(res.Result.Content), pipeline.Extension(opts))
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Write error: %v\n", err)
			errCount++
			continue
		}
		fmt.Fprintf(os.Stdout, "  ✓ Written: %s\n", outPath)
		reportFindings(res.SourcePath, res.Result)
		allIssues = append(allIssues, res.Result.Issues...)

		if flagReport {
			if err := writeReport(writer, res.SourcePath, opts, res.Result); err != nil {
				fmt.Fprintf(os.Stderr, "  ✗ Report error: %v\n", err)
			}
		}

		if flagCopyImages {
			copyTopicImages(copier, res.SourcePath, searchDirs, read)
		}
	}

	if flagTOC != "" {
		if err := writeMaster(root, opts, writer); err != nil {
			return err
		}
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d topics failed\n", errCount, len(results))
	}
	return strictnessExit(opts, allIssues)
}

func copyTopicImages(copier *toc.Copier, sourcePath string, searchDirs []string, read func(string) (string, error)) {
	raw, err := read(sourcePath)
	if err != nil {
		return
	}
	for _, ref := range toc.ImageRefs(raw) {
		if _, err := copier.Copy(ref, filepath.Dir(sourcePath), searchDirs); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Image: %v\n", err)
		}
	}
}

func writeMaster(root string, opts core.Options, writer *output.Writer) error {
	entries, err := toc.Load(flagTOC, root)
	if err != nil {
		return fmt.Errorf("loading TOC: %w", err)
	}
	master := toc.BuildMaster(flagMasterTitle, entries, opts)
	path, err := writer.WriteFlat("master"+pipeline.Extension(opts), []byte(master), pipeline.Extension(opts))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Master: %s\n", path)
	return nil
}

// reportFindings prints warnings and validation issues for one document.
func reportFindings(path string, result core.Result) {
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "  warning [%s] %s\n", w.Stage, w.Message)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(os.Stderr, "  %s [%s] line %d: %s\n", issue.Severity, issue.RuleID, issue.Line, issue.Message)
		if issue.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "    suggestion: %s\n", issue.Suggestion)
		}
	}
}

// strictnessExit applies the strict-mode policy: error-severity issues
// fail the run. Normal and lenient modes always succeed.
func strictnessExit(opts core.Options, issues []core.ValidationIssue) error {
	if opts.Strictness != core.StrictnessStrict {
		return nil
	}
	errCount := 0
	for _, issue := range issues {
		if issue.Severity == core.SeverityError {
			errCount++
		}
	}
	if errCount > 0 {
		return fmt.Errorf("strict mode: %d error-severity validation issues", errCount)
	}
	return nil
}

// topicTitle derives a display title from the source filename.
func topicTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(name, "_", " ")
}
