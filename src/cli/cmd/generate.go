package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamcast/docker-streamcast/src/config"
	"github.com/streamcast/docker-streamcast/src/manifest"
	"github.com/streamcast/docker-streamcast/src/output"
	"github.com/streamcast/docker-streamcast/src/render"
	"github.com/streamcast/docker-streamcast/src/upstream"
	"github.com/streamcast/docker-streamcast/src/verify"
)

var (
	genOutput     string
	genDryRun     bool
	genSkipVerify bool
	genPrune      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render build definitions and emit the manifest",
	Long: `Regenerate the per-version build definitions and write the stackbrew
manifest to stdout.

Lists release tags on the upstream remote, keeps every version that is at
least source.min_version and ships source.required_file, renders one
directory per accepted version, runs the checks, and emits the manifest.
Progress goes to stderr so the manifest can be redirected on its own:

  docker-streamcast generate > manifest`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genOutput, "output", "", "output directory (default: output.dir from config)")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "show the plan and manifest without writing files")
	generateCmd.Flags().BoolVar(&genSkipVerify, "skip-verify", false, "skip post-render checks")
	generateCmd.Flags().BoolVar(&genPrune, "prune", false, "remove version directories that fell out of the accepted set")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	color := output.UseColor()
	w := os.Stderr
	pipelineStart := time.Now()

	outDir := cfg.Output.Dir
	if genOutput != "" {
		outDir = genOutput
	}

	minVer, err := cfg.Source.MinSemver()
	if err != nil {
		return err
	}
	skips, err := config.CompileSkips(cfg.Source.Skip)
	if err != nil {
		return err
	}
	renderer, err := render.New()
	if err != nil {
		return err
	}

	// Pipeline context block
	output.ContextBlock(w, []output.KV{
		{Key: "source", Value: cfg.Source.Repo},
		{Key: "min", Value: cfg.Source.MinVersion.String()},
		{Key: "requires", Value: cfg.Source.RequiredFile},
		{Key: "max", Value: fmt.Sprintf("%d", cfg.Source.MaxVersions)},
		{Key: "output", Value: outDir},
		{Key: "branch", Value: cfg.Images.Branch},
	})

	// --- Discover ---
	output.SectionStartCollapsed(w, "dsc_discover", "Discover")
	discoverStart := time.Now()

	tags, err := upstream.ListVersionTags(ctx, cfg.Source.Repo)
	if err != nil {
		output.SectionEnd(w, "dsc_discover")
		return err
	}
	discoverElapsed := time.Since(discoverStart)

	discoverSec := output.NewSection(w, "Discover", discoverElapsed, color)
	discoverSec.Row("%-16s%s", "remote", cfg.Source.Repo)
	discoverSec.Row("%-16s%d version tags", "found", len(tags))
	if len(tags) > 0 {
		discoverSec.Row("%-16s%s .. %s", "range", tags[0].Name, tags[len(tags)-1].Name)
	}
	discoverSec.Close()
	output.SectionEnd(w, "dsc_discover")
	discoverSummary := fmt.Sprintf("%d version tags", len(tags))

	// --- Probe ---
	output.SectionStart(w, "dsc_probe", "Probe")
	probeStart := time.Now()

	clone, err := upstream.OpenClone(ctx, cfg.Source.Repo)
	if err != nil {
		output.SectionEnd(w, "dsc_probe")
		return err
	}
	defer clone.Close()

	releases, rejected, selErr := upstream.SelectReleases(ctx, clone, tags, upstream.SelectOptions{
		Min:          minVer,
		RequiredFile: cfg.Source.RequiredFile,
		MaxVersions:  cfg.Source.MaxVersions,
		Skip:         skips,
	})
	probeElapsed := time.Since(probeStart)

	// The rejection rows stay visible even when selection errors out:
	// they are the fastest way to see why nothing qualified.
	probeSec := output.NewSection(w, "Probe", probeElapsed, color)
	for _, rel := range releases {
		probeSec.Row("%-10s %s  %s", rel.Tag.Name, shortCommit(rel.Commit), output.StatusIcon("success", color))
	}
	if len(releases) > 0 && len(rejected) > 0 {
		probeSec.Separator()
	}
	for _, rej := range rejected {
		probeSec.Row("%-10s %s  %s", rej.Tag.Name, output.StatusIcon("skipped", color), output.Dimmed(rej.Reason, color))
	}
	probeSec.Close()
	output.SectionEnd(w, "dsc_probe")
	if selErr != nil {
		return selErr
	}

	probeSummary := fmt.Sprintf("%d accepted, %d rejected", len(releases), len(rejected))
	accepted := make([]string, len(releases))
	for i, rel := range releases {
		accepted[i] = rel.Tag.Name
	}

	// --- Dry run ---
	if genDryRun {
		for _, v := range accepted {
			fmt.Fprintf(w, "plan: write %s\n", filepath.Join(outDir, v, cfg.Output.Dockerfile))
		}
		if genPrune {
			fmt.Fprintf(w, "plan: prune version directories other than %s\n", strings.Join(accepted, ", "))
		}
		fmt.Fprintln(w)
		_, _, err := emitManifest(ctx, accepted)
		return err
	}

	// --- Render ---
	output.SectionStartCollapsed(w, "dsc_render", "Render")
	renderStart := time.Now()

	paths, err := renderer.Generate(outDir, cfg.Output.Dockerfile, accepted)
	if err != nil {
		output.SectionEnd(w, "dsc_render")
		return err
	}
	var pruned []string
	if genPrune {
		pruned, err = render.Cleanup(outDir, accepted)
		if err != nil {
			output.SectionEnd(w, "dsc_render")
			return err
		}
	}
	renderElapsed := time.Since(renderStart)

	renderSec := output.NewSection(w, "Render", renderElapsed, color)
	for _, p := range paths {
		renderSec.Row("%-16s→ %s", "Dockerfile", p)
	}
	for _, name := range pruned {
		renderSec.Row("%-16s→ %s", "pruned", name)
	}
	renderSec.Close()
	output.SectionEnd(w, "dsc_render")

	renderSummary := fmt.Sprintf("%d build definitions", len(paths))
	if len(pruned) > 0 {
		renderSummary += fmt.Sprintf(", %d pruned", len(pruned))
	}

	// --- Verify ---
	verifyStatus := "success"
	var verifySummary string
	switch {
	case genSkipVerify:
		verifyStatus = "skipped"
		verifySummary = "--skip-verify"
	case !cfg.Verify.Enabled:
		verifyStatus = "skipped"
		verifySummary = "disabled in config"
	default:
		output.SectionStart(w, "dsc_verify", "Verify")
		verifyStart := time.Now()

		findings, files, stats, err := runChecks(ctx, renderer, outDir)
		verifyElapsed := time.Since(verifyStart)
		if err != nil {
			output.SectionEnd(w, "dsc_verify")
			return err
		}

		critical := verify.HasCritical(findings)

		verifySec := output.NewSection(w, "Verify", verifyElapsed, color)
		output.VerifyTable(verifySec, stats)
		if len(findings) > 0 {
			verifySec.Separator()
			output.SectionFindings(verifySec, findings, cfg.Verify.MaxFindings, color)
		}
		if critical {
			output.RowStatus(verifySec, "status", "critical findings, manifest withheld", "failed", color)
		}
		verifySec.Close()
		output.SectionEnd(w, "dsc_verify")

		verifySummary = output.FindingsSummaryLine(findings, len(files), color)
		if critical {
			return fmt.Errorf("%d critical findings in %s; no manifest emitted", countCritical(findings), outDir)
		}
	}

	// --- Manifest ---
	output.SectionStartCollapsed(w, "dsc_manifest", "Manifest")
	manifestStart := time.Now()

	commit, entries, err := emitManifest(ctx, accepted)
	if err != nil {
		output.SectionEnd(w, "dsc_manifest")
		return err
	}
	manifestElapsed := time.Since(manifestStart)

	manifestSec := output.NewSection(w, "Manifest", manifestElapsed, color)
	manifestSec.Row("%-16s%s @ %s", "commit", cfg.Images.Branch, shortCommit(commit))
	manifestSec.Row("%-16s%d entries, latest on %s", "entries", entries, accepted[0])
	manifestSec.Close()
	output.SectionEnd(w, "dsc_manifest")
	manifestSummary := fmt.Sprintf("%d entries", entries)

	// --- Summary ---
	totalElapsed := time.Since(pipelineStart)

	sumSec := output.NewSection(w, "Summary", 0, color)
	output.SummaryRow(w, "discover", "success", discoverSummary, color)
	output.SummaryRow(w, "probe", "success", probeSummary, color)
	output.SummaryRow(w, "render", "success", renderSummary, color)
	output.SummaryRow(w, "verify", verifyStatus, verifySummary, color)
	output.SummaryRow(w, "manifest", "success", manifestSummary, color)
	sumSec.Separator()
	output.SummaryTotal(w, totalElapsed, "success", color)
	sumSec.Close()

	return nil
}

// emitManifest resolves the images branch head and writes the manifest to
// stdout. Nothing else in the process writes there.
func emitManifest(ctx context.Context, accepted []string) (commit string, entries int, err error) {
	commit, err = upstream.ResolveBranchHead(ctx, cfg.Images.Repo, cfg.Images.Branch)
	if err != nil {
		return "", 0, err
	}

	header := manifest.Header{
		Maintainers: cfg.Manifest.Maintainers,
		GitRepo:     cfg.Images.Repo,
		GitFetch:    manifest.FetchRef(cfg.Images.Branch),
		GitCommit:   commit,
		Builder:     cfg.Images.Builder,
	}
	rows := manifest.Entries(accepted, cfg.Manifest.Architectures, cfg.Output.Dockerfile)
	if err := manifest.Write(os.Stdout, header, rows); err != nil {
		return "", 0, fmt.Errorf("writing manifest: %w", err)
	}
	return commit, len(rows), nil
}

// runChecks collects the rendered tree under dir and runs the check engine
// over it. Collection findings (missing build definitions) are merged in
// front of the engine's findings.
func runChecks(ctx context.Context, renderer *render.Renderer, dir string) ([]verify.Finding, []verify.FileInfo, []verify.CheckStats, error) {
	engine, err := verify.NewEngine(renderer, verify.Options{Concurrency: cfg.Verify.Concurrency})
	if err != nil {
		return nil, nil, nil, err
	}
	files, collected, err := verify.CollectFiles(dir, cfg.Output.Dockerfile)
	if err != nil {
		return nil, nil, nil, err
	}
	findings, stats, err := engine.RunWithStats(ctx, files)
	if err != nil {
		return nil, nil, nil, err
	}
	return append(collected, findings...), files, stats, nil
}

func countCritical(findings []verify.Finding) int {
	var n int
	for _, f := range findings {
		if f.Severity == verify.SeverityCritical {
			n++
		}
	}
	return n
}

// shortCommit truncates a full SHA for display.
func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
