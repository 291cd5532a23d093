package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamcast/docker-streamcast/src/output"
	"github.com/streamcast/docker-streamcast/src/render"
	"github.com/streamcast/docker-streamcast/src/verify"
)

var verifyDir string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check an existing rendered tree",
	Long: `Run the checks over an already-rendered version tree: structure against
the build constants, secret scanning, and drift against a fresh render.

Critical findings exit non-zero; warnings do not.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyDir, "dir", "", "rendered tree to check (default: output.dir from config)")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	color := output.UseColor()
	w := os.Stderr
	start := time.Now()

	dir := cfg.Output.Dir
	if verifyDir != "" {
		dir = verifyDir
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	findings, files, stats, err := runChecks(ctx, renderer, dir)
	if err != nil {
		return err
	}
	if len(files) == 0 && len(findings) == 0 {
		return fmt.Errorf("no version directories under %s; run generate first", dir)
	}

	sec := output.NewSection(w, "Verify", time.Since(start), color)
	output.VerifyTable(sec, stats)
	if len(findings) > 0 {
		sec.Separator()
		output.SectionFindings(sec, findings, cfg.Verify.MaxFindings, color)
	}
	sec.Close()

	fmt.Fprintf(w, "    %s\n\n", output.FindingsSummaryLine(findings, len(files), color))

	if verify.HasCritical(findings) {
		return fmt.Errorf("%d critical findings in %s", countCritical(findings), dir)
	}
	return nil
}
