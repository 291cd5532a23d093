package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamcast/docker-streamcast/src/output"
	"github.com/streamcast/docker-streamcast/src/render"
	"github.com/streamcast/docker-streamcast/src/versions"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render <version>...",
	Short: "Render build definitions for explicit versions",
	Long: `Render the build definition for one or more explicit versions, without
touching the upstream remote. Intended for template work:

  docker-streamcast render 4.0.0 3.10.0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "output directory (default: output.dir from config)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	color := output.UseColor()
	w := os.Stderr
	start := time.Now()

	outDir := cfg.Output.Dir
	if renderOutput != "" {
		outDir = renderOutput
	}

	for _, arg := range args {
		if _, err := versions.Parse(arg); err != nil {
			return err
		}
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	paths, err := renderer.Generate(outDir, cfg.Output.Dockerfile, args)
	if err != nil {
		return err
	}

	sec := output.NewSection(w, "Render", time.Since(start), color)
	for _, p := range paths {
		sec.Row("%-16s→ %s", "Dockerfile", p)
	}
	sec.Close()

	return nil
}
