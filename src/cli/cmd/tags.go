package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamcast/docker-streamcast/src/config"
	"github.com/streamcast/docker-streamcast/src/output"
	"github.com/streamcast/docker-streamcast/src/registry"
	"github.com/streamcast/docker-streamcast/src/upstream"
)

var (
	tagsAll       bool
	tagsPublished bool
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show upstream release tags and how selection treats them",
	Long: `List the version tags on the upstream remote with the selection verdict
for each: accepted with its commit, or rejected with the reason.

--published asks Docker Hub which accepted versions already exist as image
tags; --all includes the rejected candidates.`,
	Args: cobra.NoArgs,
	RunE: runTags,
}

func init() {
	tagsCmd.Flags().BoolVar(&tagsAll, "all", false, "include rejected candidates")
	tagsCmd.Flags().BoolVar(&tagsPublished, "published", false, "annotate versions already published on Docker Hub")

	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	color := output.UseColor()
	w := os.Stderr
	start := time.Now()

	minVer, err := cfg.Source.MinSemver()
	if err != nil {
		return err
	}
	skips, err := config.CompileSkips(cfg.Source.Skip)
	if err != nil {
		return err
	}

	tags, err := upstream.ListVersionTags(ctx, cfg.Source.Repo)
	if err != nil {
		return err
	}

	clone, err := upstream.OpenClone(ctx, cfg.Source.Repo)
	if err != nil {
		return err
	}
	defer clone.Close()

	releases, rejected, selErr := upstream.SelectReleases(ctx, clone, tags, upstream.SelectOptions{
		Min:          minVer,
		RequiredFile: cfg.Source.RequiredFile,
		MaxVersions:  cfg.Source.MaxVersions,
		Skip:         skips,
	})

	var published map[string]bool
	if tagsPublished {
		infos, err := registry.NewDockerHub().ListTags(ctx, cfg.Registry.Repository)
		if err != nil {
			return err
		}
		published = registry.PublishedSet(infos)
	}

	sec := output.NewSection(w, "Tags", time.Since(start), color)
	for _, rel := range releases {
		if tagsPublished {
			sec.Row("%-10s %s  %s  %s", rel.Tag.Name, shortCommit(rel.Commit),
				output.StatusIcon("success", color), publishedMark(published[rel.Tag.Name], color))
		} else {
			sec.Row("%-10s %s  %s", rel.Tag.Name, shortCommit(rel.Commit), output.StatusIcon("success", color))
		}
	}
	if tagsAll && len(rejected) > 0 {
		if len(releases) > 0 {
			sec.Separator()
		}
		for _, rej := range rejected {
			sec.Row("%-10s %s  %s", rej.Tag.Name, output.StatusIcon("skipped", color), output.Dimmed(rej.Reason, color))
		}
	}
	sec.Close()

	return selErr
}

func publishedMark(published, color bool) string {
	if published {
		return output.Dimmed("published", color)
	}
	return "not published"
}
