package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached models",
		Long: `List every artifact in the cache with its repository, file name and size.
Entries without metadata are shown as "unknown".`,
		Args: exactArgs(0),
		RunE: runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	env, _, err := loadEnvironment()
	if err != nil {
		return err
	}

	listings, err := cache.NewManager(env.CacheDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(listings) == 0 {
		_, _ = fmt.Fprintln(out, "No cached models")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REPOSITORY\tFILE\tSIZE\tKEY")
	for _, l := range listings {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.RepoName, l.FileName, humanize.IBytes(uint64(l.Size)), l.ID)
	}
	return tw.Flush()
}
