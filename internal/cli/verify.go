package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/integrity"
	"github.com/glorpus-work/ggufy/pkg/orchestrator"
	"github.com/glorpus-work/ggufy/pkg/reference"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [REFERENCE]",
		Short: "Check cached models against their recorded digests",
		Long: `Hash cached artifacts again and compare them with the digest recorded when
they were downloaded. Without a reference every cache entry is checked.`,
		Args: maximumArgs(1),
		RunE: runVerify,
	}

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	var filter *reference.Reference
	if len(args) == 1 {
		ref, err := reference.Parse(args[0])
		if err != nil {
			return err
		}
		filter = &ref
	}

	env, _, err := loadEnvironment()
	if err != nil {
		return err
	}

	var match func(cache.Listing) bool
	if filter != nil {
		match = func(l cache.Listing) bool { return filter.Matches(l.RepoName, l.FileName) }
	}

	orch := &orchestrator.Orchestrator{Verifier: integrity.New()}
	results, err := orch.VerifyCached(env, match)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STATUS\tREPOSITORY\tFILE\tDETAIL")
	checked, failed := 0, 0
	for _, r := range results {
		checked++
		detail := r.Report.Warning()
		if detail == "" {
			detail = r.Report.Expected.String()
		}
		if r.Report.Status == integrity.StatusMismatch {
			failed++
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Report.Status, r.Entry.RepoName, r.Entry.FileName, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if filter != nil && checked == 0 {
		return fmt.Errorf("%s is not cached: %w", filter, errors.ErrArtifactNotFound)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cached artifacts failed verification: %w", failed, checked, errors.ErrIntegrityMismatch)
	}
	return nil
}
