package admin

import (
	"Lura/internal/repo"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newFixPathsCmd(opts *options) *cobra.Command {
	var prefixes []string
	cmd := &cobra.Command{
		Use:   "fix-paths",
		Short: "Strip absolute prefixes from stored document paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(prefixes) == 0 {
				return fmt.Errorf("at least one --prefix is required")
			}
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer closeDB(db)
			_, err = fixPaths(cmd.Context(), cmd.OutOrStdout(), repo.NewDocumentRepository(db), prefixes)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&prefixes, "prefix", nil, "path prefix to strip (repeatable)")
	return cmd
}

// fixPaths отрезает префиксы от путей документов и возвращает число изменённых записей.
func fixPaths(ctx context.Context, out io.Writer, docs repo.DocumentRepository, prefixes []string) (int, error) {
	total := 0
	for _, prefix := range prefixes {
		list, err := docs.ListByPathPrefix(ctx, prefix)
		if err != nil {
			return total, fmt.Errorf("list documents for %q: %w", prefix, err)
		}
		if len(list) == 0 {
			fmt.Fprintf(out, "No documents found with prefix: %s\n", prefix)
			continue
		}
		for _, d := range list {
			newPath := strings.TrimPrefix(d.Path, prefix)
			if err := docs.UpdatePath(ctx, d.ID, newPath); err != nil {
				return total, fmt.Errorf("update document %d: %w", d.ID, err)
			}
			fmt.Fprintf(out, "Updated document %d: %s -> %s\n", d.ID, d.Path, newPath)
			total++
		}
	}
	if total == 0 {
		fmt.Fprintln(out, "No document paths needed updating.")
	} else {
		fmt.Fprintf(out, "All document paths updated. Total: %d\n", total)
	}
	return total, nil
}
