package admin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCheckUploadsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-uploads",
		Short: "Ensure the uploads directory exists, is writable and list its contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkUploads(cmd.OutOrStdout(), opts.uploadsDir)
		},
	}
}

// checkUploads создаёт каталог при необходимости, пробует записать файл и печатает содержимое.
func checkUploads(out io.Writer, dir string) error {
	fmt.Fprintf(out, "Checking uploads directory at: %s\n", dir)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Fprintln(out, "Uploads directory does not exist, creating it...")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create uploads dir: %w", err)
		}
		fmt.Fprintln(out, "Uploads directory created")
	} else if err != nil {
		return err
	} else {
		fmt.Fprintln(out, "Uploads directory already exists")
	}

	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("uploads dir is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("remove probe file: %w", err)
	}
	fmt.Fprintln(out, "Directory is writable")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list uploads dir: %w", err)
	}
	fmt.Fprintf(out, "Directory contents (%d entries):\n", len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		kind := "file"
		if e.IsDir() {
			kind = "directory"
		}
		fmt.Fprintf(out, "- %s (%d bytes, %s)\n", e.Name(), info.Size(), kind)
	}
	return nil
}
