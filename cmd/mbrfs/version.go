package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/bobvanderlinden/mbrfs/pkg/version"
	"github.com/spf13/cobra"
)

func printVersion(out io.Writer, short, commit bool) {
	switch {
	case short:
		fmt.Fprintln(out, version.Version)
	case commit:
		fmt.Fprintln(out, version.GitCommit)
	default:
		fmt.Fprintf(out, "mbrfs version %s\n", version.Version)
		fmt.Fprintf(out, "commit: %s\n", version.GitCommit)
		fmt.Fprintf(out, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
}

func versionCmd() *cobra.Command {
	var short, commit bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "report the version of mbrfs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(cmd.OutOrStdout(), short, commit)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print just the version number")
	cmd.Flags().BoolVar(&commit, "commit", false, "print just the commit")

	return cmd
}
