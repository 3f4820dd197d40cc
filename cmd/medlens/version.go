package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the medlens release and build details",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, version.GitRelease)
			return
		}
		fmt.Fprintf(out, "medlens %s (%s, %s)\n", version.GitRelease, version.GitCommit, version.GitCommitDate)
		fmt.Fprintf(out, "built with %s\n", version.GoInfo)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the release")
}
