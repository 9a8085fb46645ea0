package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// commit and buildDate are set at build time via ldflags, alongside version.
var (
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build metadata of research-builder",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		writeVersion(cmd.OutOrStdout(), info)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// writeVersion prints the version line. When ldflags left the commit unset,
// the VCS revision recorded by the Go toolchain is used instead.
func writeVersion(w io.Writer, info *debug.BuildInfo) {
	rev, when, modified := commit, buildDate, false
	if info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if rev == "" {
					rev = s.Value
				}
			case "vcs.time":
				if when == "" {
					when = s.Value
				}
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev == "" {
		rev = "unknown"
	}
	if modified {
		rev += "-dirty"
	}

	fmt.Fprintf(w, "research-builder %s\n", version)
	fmt.Fprintf(w, "  commit: %s\n", rev)
	if when != "" {
		fmt.Fprintf(w, "  built:  %s\n", when)
	}
	fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
