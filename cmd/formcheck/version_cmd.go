package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in formcheck's version
	VersionMajor = 0
	// VersionMinor is the minor number in formcheck's version
	VersionMinor = 1
	// VersionPatch is the patch number in formcheck's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of formcheck",
		Long:  `All software has versions. This is formcheck's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("formcheck v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
