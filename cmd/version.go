package cmd

import "fmt"

// printVersionInfo displays version information.
func printVersionInfo() {
	fmt.Printf("resume-agent v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}
