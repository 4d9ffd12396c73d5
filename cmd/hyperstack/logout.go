package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hyperstack/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the remembered player",
	Long: `Removes ~/.hyperstack/profile.yaml. The next session asks for a
username again. Scores already recorded are kept.`,
	Run: runLogout,
}

func runLogout(_ *cobra.Command, _ []string) {
	path := config.ProfilePath()
	profile, err := config.LoadProfile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := config.ClearProfile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if profile.Username == "" {
		fmt.Println("No player was remembered.")
		return
	}
	fmt.Printf("Logged out %s.\n", profile.Username)
}
