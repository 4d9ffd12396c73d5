package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/platform/tui"
	"github.com/vovakirdan/hyperstack/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HyperStack SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session: login, game picker and game.
The SSH user name is offered as the username. Scores go to the local
database, or to the leaderboard service given with --api.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.hyperstack/host_key

Examples:
  hyperstack serve                           # Listen on :23234 with auto-generated key
  hyperstack serve --ssh :2222               # Listen on port 2222
  hyperstack serve --host-key ./my_host_key  # Use specific host key
  hyperstack serve --api http://scores:3000  # Share a remote leaderboard

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	defaults := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", defaults.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", int(defaults.IdleTimeout/time.Minute), "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	applyGameFlags()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hyperstack-ssh",
	})

	var board leaderboard.Board
	if flagAPI != "" {
		board = leaderboard.NewClient(flagAPI, leaderboard.DefaultTimeout)
	} else {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("serving without a leaderboard", "error", err)
		} else {
			defer store.Close()
			board = leaderboard.NewLocal(store)
		}
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    flagFPS,
		Board:       board,
		Logger:      logger,
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting HyperStack SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
