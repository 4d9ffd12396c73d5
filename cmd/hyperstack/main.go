// hyperstack is a terminal stacking-tower game with an online leaderboard.
//
// Usage:
//
//	hyperstack                  - Log in and pick a game
//	hyperstack play [game]      - Play a game directly
//	hyperstack list             - List available games
//	hyperstack scores [game]    - Show the leaderboard
//	hyperstack serve            - Start SSH server for remote play
//	hyperstack api              - Start the leaderboard HTTP service
//	hyperstack logout           - Forget the remembered player
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Set local database path (default: ~/.hyperstack/scores.db)
//	--api <url>     - Use a remote leaderboard instead of the local database
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/games/stack"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/platform/tui"
	"github.com/vovakirdan/hyperstack/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagAPI        string
	flagConfig     string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hyperstack",
	Short: "HyperStack - Stack blocks as high as you can",
	Long: `HyperStack is a stacking-tower game for the terminal. A block slides
back and forth above the tower; drop it so it lands on the block below.
Whatever hangs over the edge is cut off and falls away.

Available commands:
  play     - Play a specific game directly
  list     - Show all available games
  scores   - View the leaderboard
  serve    - Start SSH server for remote play
  api      - Start the leaderboard HTTP service
  logout   - Forget the remembered player

Examples:
  hyperstack
  hyperstack play stack_rush
  hyperstack --api http://localhost:3000
  hyperstack serve --ssh :2222
  hyperstack scores`,
	Run: runSession,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.hyperstack/scores.db", "Path to the local scores database")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", os.Getenv("HYPERSTACK_API"), "Leaderboard service URL (default: local database)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runSession(_ *cobra.Command, _ []string) {
	applyGameFlags()

	logger, closeLog := openLogger()
	defer closeLog()

	board, closeBoard := openBoard(logger)
	defer closeBoard()

	profilePath := config.ProfilePath()
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		logger.Warn("cannot read profile", "error", err)
	}

	opts := tui.SessionOptions{
		Options:     tui.NewSessionOptions(board, logger),
		ProfilePath: profilePath,
		Username:    profile.Username,
	}
	if err := tui.RunSession(opts, runtimeConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error running session: %v\n", err)
		os.Exit(1)
	}
}

// applyGameFlags passes --config and --difficulty to the game package.
func applyGameFlags() {
	stack.SetConfigPath(flagConfig)
	stack.SetDifficultyPreset(flagDifficulty)
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openBoard returns the remote leaderboard when --api is set, otherwise the
// local database. A board that cannot be opened means offline play.
func openBoard(logger *log.Logger) (leaderboard.Board, func()) {
	if flagAPI != "" {
		return leaderboard.NewClient(flagAPI, leaderboard.DefaultTimeout), func() {}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("playing offline", "error", err)
		return nil, func() {}
	}
	return leaderboard.NewLocal(store), func() { store.Close() }
}

// openLogger logs to ~/.hyperstack/hyperstack.log, since the terminal belongs
// to the game while it runs.
func openLogger() (*log.Logger, func()) {
	dir := config.AppDir()
	if dir == "" {
		return log.NewWithOptions(io.Discard, log.Options{}), func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return log.NewWithOptions(io.Discard, log.Options{}), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "hyperstack.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return log.NewWithOptions(io.Discard, log.Options{}), func() {}
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "hyperstack",
	})
	return logger, func() { f.Close() }
}
