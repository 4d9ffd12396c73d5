package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/games/stack"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/platform/tui"
	"github.com/vovakirdan/hyperstack/internal/registry"
	"github.com/vovakirdan/hyperstack/internal/storage"
)

var (
	flagScoresLimit int
	flagInteractive bool
	flagStats       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show the leaderboard",
	Long: `Display the best score of each player for a game (default: stack).

Examples:
  hyperstack scores
  hyperstack scores stack_rush --limit 20
  hyperstack scores -i                      # browse interactively
  hyperstack scores --stats                 # per-game totals of the local database
  hyperstack scores --api http://localhost:3000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 10, "Number of players to show")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse the leaderboard in the terminal UI")
	scoresCmd.Flags().BoolVar(&flagStats, "stats", false, "Show per-game totals of the local database")
}

func runScores(_ *cobra.Command, args []string) {
	if flagStats {
		runStats()
		return
	}

	gameID := stack.IDClassic
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'hyperstack list' to see available games.")
		os.Exit(1)
	}

	logger, closeLog := openLogger()
	defer closeLog()

	board, closeBoard := openBoard(logger)
	defer closeBoard()
	if board == nil {
		os.Exit(1)
	}

	profile, _ := config.LoadProfile(config.ProfilePath())

	if flagInteractive {
		cfg := runtimeConfig()
		if err := tui.RunScoreboard(board, gameID, profile.Username, cfg.ScreenW, cfg.ScreenH); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaderboard.DefaultTimeout)
	defer cancel()
	entries, err := board.Global(ctx, gameID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Leaderboard - %s\n", registry.Title(gameID))
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'hyperstack play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-20s  %-8s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-20s  %-8s  %s\n", "----", "------", "-----", "----")
	for i, e := range entries {
		marker := " "
		if e.Username == profile.Username {
			marker = ">"
		}
		fmt.Printf("%s %-4d  %-20s  %-8d  %s\n", marker, i+1, e.Username, e.Score, e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func runStats() {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), leaderboard.DefaultTimeout)
	defer cancel()
	stats, err := store.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		return
	}

	if len(stats) == 0 {
		fmt.Println("No scores recorded yet.")
		return
	}

	fmt.Printf("  %-12s  %-6s  %-7s  %-5s  %-7s  %s\n", "Game", "Games", "Players", "Best", "Average", "Last played")
	fmt.Printf("  %-12s  %-6s  %-7s  %-5s  %-7s  %s\n", "----", "-----", "-------", "----", "-------", "-----------")
	for _, s := range stats {
		fmt.Printf("  %-12s  %-6d  %-7d  %-5d  %-7.1f  %s\n",
			s.GameID, s.GamesCount, s.Players, s.HighScore, s.AvgScore,
			s.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}
