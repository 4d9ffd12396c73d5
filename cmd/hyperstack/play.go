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
)

var flagUser string

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game (default: stack).

The game opens in demo mode with the autopilot stacking. Press Space to
take over.

Controls:
  Space/Enter/Click  - Drop the block
  P                  - Pause
  R                  - Restart (after game over)
  L                  - Leaderboard
  Ctrl+S             - Screenshot
  Q/Ctrl+C           - Quit

Scores are recorded for the remembered player, or the one given with
--user. Without a player the game is played as a guest.

Difficulty options:
  easy   - Slow blocks, speeds up as the tower grows
  normal - Default
  hard   - Fast blocks from the start
  fixed  - No speed-up

Examples:
  hyperstack play
  hyperstack play stack_rush
  hyperstack play --user alice --difficulty hard
  hyperstack play --config ./my-stack.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagUser, "user", "", "Play as this user")
}

func runPlay(_ *cobra.Command, args []string) {
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

	applyGameFlags()

	logger, closeLog := openLogger()
	defer closeLog()

	board, closeBoard := openBoard(logger)
	defer closeBoard()

	player, err := resolvePlayer(board)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, playing as guest\n", err)
	}

	cfg := runtimeConfig()
	cfg.Player = player

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(game, tui.NewSessionOptions(board, logger), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// resolvePlayer picks --user or the remembered player and logs it in.
func resolvePlayer(board leaderboard.Board) (string, error) {
	name := flagUser
	if name == "" {
		profile, err := config.LoadProfile(config.ProfilePath())
		if err != nil {
			return "", err
		}
		name = profile.Username
	}
	if name == "" {
		return "", nil
	}

	name, errs := leaderboard.ValidateUsername(name)
	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %s", leaderboard.ErrInvalid, errs[0])
	}
	if board == nil {
		return name, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaderboard.DefaultTimeout)
	defer cancel()
	p, err := board.Login(ctx, name)
	if err != nil {
		return "", fmt.Errorf("cannot log in as %s: %w", name, err)
	}
	return p.Username, nil
}
