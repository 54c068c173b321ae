package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/learner"
	"github.com/ddugovic/tasbot/internal/movie"
)

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().String("game", "", "base name of the ROM and output files")
	learnCmd.Flags().String("movie", "", "recorded input trace (.fm2)")
}

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Derive objectives and motifs from a recorded trace",
	Long: `Replay the recorded movie, capture the per-frame RAM trajectory, and
derive the weighted objective set and motif library. Results are
written to <game>.objectives and <game>.motifs.`,
	RunE: runLearn,
}

func runLearn(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("game"); v != "" {
		cfg.Game.Name = v
	}
	if v, _ := cmd.Flags().GetString("movie"); v != "" {
		cfg.Game.Movie = v
	}
	if cfg.Game.Name == "" {
		return domain.ErrNoGame
	}
	if cfg.Game.Movie == "" {
		return domain.ErrNoMovie
	}

	inputs, err := movie.Read(cfg.Game.Movie)
	if err != nil {
		return err
	}
	log := logger.With().Str("game", cfg.Game.Name).Logger()
	log.Info().Str("movie", cfg.Game.Movie).Int("frames", len(inputs)).Msg("learning")

	l := learner.New(emulator.NewMachine(), log)
	objectives, motifs, err := l.Learn(inputs)
	if err != nil {
		return err
	}

	objPath := filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".objectives")
	if err := objectives.Save(objPath); err != nil {
		return err
	}
	motifPath := filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".motifs")
	if err := motifs.Save(motifPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", objPath, motifPath)
	return nil
}
