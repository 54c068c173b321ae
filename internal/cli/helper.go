package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/motif"
	"github.com/ddugovic/tasbot/internal/objective"
	"github.com/ddugovic/tasbot/internal/search"
	"github.com/ddugovic/tasbot/internal/worker"
)

func init() {
	rootCmd.AddCommand(helperCmd)
	helperCmd.Flags().String("game", "", "base name of the ROM and learned files")
	helperCmd.Flags().Int("port", 0, "port to serve helper requests on")
}

var helperCmd = &cobra.Command{
	Use:   "helper",
	Short: "Serve scoring work to a remote master",
	Long: `Run as a helper: load the learned objectives and motifs, then accept
score-nexts and improve-segment requests one connection at a time.
Helpers hold no persistent state beyond a small response cache.`,
	RunE: runHelper,
}

func runHelper(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("game"); v != "" {
		cfg.Game.Name = v
	}
	if cfg.Game.Name == "" {
		return domain.ErrNoGame
	}
	port, _ := cmd.Flags().GetInt("port")
	if port <= 0 {
		return fmt.Errorf("%w: helper requires --port", domain.ErrBadFlags)
	}
	log := logger.With().Str("game", cfg.Game.Name).Int("port", port).Logger()

	objectives, err := objective.Load(filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".objectives"))
	if err != nil {
		return err
	}
	motifs, err := motif.Load(filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".motifs"))
	if err != nil {
		return err
	}

	console, err := emulator.NewCached(emulator.NewMachine(), cfg.Cache.Dir,
		cfg.Cache.MemoryEntries, cfg.Cache.DiskEntries, log)
	if err != nil {
		return err
	}
	defer console.Close()

	engine := search.NewEngine(console, objectives, motifs, log)
	w := worker.New(engine, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return w.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
