package cli

import (
	"context"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ddugovic/tasbot/internal/api"
	"github.com/ddugovic/tasbot/internal/daemon"
	"github.com/ddugovic/tasbot/internal/diag"
	"github.com/ddugovic/tasbot/internal/dispatch"
	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/infra/rng"
	"github.com/ddugovic/tasbot/internal/infra/sqlite"
	"github.com/ddugovic/tasbot/internal/motif"
	"github.com/ddugovic/tasbot/internal/movie"
	"github.com/ddugovic/tasbot/internal/objective"
	"github.com/ddugovic/tasbot/internal/player"
	"github.com/ddugovic/tasbot/internal/search"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("game", "", "base name of the ROM and output files")
	playCmd.Flags().String("movie", "", "recorded input trace (.fm2)")
	playCmd.Flags().Int("fastforward", 0, "skip-replay prefix length")
	playCmd.Flags().StringSlice("master", nil, "run as master with these helper endpoints; the first doubles as this side's status port")
	playCmd.Flags().Int("goal", 0, "stop once the movie reaches this many inputs (0 = run until interrupted)")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Extend the recorded trace by lookahead search",
	Long: `Load the learned objectives and motifs, replay the warmup prefix of
the recorded movie, then search forward: enumerate candidate nexts
from the futures pool, score them (locally or across helpers), commit
the best, and periodically backtrack over a recent segment. Periodic
movie snapshots and diagnostics are written to the output directory.`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("game"); v != "" {
		cfg.Game.Name = v
	}
	if v, _ := cmd.Flags().GetString("movie"); v != "" {
		cfg.Game.Movie = v
	}
	if v, _ := cmd.Flags().GetInt("fastforward"); v != 0 {
		cfg.Game.Fastforward = v
	}
	if v, _ := cmd.Flags().GetInt("goal"); v != 0 {
		cfg.Game.GoalLength = v
	}
	if v, _ := cmd.Flags().GetStringSlice("master"); len(v) > 0 {
		cfg.Search.Workers = v
	}
	if cfg.Game.Name == "" {
		return domain.ErrNoGame
	}
	if cfg.Game.Movie == "" {
		return domain.ErrNoMovie
	}
	log := logger.With().Str("game", cfg.Game.Name).Logger()

	endpoints := normalizeEndpoints(cfg.Search.Workers)
	// The first endpoint's port doubles as this side's status port.
	if len(endpoints) > 0 && cfg.Status.Enabled {
		if _, port, ok := strings.Cut(endpoints[0], ":"); ok {
			cfg.Status.Host, cfg.Status.Port = "127.0.0.1", atoiOr(port, cfg.Status.Port)
		}
	}

	objectives, err := objective.Load(filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".objectives"))
	if err != nil {
		return err
	}
	motifs, err := motif.Load(filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".motifs"))
	if err != nil {
		return err
	}
	recorded, err := movie.Read(cfg.Game.Movie)
	if err != nil {
		return err
	}

	console, err := emulator.NewCached(emulator.NewMachine(), cfg.Cache.Dir,
		cfg.Cache.MemoryEntries, cfg.Cache.DiskEntries, log)
	if err != nil {
		return err
	}
	defer console.Close()

	// The engine shares the player's console: the in-process fallback
	// is byte-for-byte the same computation a helper would run.
	engine := search.NewEngine(console, objectives, motifs, log)
	dispatcher := dispatch.New(endpoints, engine, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter, cleanup, err := buildReporter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	p := player.New(player.Config{
		Game:        cfg.Game.Name,
		OutDir:      cfg.Game.OutDir,
		Fastforward: cfg.Game.Fastforward,
		GoalLength:  cfg.Game.GoalLength,
	}, console, objectives, motifs, dispatcher, rng.NewSeeded(cfg.Search.Seed), log, reporter, recorded)

	return p.Run(ctx)
}

// buildReporter assembles the diagnostic sinks and, when enabled, the
// status server.
func buildReporter(ctx context.Context, cfg daemon.Config, log zerolog.Logger) (player.Reporter, func(), error) {
	htmlLog, err := diag.OpenHTMLLog(filepath.Join(cfg.Game.OutDir, cfg.Game.Name+"-log.html"))
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(filepath.Join(cfg.Game.OutDir, cfg.Game.Name+".db"))
	if err != nil {
		htmlLog.Close()
		return nil, nil, err
	}

	hub := api.NewHub(log)
	if cfg.Status.Enabled {
		srv := api.NewServer(cfg.Game.Name, cfg.Game.OutDir, hub, log)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.StatusAddr()); err != nil {
				log.Warn().Err(err).Msg("status server failed")
			}
		}()
	}

	reporter := diag.NewReporter(cfg.Game.Name, cfg.Game.OutDir, htmlLog, db, hub, log)
	cleanup := func() {
		htmlLog.Close()
		db.Close()
	}
	return reporter, cleanup, nil
}

// normalizeEndpoints turns bare ports into localhost endpoints.
func normalizeEndpoints(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ep := range in {
		if ep == "" {
			continue
		}
		if !strings.Contains(ep, ":") {
			ep = "127.0.0.1:" + ep
		}
		out = append(out, ep)
	}
	return out
}

func atoiOr(s string, fallback int) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
