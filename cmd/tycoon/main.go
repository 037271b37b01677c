package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	cl "ittycoon/internal/cli"
	"ittycoon/internal/cheat"
	"ittycoon/internal/config"
	"ittycoon/internal/game"
	"ittycoon/internal/persist"
	"ittycoon/internal/sim"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "tycoon",
		Short:        "IT Tycoon life simulation",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "tycoon-api base URL (empty plays locally)")

	root.AddCommand(
		newStatusCmd(&cfg, &apiBase),
		newActCmd(&cfg, &apiBase),
		newActionsCmd(),
		newResetCmd(&cfg, &apiBase),
		newTickCmd(&cfg, &apiBase),
		newCheatCmd(&cfg, &apiBase),
		newPriceCmd(&cfg, &apiBase),
		newPlayCmd(&cfg, &apiBase),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type session struct {
	backend cl.Backend
	local   *sim.Container
	rules   game.Rules
	close   func()
}

// openSession connects to the API when apiBase is set and otherwise loads the
// save from the configured store into an in-process container.
func openSession(ctx context.Context, cfg *config.CLIConfig, apiBase string) (*session, error) {
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase != "" {
		return &session{backend: cl.NewClient(apiBase), rules: cfg.Sim.Rules, close: func() {}}, nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	catalog := game.DefaultCatalog()
	if cfg.Sim.CatalogPath != "" {
		var err error
		if catalog, err = game.LoadCatalog(cfg.Sim.CatalogPath); err != nil {
			return nil, err
		}
	}
	store, err := persist.Open(ctx, cfg.Sim.Store, logger)
	if err != nil {
		return nil, err
	}
	container, err := sim.New(ctx, sim.Options{
		Store:   store,
		Codec:   persist.Codec{Policy: persist.PolicyFromString(cfg.Sim.Store.VersionPolicy)},
		Key:     cfg.Sim.Store.Key,
		Catalog: catalog,
		Rules:   cfg.Sim.Rules,
		Cheats:  cheat.NewRegistry(logger),
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{
		backend: &cl.Local{C: container},
		local:   container,
		rules:   cfg.Sim.Rules,
		close:   func() { _ = store.Close() },
	}, nil
}

// withSession runs fn against a session opened for one command.
func withSession(cmd *cobra.Command, cfg *config.CLIConfig, apiBase *string, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	s, err := openSession(ctx, cfg, *apiBase)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

func newStatusCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current game",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, apiBase, func(ctx context.Context, s *session) error {
				v, err := s.backend.State(ctx)
				if err != nil {
					return err
				}
				printView(v)
				return drainNotifications(ctx, s.backend)
			})
		},
	}
}

func newActCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "act <name> [json]",
		Short: "Perform one action, e.g. act take_credit '{\"optionId\":\"micro\"}'",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if len(args) == 2 {
				payload = json.RawMessage(args[1])
				if !json.Valid(payload) {
					return fmt.Errorf("payload is not valid JSON")
				}
			}
			return withSession(cmd, cfg, apiBase, func(ctx context.Context, s *session) error {
				v, err := s.backend.Act(ctx, args[0], payload)
				if err != nil {
					return err
				}
				printSuccess("Done: " + args[0])
				printView(v)
				return drainNotifications(ctx, s.backend)
			})
		},
	}
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List action names",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := game.ActionNames()
			slices.Sort(names)
			for _, n := range names {
				printInfo(n)
			}
			return nil
		},
	}
}

func newResetCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Start over, keeping language and volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, apiBase, func(ctx context.Context, s *session) error {
				v, err := s.backend.Reset(ctx)
				if err != nil {
					return err
				}
				printWarn("Game reset.")
				printView(v)
				return nil
			})
		},
	}
}

func newTickCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tick [n]",
		Short: "Advance the clock by n ticks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 {
					return fmt.Errorf("n must be a positive whole number")
				}
				n = v
			}
			return withSession(cmd, cfg, apiBase, func(ctx context.Context, s *session) error {
				v, err := s.backend.Tick(ctx, n)
				if err != nil {
					return err
				}
				printView(v)
				return drainNotifications(ctx, s.backend)
			})
		},
	}
}

func newCheatCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cheat <keys...>",
		Short: "Type keys into the cheat matcher, e.g. cheat iddqd",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys []string
			for _, a := range args {
				if len(a) > 1 && isDirection(a) {
					keys = append(keys, strings.ToLower(a))
					continue
				}
				keys = append(keys, strings.Split(strings.ToLower(a), "")...)
			}
			return withSession(cmd, cfg, apiBase, func(ctx context.Context, s *session) error {
				toggled, err := s.backend.CheatKeys(ctx, keys)
				if err != nil {
					return err
				}
				if len(toggled) == 0 {
					printWarn("Nothing happened.")
					return nil
				}
				for _, t := range toggled {
					if t.Active {
						printSuccess(fmt.Sprintf("Cheat %s on", t.Flag))
					} else {
						printWarn(fmt.Sprintf("Cheat %s off", t.Flag))
					}
				}
				return nil
			})
		},
	}
}

func isDirection(s string) bool {
	switch strings.ToLower(s) {
	case "up", "down", "left", "right":
		return true
	}
	return false
}

func newPriceCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "price <base>",
		Short: "Show what a base price costs today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(base) || math.IsInf(base, 0) || base < 0 {
				return fmt.Errorf("base must be a non-negative number")
			}
			return withSession(cmd, cfg, apiBase, func(ctx context.Context, s *session) error {
				p, err := s.backend.Price(ctx, base)
				if err != nil {
					return err
				}
				printInfo(fmt.Sprintf("%s -> %s", formatMoney(base), formatMoney(p)))
				return nil
			})
		},
	}
}

func newPlayCmd(cfg *config.CLIConfig, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Run the game clock interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cfg, *apiBase)
			if err != nil {
				return err
			}
			defer s.close()
			if !isInteractive() {
				return runHeadless(ctx, s)
			}
			return runTUI(ctx, s)
		},
	}
}

func drainNotifications(ctx context.Context, b cl.Backend) error {
	for {
		n, ok, err := b.NextNotification(ctx)
		if err != nil || !ok {
			return err
		}
		printNotification(n)
	}
}
