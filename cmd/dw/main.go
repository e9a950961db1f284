package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dailywee/internal/app"
	"dailywee/internal/bake"
	"dailywee/internal/calendar"
	"dailywee/internal/classify"
	"dailywee/internal/config"
	"dailywee/internal/curate"
	"dailywee/internal/engine"
	"dailywee/internal/engine/auth"
	dwlog "dailywee/internal/log"
	"dailywee/internal/pool"
	"dailywee/internal/schedule"
	"dailywee/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "dw",
	Short: "The Daily Wee ritual tooling",
	Long: `dw bakes the Daily Wee calendar and runs its leaderboard.
- Pool: the seed CSV; every row is a seed with its notable attribute counts.
- Buckets: classification rules sort seeds into weekday buckets, first match wins.
- Calendar: one entry per day from launch, themed by weekday; bake writes it as JSON.
- Curation: a hand-made Day,Seed sheet can replace the generated calendar (dw curate).
- Deploy: pushes new calendar days into the workspace database (dw deploy).
- Leaderboard: scores per day, served over HTTP (dw serve) and listed with dw scores.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dwlog.Configure(dwlog.Config{
			Level: viper.GetString("log-level"),
			JSON:  viper.GetBool("log-json"),
		})
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("DAILYWEE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default <workspace>/dailywee.yml)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier recorded in events")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit JSON logs on stderr")
	rootCmd.PersistentFlags().String("jwt-secret", "", "HS256 secret for API tokens (env DAILYWEE_JWT_SECRET)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("jwt-secret", rootCmd.PersistentFlags().Lookup("jwt-secret"))
}

func registerCommands() {
	rootCmd.AddCommand(bakeCmd())
	rootCmd.AddCommand(curateCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(deployCmd())
	rootCmd.AddCommand(dailyCmd())
	rootCmd.AddCommand(scoresCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func bakeCmd() *cobra.Command {
	var input, output string
	var seed uint32
	var horizon int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "bake",
		Short: "Build the daily calendar from the seed pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := loadConfig(workspace)
			if err != nil {
				return err
			}
			opts, err := bake.OptionsFromConfig(cfg, workspace)
			if err != nil {
				return err
			}
			if input != "" {
				opts.PoolPath = input
			}
			if output != "" {
				opts.CalendarPath = output
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			if cmd.Flags().Changed("horizon") {
				if horizon <= 0 {
					return fmt.Errorf("--horizon must be positive")
				}
				opts.Schedule.HorizonDays = horizon
			}
			opts.DryRun = dryRun
			ctx := dwlog.WithComponent("bake").WithContext(cmd.Context())
			res, err := bake.Run(ctx, opts)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Bucket", "Seeds"})
			for _, b := range res.Buckets {
				tw.AppendRow(table.Row{b.Bucket, b.Size})
			}
			tw.AppendFooter(table.Row{"Total", res.Records})
			tw.Render()
			dest := res.Output
			if dryRun {
				dest = "(dry run, not written)"
			}
			fmt.Printf("%d days, %d without a seed, %s -> %s\n", res.Days, len(res.Missing), humanize.Bytes(uint64(res.Bytes)), dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "seed pool CSV (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "calendar JSON path (default from config)")
	cmd.Flags().Uint32Var(&seed, "seed", shuffleSeedDefault(), "shuffle seed")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "number of days to schedule")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build without writing the calendar")
	return cmd
}

func shuffleSeedDefault() uint32 {
	return config.Default().Ritual.ShuffleSeed
}

func curateCmd() *cobra.Command {
	var sheet, input, output string
	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Build the calendar from a hand-curated Day,Seed sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := loadConfig(workspace)
			if err != nil {
				return err
			}
			epoch, err := cfg.Epoch()
			if err != nil {
				return err
			}
			if sheet == "" {
				sheet = config.Resolve(workspace, cfg.Paths.Curation)
			}
			if input == "" {
				input = config.Resolve(workspace, cfg.Paths.Pool)
			}
			if output == "" {
				output = config.Resolve(workspace, cfg.Paths.Calendar)
			}
			ctx := dwlog.WithComponent("curate").WithContext(cmd.Context())
			p, err := pool.Load(ctx, input)
			if err != nil {
				return err
			}
			rows, err := curate.LoadAssignments(sheet)
			if err != nil {
				return err
			}
			cal := curate.Builder{Epoch: epoch, MaxDay: cfg.Ritual.HorizonDays, Log: *dwlog.FromContext(ctx)}.Build(p, rows)
			n, err := calendar.Write(ctx, output, cal)
			if err != nil {
				return fmt.Errorf("write calendar: %w", err)
			}
			summary := map[string]any{"days": len(cal), "missing": cal.Missing(), "bytes": n, "output": output}
			if viper.GetBool("json") {
				return printJSON(summary)
			}
			fmt.Printf("%d curated days, %d without a seed, %s -> %s\n", len(cal), len(cal.Missing()), humanize.Bytes(uint64(n)), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "curation CSV with Day,Seed columns (default from config)")
	cmd.Flags().StringVar(&input, "input", "", "seed pool CSV (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "calendar JSON path (default from config)")
	return cmd
}

func classifyCmd() *cobra.Command {
	var input, seedID string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show how the seed pool splits into buckets",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := loadConfig(workspace)
			if err != nil {
				return err
			}
			if input == "" {
				input = config.Resolve(workspace, cfg.Paths.Pool)
			}
			ctx := dwlog.WithComponent("classify").WithContext(cmd.Context())
			p, err := pool.Load(ctx, input)
			if err != nil {
				return err
			}
			clf := classify.New(classify.Thresholds{
				TwosThreshold:    cfg.Classifier.TwosThreshold,
				UltimateMinHacks: cfg.Classifier.UltimateMinHacks,
			}, *dwlog.FromContext(ctx))

			if seedID != "" {
				r, ok := p.Lookup(seedID)
				if !ok {
					return fmt.Errorf("seed %s not in pool", seedID)
				}
				b, rule := clf.Match(r)
				out := map[string]any{"seed": r.ID, "bucket": b, "rule": rule, "attrs": r.Attrs()}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("%s -> %s (rule: %s)\n", r.ID, b, rule)
				return nil
			}

			buckets := clf.Partition(p.Records)
			sizes := buckets.Sizes()
			if viper.GetBool("json") {
				return printJSON(sizes)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Bucket", "Seeds"})
			for _, name := range classify.Order {
				tw.AppendRow(table.Row{name, sizes[name]})
			}
			tw.AppendFooter(table.Row{"Total", buckets.Total()})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "seed pool CSV (default from config)")
	cmd.Flags().StringVar(&seedID, "seed", "", "explain the bucket of one seed")
	return cmd
}

func deployCmd() *cobra.Command {
	var calPath string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish calendar days not yet in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if calPath == "" {
					calPath = config.Resolve(viper.GetString("workspace"), e.Config.Paths.Calendar)
				}
				cal, err := calendar.Read(calPath)
				if err != nil {
					return err
				}
				res, err := e.Deploy(ctx, cal, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				if res.Inserted == 0 {
					fmt.Printf("nothing to deploy: database already holds day %d\n", res.PreviousMax)
					return nil
				}
				fmt.Printf("deployed days %d..%d: %d inserted, %d already present, %d without a seed\n",
					res.PreviousMax+1, res.LastDay, res.Inserted, res.Skipped, res.Missing)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&calPath, "calendar", "", "calendar JSON path (default from config)")
	return cmd
}

func dailyCmd() *cobra.Command {
	var day int
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show the deployed seed of a day (today by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				target := day
				if target == 0 {
					today, err := e.Today()
					if err != nil {
						return err
					}
					target = today
				}
				d, err := e.DailySeed(ctx, target)
				if err != nil {
					return fmt.Errorf("day %d: %w", target, err)
				}
				entry, err := engine.DecodeEntry(d)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entry)
				}
				epoch, _ := e.Config.Epoch()
				fmt.Printf("day %d (%s): %s, %s with %s\n", d.Day, schedule.DateOf(epoch, d.Day-1).Format("Mon 2006-01-02"), entry.ID, entry.Theme, entry.Label)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "1-based day number")
	return cmd
}

func scoresCmd() *cobra.Command {
	sc := &cobra.Command{Use: "scores", Short: "Leaderboard"}
	sc.AddCommand(scoresListCmd())
	sc.AddCommand(scoresWinnersCmd())
	sc.AddCommand(scoresRemoveCmd())
	return sc
}

func scoresListCmd() *cobra.Command {
	var day, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Top scores of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if day == 0 {
					today, err := e.Today()
					if err != nil {
						return err
					}
					day = today
				}
				items, err := e.Leaderboard(ctx, day, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.SetTitle(fmt.Sprintf("Day %d", day))
				tw.AppendHeader(table.Row{"#", "Player", "Score", "Seed", "Submitted"})
				for i, s := range items {
					tw.AppendRow(table.Row{i + 1, s.PlayerName, humanize.Comma(int64(s.Score)), s.Seed, s.SubmittedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "1-based day number (default today)")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of scores (default leaderboard.top_n)")
	return cmd
}

func scoresWinnersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "winners",
		Short: "Best score of each recent day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Winners(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Day", "Player", "Score", "Seed"})
				for _, s := range items {
					tw.AppendRow(table.Row{s.DayNumber, s.PlayerName, humanize.Comma(int64(s.Score)), s.Seed})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func scoresRemoveCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.RemoveScore(ctx, id, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "score id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var roles []string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := auth.Issue(viper.GetString("jwt-secret"), subject, roles, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleModerator}, "roles")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime (0 for no expiry)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Workspace config"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default dailywee.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate dailywee.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if file := viper.GetString("config"); file != "" {
				_, err = config.FromFile(file)
			} else {
				_, err = config.Load(viper.GetString("workspace"))
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "Submissions, removals and deploys recorded in the workspace database.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				events, err := e.Repo.TailEvents(ctx, n)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the daily and leaderboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.Open(cmd.Context(), viper.GetString("workspace"), viper.GetString("config"))
			if err != nil {
				return err
			}
			defer ws.Close()
			logger := dwlog.WithComponent("server")
			authCfg := server.AuthConfig{JWTSecret: viper.GetString("jwt-secret"), Logger: &logger}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("DAILYWEE_JWT_SECRET is required for moderator auth")
			}
			handler, err := server.New(server.Config{Engine: ws.Engine(), BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info().Str("addr", addr).Str("base_path", basePath).
				Str("openapi", server.OpenAPIPath(basePath)).Str("docs", "/docs").Msg("serving")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func loadConfig(workspace string) (*config.Config, error) {
	return config.LoadFile(workspace, viper.GetString("config"))
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	ws, err := app.Open(ctx, viper.GetString("workspace"), viper.GetString("config"))
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ctx, ws.Engine())
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
