package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/netverdict/netverdict/internal/config"
	"github.com/netverdict/netverdict/internal/diagnose"
	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/internal/logging"
	"github.com/netverdict/netverdict/internal/probe"
	"github.com/netverdict/netverdict/internal/progress"
	"github.com/netverdict/netverdict/internal/scheduler"
	"github.com/netverdict/netverdict/internal/session"
	"github.com/netverdict/netverdict/internal/stats"
	"github.com/netverdict/netverdict/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New()
	app := newApp(logger)

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "netverdict: %v\n", err)
		os.Exit(1)
	}
}

func newApp(logger *log.Logger) *cli.App {
	return &cli.App{
		Name:  "netverdict",
		Usage: "measure packet loss and latency against game regions and localize the fault",
		Commands: []*cli.Command{
			regionsCommand(),
			runCommand(logger),
			baselineCommand(logger),
			compareCommand(logger),
			diagnoseCommand(),
			exportCommand(),
			importCommand(),
		},
	}
}

func regionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "regions",
		Usage: "list the built-in region and reference service tables",
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, "Regions:")
			for _, g := range groups.Regions() {
				fmt.Fprintf(c.App.Writer, "  %-28s %s\n", g.Label, strings.Join(g.Endpoints, ", "))
			}
			fmt.Fprintln(c.App.Writer, "Reference services:")
			for _, g := range groups.Services() {
				fmt.Fprintf(c.App.Writer, "  %-28s %s\n", g.Label, strings.Join(g.Endpoints, ", "))
			}
			return nil
		},
	}
}

func campaignFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "region",
			Aliases: []string{"r"},
			Usage:   "region to probe (see the regions command)",
		},
		&cli.DurationFlag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "how long to probe (e.g. 5m, 30s)",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "interval between probe rounds",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "per-probe timeout",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "directory for exported artifacts",
		},
		&cli.BoolFlag{
			Name:  "concurrent",
			Usage: "probe all endpoints of the group in parallel each round",
		},
	}
}

// referenceFlags extends the campaign flags with reference-side selection.
func referenceFlags() []cli.Flag {
	return append(campaignFlags(), &cli.StringFlag{
		Name:    "service",
		Aliases: []string{"s"},
		Usage:   "probe one reference service instead of the full set (see the regions command)",
	})
}

func runCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run a probing campaign against one region and export the results",
		Flags: campaignFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			group, err := groups.Region(cfg.Campaign.Region)
			if err != nil {
				return err
			}

			sess := session.New()
			if err := sess.SetRegion(cfg.Campaign.Region); err != nil {
				return err
			}

			summary, err := runCampaign(c.Context, logger, cfg, sess, session.Target, group, false)
			if err != nil {
				return err
			}
			if summary.Results == 0 {
				return errors.New("campaign produced no results")
			}

			csvPath, statsPath, err := store.Export(sess, cfg.Output.Dir, "", time.Now())
			if err != nil {
				return err
			}
			logger.WithField("csv", csvPath).WithField("stats", statsPath).Info("exported")

			renderSummary(c.App.Writer, summary)
			renderStats(c.App.Writer, stats.Aggregate(sess.Snapshot(session.Target)))
			return nil
		},
	}
}

func baselineCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "baseline",
		Usage: "probe the reference services to capture a general-network baseline",
		Flags: referenceFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			reference, err := referenceGroup(cfg)
			if err != nil {
				return err
			}

			sess := session.New()
			summary, err := runCampaign(c.Context, logger, cfg, sess, session.Reference, reference, true)
			if err != nil {
				return err
			}
			if summary.Results == 0 {
				return errors.New("baseline produced no results")
			}

			csvPath := store.DefaultStem(time.Now()) + "_baseline.csv"
			csvPath = joinOut(cfg.Output.Dir, csvPath)
			if err := store.ExportCSV(csvPath, sess.Snapshot(session.Reference)); err != nil {
				return err
			}
			logger.WithField("csv", csvPath).Info("exported baseline")

			renderSummary(c.App.Writer, summary)
			renderStats(c.App.Writer, stats.Aggregate(sess.Snapshot(session.Reference)))
			return nil
		},
	}
}

func compareCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "probe reference services then the region back to back and diagnose the difference",
		Flags: referenceFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			group, err := groups.Region(cfg.Campaign.Region)
			if err != nil {
				return err
			}

			sess := session.New()
			if err := sess.SetRegion(cfg.Campaign.Region); err != nil {
				return err
			}

			// Each phase gets half of the configured duration. Reference
			// first, so the target phase measures against a fresh baseline.
			half := cfg.CampaignDuration() / 2

			refGroup, err := referenceGroup(cfg)
			if err != nil {
				return err
			}

			logger.Info("phase 1/2: probing reference services")
			if _, err := runPhase(c.Context, logger, cfg, sess, session.Reference, refGroup, true, half); err != nil {
				return err
			}

			logger.WithField("region", cfg.Campaign.Region).Info("phase 2/2: probing target region")
			if _, err := runPhase(c.Context, logger, cfg, sess, session.Target, group, false, half); err != nil {
				return err
			}

			target := stats.AggregateGroup(sess.Snapshot(session.Target))
			reference := stats.AggregateGroup(sess.Snapshot(session.Reference))

			diag, err := diagnose.New().Diagnose(target, reference)
			if err != nil {
				return err
			}

			csvPath, statsPath, err := store.Export(sess, cfg.Output.Dir, "", time.Now())
			if err != nil {
				return err
			}
			logger.WithField("csv", csvPath).WithField("stats", statsPath).Info("exported")

			renderStats(c.App.Writer, stats.Aggregate(sess.Snapshot(session.Target)))
			renderDiagnosis(c.App.Writer, diag)
			return nil
		},
	}
}

func diagnoseCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "diagnose previously captured target and reference result files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "target",
				Usage:    "CSV of target-region probe results",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "reference",
				Usage:    "CSV of reference-service probe results",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			targetResults, err := store.ImportCSV(c.String("target"))
			if err != nil {
				return err
			}
			referenceResults, err := store.ImportCSV(c.String("reference"))
			if err != nil {
				return err
			}

			diag, err := diagnose.New().Diagnose(
				stats.AggregateGroup(targetResults),
				stats.AggregateGroup(referenceResults),
			)
			if err != nil {
				return err
			}
			renderDiagnosis(c.App.Writer, diag)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "rebuild the CSV and statistics artifacts from a captured result file",
		ArgsUsage: "<file.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "directory for exported artifacts",
			},
			&cli.StringFlag{
				Name:  "stem",
				Usage: "artifact name stem (default: packetloss_<timestamp>)",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("export: source CSV path required")
			}

			sess := session.New()
			if _, err := store.ImportCSVIntoSession(sess, session.Target, path, store.ModeReplace); err != nil {
				return err
			}

			csvPath, statsPath, err := store.Export(sess, c.String("out"), c.String("stem"), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s and %s\n", csvPath, statsPath)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "load an exported artifact and display its statistics",
		ArgsUsage: "<file.csv | file_stats.json>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "replace the session log instead of appending",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("import: artifact path required")
			}

			sess := session.New()
			if strings.HasSuffix(path, ".json") {
				doc, err := store.ImportStatsIntoSession(sess, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Region: %s\n", doc.TestInfo.Region)
				if !doc.TestInfo.StartTime.IsZero() {
					fmt.Fprintf(c.App.Writer, "Started: %s (%.1f minutes)\n",
						doc.TestInfo.StartTime.Format(time.RFC3339), doc.TestInfo.DurationMinutes)
				}
				renderStats(c.App.Writer, doc.ServerStats)
				return nil
			}

			mode := store.ModeAppend
			if c.Bool("replace") {
				mode = store.ModeReplace
			}
			n, err := store.ImportCSVIntoSession(sess, session.Target, path, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Imported %d results", n)
			if region := sess.Region(); region != "" {
				fmt.Fprintf(c.App.Writer, " (region: %s)", region)
			}
			fmt.Fprintln(c.App.Writer)
			renderStats(c.App.Writer, stats.Aggregate(sess.Snapshot(session.Target)))
			return nil
		},
	}
}

// loadConfig resolves configuration from the environment and overlays any
// flags the user set on this invocation.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return cfg, err
	}
	if c.IsSet("region") {
		cfg.Campaign.Region = c.String("region")
	}
	if c.IsSet("service") {
		cfg.Campaign.Service = c.String("service")
	}
	if c.IsSet("duration") {
		cfg.Campaign.DurationMinutes = int(c.Duration("duration").Minutes())
		if cfg.Campaign.DurationMinutes < 1 {
			cfg.Campaign.DurationMinutes = 1
		}
	}
	if c.IsSet("interval") {
		cfg.Campaign.TickIntervalSec = c.Duration("interval").Seconds()
	}
	if c.IsSet("timeout") {
		cfg.Probe.TimeoutSec = c.Duration("timeout").Seconds()
	}
	if c.IsSet("out") {
		cfg.Output.Dir = c.String("out")
	}
	if c.IsSet("concurrent") {
		cfg.Campaign.Concurrent = c.Bool("concurrent")
	}
	return cfg, nil
}

// referenceGroup resolves the reference side of a campaign: one named
// service when selected, the full reference set otherwise.
func referenceGroup(cfg config.Config) (groups.Group, error) {
	if cfg.Campaign.Service == "" {
		return groups.ReferenceSet(), nil
	}
	return groups.ServiceSet(cfg.Campaign.Service)
}

func runCampaign(ctx context.Context, logger *log.Logger, cfg config.Config, sess *session.Session, logKind session.Log, group groups.Group, interleave bool) (scheduler.Summary, error) {
	return runPhase(ctx, logger, cfg, sess, logKind, group, interleave, cfg.CampaignDuration())
}

func runPhase(ctx context.Context, logger *log.Logger, cfg config.Config, sess *session.Session, logKind session.Log, group groups.Group, interleave bool, duration time.Duration) (scheduler.Summary, error) {
	prober := probe.NewICMP(probe.WithPrivileged(cfg.Probe.Privileged))
	tracker := progress.NewTracker()
	camp := scheduler.New(prober,
		scheduler.WithObserver(progress.Multi(newConsoleObserver(logger), tracker)),
		scheduler.WithProbeTimeout(cfg.ProbeTimeout()),
		scheduler.WithConcurrentProbes(cfg.Campaign.Concurrent),
		scheduler.WithInterleave(interleave),
	)

	summary, err := camp.Run(ctx, sess, logKind, group, cfg.TickInterval(), duration)
	if err != nil {
		return summary, err
	}
	if summary.Cancelled {
		logger.Warn("campaign interrupted; keeping accumulated results")
	}
	snap := tracker.Snapshot()
	logger.WithField("sent", snap.Sent).
		WithField("lost", snap.Lost).
		WithField("loss", fmt.Sprintf("%.1f%%", snap.LossRate)).
		Info("campaign complete")
	return summary, nil
}
