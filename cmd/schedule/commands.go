package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lk-schedule/schedule-hub/internal/application/command"
	"github.com/lk-schedule/schedule-hub/internal/application/query"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/external/lk"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/scheduler"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/scheduler/jobs"
	"github.com/lk-schedule/schedule-hub/internal/interface/cli"
	"github.com/lk-schedule/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOADING COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the schedule from the cabinet and replace the stored one",
		Long: `Logs in to the personal cabinet, downloads every lesson in the range and
replaces the stored schedule in one transaction. Without --start/--end the
configured range (LK_RANGE_START/LK_RANGE_END) or the current semester is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				result, err := syncOnce(ctx, a, start, end)
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Loaded(result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "day after the last one to fetch (YYYY-MM-DD)")

	return cmd
}

// syncOnce fetches and loads the range given by flags, config or the semester.
func syncOnce(ctx context.Context, a *app, startFlag, endFlag string) (*command.LoadScheduleResult, error) {
	handler, err := a.syncer()
	if err != nil {
		return nil, err
	}

	start, end, err := resolveRange(a, startFlag, endFlag)
	if err != nil {
		return nil, err
	}

	return handler.Handle(ctx, command.SyncScheduleCommand{Start: start, End: end})
}

func resolveRange(a *app, startFlag, endFlag string) (time.Time, time.Time, error) {
	if startFlag == "" && endFlag == "" {
		start, end := a.window()(a.now())
		return start, end, nil
	}
	if startFlag == "" || endFlag == "" {
		return time.Time{}, time.Time{}, errors.New("--start and --end must be given together")
	}

	start, err := timeutil.ParseDate(startFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	end, err := timeutil.ParseDate(endFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	return start, end, nil
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Load lessons from a JSON export instead of the cabinet",
		Long: `Reads a JSON array of {"title","start","end","description"} objects, the
same shape the cabinet API returns, and replaces the stored schedule.
Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var in io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					in = f
				}

				records, err := lk.DecodeLessons(in)
				if err != nil {
					return err
				}

				result, err := a.loader().Handle(ctx, command.LoadScheduleCommand{Records: records})
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Loaded(result)
				return nil
			})
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERY COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func newDayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "day <YYYY-MM-DD>",
		Short:   "Show the lessons of one day",
		Example: "  schedule day 2025-02-26",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := query.NewGetDayScheduleHandler(a.repo).Handle(ctx, query.GetDayScheduleQuery{Date: args[0]})
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Day(res)
				return nil
			})
		},
	}
}

func newSubjectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "subject <text>",
		Short:   "Show every lesson whose title contains the text (case-sensitive)",
		Example: "  schedule subject Технологии и методы программирования",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				q := query.GetSubjectLessonsQuery{Subject: strings.Join(args, " ")}
				res, err := query.NewGetSubjectLessonsHandler(a.repo).Handle(ctx, q)
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Subject(res)
				return nil
			})
		},
	}
}

func newTeacherCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "teacher <text>",
		Short:   "Show every lesson whose description mentions the text (case-sensitive)",
		Example: "  schedule teacher Иванов И.И.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				q := query.GetTeacherLessonsQuery{Teacher: strings.Join(args, " ")}
				res, err := a.queries().Teacher.Handle(ctx, q)
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Teacher(res)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many lessons and instructor mentions are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				stats, err := query.NewGetStoreStatsHandler(a.repo).Handle(ctx)
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Stats(stats)
				return nil
			})
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERACTIVE COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive menu over the stored schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return runShell(ctx, cmd, a)
			})
		},
	}
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sync the current range, then open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				result, err := syncOnce(ctx, a, "", "")
				if err != nil {
					return err
				}
				cli.NewPresenter(cmd.OutOrStdout()).Loaded(result)
				fmt.Fprintln(cmd.OutOrStdout())

				return runShell(ctx, cmd, a)
			})
		},
	}
}

func runShell(ctx context.Context, cmd *cobra.Command, a *app) error {
	shell := cli.NewShell(cmd.InOrStdin(), cmd.OutOrStdout(), a.queries(), cli.ShellConfig{Logger: a.log})
	err := shell.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// WATCH
// ══════════════════════════════════════════════════════════════════════════════

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-sync the schedule periodically until interrupted",
		Long: `Runs the sync on SYNC_SCHEDULE ("@every 6h" by default, or a 5-field cron
expression in the configured timezone). Runs never overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return watch(ctx, a, now)
			})
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "run one sync immediately before waiting for the schedule")

	return cmd
}

func watch(ctx context.Context, a *app, runNow bool) error {
	schedule, err := scheduler.ParseSchedule(a.cfg.Scheduler.Schedule)
	if err != nil {
		return fmt.Errorf("SYNC_SCHEDULE: %w", err)
	}

	syncer, err := a.syncer()
	if err != nil {
		return err
	}

	job := jobs.NewSyncScheduleJob(syncer, jobs.SyncScheduleConfig{
		Window:  a.window(),
		Timeout: a.cfg.Scheduler.Timeout,
		Now:     a.now,
		Logger:  a.log,
	})

	sched := scheduler.New(scheduler.Config{
		Logger:   a.log,
		Timezone: a.location,
	})
	if err := sched.Register(job, schedule); err != nil {
		return err
	}

	if runNow {
		// A failed first run is logged by the scheduler; watching continues.
		_, _ = sched.RunNow(ctx, job.Name())
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.log.Info("watching schedule", "schedule", schedule.String())

	<-ctx.Done()

	if err := sched.Stop(); err != nil {
		return err
	}

	snap := sched.Metrics().Snapshot()
	a.log.Info("watch stopped",
		"runs", snap.TotalExecutions,
		"failures", snap.TotalFailures,
		"avg_duration", snap.AverageDuration.String(),
	)
	return nil
}
