package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show level, XP, streak and content statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				g, err := app.study.Gamification(ctx)
				if err != nil {
					return err
				}
				stats, err := app.study.Stats(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, map[string]any{"gamification": g, "stats": stats})
				}

				unlocked := 0
				for _, b := range g.Badges {
					if b.UnlockedAt != nil {
						unlocked++
					}
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Level\t%d\n", g.CurrentLevel)
				fmt.Fprintf(tw, "Total XP\t%d (%d to next level)\n", g.TotalXP, g.XPToNextLevel)
				fmt.Fprintf(tw, "Streak\t%d days (longest %d)\n", g.CurrentStreak, g.LongestStreak)
				fmt.Fprintf(tw, "Badges\t%d/%d\n", unlocked, len(g.Badges))
				fmt.Fprintf(tw, "Sets\t%d\n", stats.TotalSets)
				fmt.Fprintf(tw, "Cards\t%d (%d mastered, %.1f%% average)\n",
					stats.TotalCards, stats.CardsMastered, stats.AverageMastery)
				fmt.Fprintf(tw, "Reviews\t%d\n", stats.TotalReviews)
				fmt.Fprintf(tw, "Study time today\t%dm\n", stats.StudyTimeToday/60)
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) dueCmd() *cobra.Command {
	var setFlag string

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List cards due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setID := uuid.Nil
			if setFlag != "" {
				id, err := uuid.Parse(setFlag)
				if err != nil {
					return fmt.Errorf("invalid --set value: %w", err)
				}
				setID = id
			}

			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				due, err := app.study.DueCards(ctx, setID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(due) == 0 {
					_, err := fmt.Fprintln(out, "Nothing due.")
					return err
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "SET\tCARD\tQUESTION\tMASTERY")
				for _, d := range due {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.SetTitle, d.Card.ID, d.Card.Question, d.Card.MasteryLevel)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&setFlag, "set", "", "only list cards from this set ID")
	return cmd
}

func (c *cli) heartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hearts",
		Short: "Show the hearts pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				status, err := app.hearts.Status(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), status)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refill",
		Short: "Restore every heart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				status, err := app.hearts.Refill(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), status)
			})
		},
	})
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of progress and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				data, err := app.progress.Export(ctx)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := afero.WriteFile(c.fs, output, data, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				app.logger.Info("progress exported", "path", output, "bytes", len(data))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default stdout)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace progress and preferences with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(c.fs, args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				if err := app.progress.Import(ctx, data); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Import complete.")
				return err
			})
		},
	}
}

// errNotConfirmed is returned by reset without --yes.
var errNotConfirmed = errors.New("refusing to reset without --yes")

func (c *cli) resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			return c.withApp(cmd.Context(), func(ctx context.Context, app *application) error {
				if err := app.progress.Reset(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
