package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"freequilt/internal/app/dashboard"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/view"
	"freequilt/internal/configs"
)

func newDashboardCmd(a *app) *cobra.Command {
	var (
		profile string
		animate string
	)

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard of the member signed in on a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(_ *configs.AppConfig, store prefstore.Store) error {
				dir := directory.New(store, directory.Options{})
				user, err := dir.CurrentUser(cmd.Context(), profile)
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("no member is signed in on profile %s", profile)
				}

				w := cmd.OutOrStdout()
				summary := dashboard.Build(user)

				fmt.Fprintf(w, "Welcome back, %s!\n", summary.WelcomeName)
				fmt.Fprintf(w, "%s, %s\n\n", summary.UserName, summary.UserLevel)

				live := animate == "always" || (animate == "auto" && isTerminal(w))
				if err := renderStats(cmd.Context(), w, summary.Stats, live, view.DefaultFrame); err != nil {
					return err
				}

				fmt.Fprintln(w, "\nProjects:")
				for _, p := range summary.Projects {
					fmt.Fprintf(w, "  %-28s %3d%%  %-12s due %s\n", p.Name, p.Progress, dashboard.FormatStatus(p.Status), p.Due)
				}

				fmt.Fprintln(w, "\nUpcoming events:")
				for _, e := range summary.Events {
					fmt.Fprintf(w, "  %s %s  %s (%s)\n", e.Month, e.Date, e.Title, e.Time)
				}
				return nil
			})
		},
	}

	dashboardCmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile id, e.g. prf_3fZk0QmL9aBc")
	dashboardCmd.Flags().StringVar(&animate, "animate", "auto", "Animate the counters: auto, always or never")
	_ = dashboardCmd.MarkFlagRequired("profile")

	return dashboardCmd
}

// renderStats prints the four counters. When live, they count up together
// on one redrawn line.
func renderStats(ctx context.Context, w io.Writer, stats dashboard.Stats, live bool, frame time.Duration) error {
	targets := [4]int{stats.PatternsDownloaded, stats.ActiveProjects, stats.Favorites, stats.StreakDays}

	line := func(v [4]int) string {
		return fmt.Sprintf("Patterns downloaded: %d  Active projects: %d  Favorites: %d  Streak: %d days", v[0], v[1], v[2], v[3])
	}

	if !live {
		_, err := fmt.Fprintln(w, line(targets))
		return err
	}

	var (
		mu     sync.Mutex
		values [4]int
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			return view.NewCounter(target).Run(gctx, frame, func(v int) {
				mu.Lock()
				defer mu.Unlock()
				values[i] = v
				fmt.Fprintf(w, "\r%s", line(values))
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\r%s\n", line(targets))
	return err
}
