// Command tripctl walks the trip planning funnel against a running server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"safar/internal/funnel"
	"safar/internal/model"
)

type rootOptions struct {
	server  string
	timeout time.Duration
	asJSON  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Plan and book trips against a Safar server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SAFAR_SERVER", "http://localhost:8080"), "server base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print raw JSON")

	root.AddCommand(newPlanCmd(opts), newDiscoverCmd(opts))
	return root
}

type planOptions struct {
	destination string
	days        int
	people      int
	season      string
	comfort     string
	tripType    string
	interests   []string
	candidate   int
	name        string
	email       string
	phone       string
	vibe        string
}

func newPlanCmd(root *rootOptions) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create a trip, fetch its budget and candidates, and book one",
		Example: `  tripctl plan --destination Varanasi --days 3 --comfort Standard --candidate 1 --name Asha --email asha@example.com
  tripctl plan --vibe "quiet mountains" --days 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.candidate < 1 || opts.candidate > 3 {
				return fmt.Errorf("--candidate must be 1, 2 or 3")
			}
			if opts.destination == "" && opts.vibe == "" {
				return fmt.Errorf("either --destination or --vibe is required")
			}
			m := funnel.NewMachine(funnel.NewClient(root.server, root.timeout))
			return runPlan(cmd.Context(), m, opts, root.asJSON, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.destination, "destination", "", "destination name")
	f.StringVar(&opts.vibe, "vibe", "", "describe the trip to let discovery pick a destination")
	f.IntVar(&opts.days, "days", 3, "number of days")
	f.IntVar(&opts.people, "people", 1, "number of travellers")
	f.StringVar(&opts.season, "season", "", "Winter, Summer or Monsoon")
	f.StringVar(&opts.comfort, "comfort", "", "Budget, Standard or Luxury")
	f.StringVar(&opts.tripType, "trip-type", "", "Cultural, Adventure or Relaxation")
	f.StringSliceVar(&opts.interests, "interest", nil, "interest, repeatable")
	f.IntVar(&opts.candidate, "candidate", 1, "itinerary candidate to book (1-3)")
	f.StringVar(&opts.name, "name", "", "contact name")
	f.StringVar(&opts.email, "email", "", "contact email")
	f.StringVar(&opts.phone, "phone", "", "contact phone")

	return cmd
}

func runPlan(ctx context.Context, m *funnel.Machine, opts *planOptions, asJSON bool, out io.Writer) error {
	if opts.destination == "" {
		if err := m.Discover(ctx, &model.DiscoveryRequest{Vibe: opts.vibe, Season: opts.season}); err != nil {
			return err
		}
		st := m.State()
		fmt.Fprintf(out, "Suggested %s: %s\n", st.SuggestedDestination, st.JustificationReason)
		if err := m.AcceptSuggestion(); err != nil {
			return err
		}
	}

	steps := []func() error{
		func() error {
			return m.SubmitIntent(ctx, &model.TripRequest{
				Destination:  opts.destination,
				NumDays:      model.Num(float64(opts.days)),
				NumPeople:    model.Num(float64(opts.people)),
				Season:       opts.season,
				ComfortLevel: opts.comfort,
				TripType:     opts.tripType,
				Interests:    opts.interests,
			})
		},
		func() error { return m.FetchBudget(ctx) },
		func() error { return m.FetchCandidates(ctx) },
		func() error { return m.SelectCandidate(opts.candidate) },
		func() error {
			return m.Book(ctx, model.UserContact{Name: opts.name, Email: opts.email, Phone: opts.phone})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("%s: %w", m.Step(), err)
		}
	}

	st := m.State()
	if asJSON {
		return printJSON(out, map[string]any{
			"trip":       st.Trip,
			"budget":     st.Budget,
			"candidates": st.Candidates,
			"booking":    st.Booking,
		})
	}

	b := st.Budget.BudgetBreakdown
	fmt.Fprintf(out, "Trip %s to %s, %d days for %d\n", st.Trip.TripID, st.Trip.Destination, st.Trip.NumDays, st.Trip.NumPeople)
	fmt.Fprintf(out, "Budget %d %s (stay %d, travel %d, food %d, activities %d)\n",
		b.Total, b.Currency, b.Stay, b.Travel, b.Food, b.Activities)
	for _, c := range st.Candidates {
		fmt.Fprintf(out, "  #%d  %.0fh/day  %d rest days  %d INR  score %.2f\n",
			c.Candidate.CandidateID, c.Candidate.DailyActivityHours, c.Candidate.RestDays,
			c.Candidate.EstimatedBudget, c.ItineraryScore)
	}
	fmt.Fprintf(out, "Booked %s (confirmation %s), locked at %d INR, valid until %s\n",
		st.Booking.BookingID, st.Booking.ConfirmationNumber, st.Booking.LockedBudget,
		st.Booking.ValidUntil.Format(time.RFC3339))
	return nil
}

func newDiscoverCmd(root *rootOptions) *cobra.Command {
	req := &model.DiscoveryRequest{}
	var budget float64
	var days int

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Ask for destination recommendations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if budget > 0 {
				req.Budget = model.Num(budget)
			}
			if days > 0 {
				req.NumDays = model.Num(float64(days))
			}

			client := funnel.NewClient(root.server, root.timeout)
			resp, err := client.Discover(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.asJSON {
				return printJSON(out, resp)
			}
			for i, r := range resp.Recommendations {
				fmt.Fprintf(out, "%d. %s (%.0f%%) %s\n", i+1, r.Destination, r.Confidence*100, r.Reason)
			}
			if resp.Fallback {
				fmt.Fprintln(out, "(rule-based suggestion, prediction model unavailable)")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Vibe, "vibe", "", "free-text description of the trip")
	f.StringVar(&req.Pace, "pace", "", "Fast or Slow")
	f.StringVar(&req.Focus, "focus", "", "Nature, Culture, Food or Thrills")
	f.StringVar(&req.Season, "season", "", "Winter, Summer or Monsoon")
	f.Float64Var(&budget, "budget", 0, "total budget in INR")
	f.IntVar(&days, "days", 0, "number of days")

	return cmd
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
