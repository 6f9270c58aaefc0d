package main

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/config"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/database"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/repository"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/server"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Call center analytics dashboard",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(viewerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *sql.DB, error) {
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(db); err != nil {
				return err
			}

			srv := server.New(cfg, db)

			go func() {
				if err := srv.Start(); err != nil {
					logrus.Fatalf("Server error: %v", err)
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			logrus.Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			logrus.Info("Shutdown complete")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(db); err != nil {
				return err
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var days, calls int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert randomized call records for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(db); err != nil {
				return err
			}

			repo := repository.NewCallRepository(db)
			customers := seedCustomers(40)

			for i := 0; i < calls; i++ {
				call := randomCall(customers, days)
				if err := repo.InsertCall(call); err != nil {
					return err
				}
			}

			fmt.Printf("Seeded %d calls across the last %d days\n", calls, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Spread calls over this many past days")
	cmd.Flags().IntVar(&calls, "calls", 500, "Number of calls to insert")

	return cmd
}

var outcomeWeights = []struct {
	outcome string
	weight  int
}{
	{model.OutcomeNoAnswer, 27},
	{model.OutcomeConnected, 24},
	{model.OutcomeBooked, 18},
	{model.OutcomeVoicemail, 15},
	{model.OutcomeDeclined, 10},
	{model.OutcomeFailed, 6},
}

var seedSummaries = []string{
	"Booked a consultation for next week.",
	"Rescheduled an existing appointment.",
	"New patient intake, requested a morning slot.",
	"Follow-up visit confirmed.",
	"Asked about pricing, booked after discussing options.",
}

func randomOutcome() string {
	n := rand.Intn(100)
	for _, w := range outcomeWeights {
		if n < w.weight {
			return w.outcome
		}
		n -= w.weight
	}
	return model.OutcomeNoAnswer
}

func seedCustomers(n int) []string {
	numbers := make([]string, n)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("+1%d555%04d", 200+rand.Intn(800), rand.Intn(10000))
	}
	return numbers
}

func randomCall(customers []string, days int) *model.CallRecord {
	outcome := randomOutcome()

	var minutes int
	switch outcome {
	case model.OutcomeBooked, model.OutcomeConnected:
		minutes = 2 + rand.Intn(14)
	case model.OutcomeVoicemail, model.OutcomeDeclined:
		minutes = 1
	}

	call := &model.CallRecord{
		CustomerNumber:  customers[rand.Intn(len(customers))],
		Timestamp:       randomStartedAt(days),
		DurationMinutes: minutes,
		Outcome:         outcome,
		Cost:            math.Round((0.05+0.09*float64(minutes))*100) / 100,
	}

	switch outcome {
	case model.OutcomeBooked:
		call.RecordingURL = "https://recordings.example.com/" + uuid.NewString() + ".mp3"
		call.Summary = seedSummaries[rand.Intn(len(seedSummaries))]
	case model.OutcomeConnected:
		call.RecordingURL = "https://recordings.example.com/" + uuid.NewString() + ".mp3"
	}

	return call
}

// randomStartedAt lands on the call floor's business hours, 8am to 8pm.
func randomStartedAt(days int) time.Time {
	day := time.Now().In(model.DisplayZone).AddDate(0, 0, -rand.Intn(days))
	hour := 8 + rand.Intn(12)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, rand.Intn(60), rand.Intn(60), 0, model.DisplayZone)
}

func statsCmd() *cobra.Command {
	var outcome, from, to, customer string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show call statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseFilter(model.FilterParams{
				Outcome:        outcome,
				DateFrom:       from,
				DateTo:         to,
				CustomerNumber: customer,
			})
			if err != nil {
				return err
			}

			_, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewCallRepository(db)

			stats, err := repo.Stats(filter)
			if err != nil {
				return err
			}
			outcomes, err := repo.OutcomeStats(filter)
			if err != nil {
				return err
			}

			fmt.Printf("\n=== CALL STATISTICS ===\n")
			fmt.Printf("Total Calls: %d\n", stats.TotalCalls)
			fmt.Printf("Successful Calls: %d\n", stats.SuccessfulCalls)
			fmt.Printf("Success Rate: %.1f%%\n", stats.SuccessRate)
			fmt.Printf("Total Minutes: %d\n", stats.TotalMinutes)
			fmt.Printf("Total Cost: $%.2f\n\n", stats.TotalCost)

			fmt.Printf("%-15s %-10s\n", "OUTCOME", "COUNT")
			fmt.Println(strings.Repeat("-", 26))
			for _, o := range outcomes {
				fmt.Printf("%-15s %-10d\n", o.Outcome, o.Count)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "Filter by outcome")
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&customer, "customer", "", "Filter by customer number substring")

	return cmd
}

func viewerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewer",
		Short: "Manage dashboard viewers",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a viewer and print their PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			label, _ := cmd.Flags().GetString("label")

			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(db); err != nil {
				return err
			}

			authService := service.NewAuthService(repository.NewViewerRepository(db), cfg)
			viewer, err := authService.IssuePIN(label)
			if err != nil {
				return err
			}

			fmt.Printf("Viewer %s created\n", viewer.ID)
			fmt.Printf("PIN: %s\n", viewer.PIN)
			fmt.Println("The PIN is only shown once; share it over a trusted channel.")
			return nil
		},
	}
	addCmd.Flags().String("label", "", "Display label for the viewer")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List viewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewViewerRepository(db)
			viewers, err := repo.ListViewers()
			if err != nil {
				return err
			}

			fmt.Printf("%-38s %-20s %-12s %-12s\n", "ID", "LABEL", "CREATED", "LAST LOGIN")
			fmt.Println(strings.Repeat("-", 84))
			for _, v := range viewers {
				lastLogin := "never"
				if v.LastLogin != nil {
					lastLogin = v.LastLogin.Format("2006-01-02")
				}
				fmt.Printf("%-38s %-20s %-12s %-12s\n",
					v.ID, v.Label, v.CreatedAt.Format("2006-01-02"), lastLogin)
			}

			return nil
		},
	}

	cmd.AddCommand(addCmd)
	cmd.AddCommand(listCmd)

	return cmd
}
