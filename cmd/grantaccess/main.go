// Command grantaccess flips a user's plan between free and paid. Paid users
// keep unlimited searches and unlock the Claude model family.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"server/internal/infra"
	"server/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	var (
		idFlag    string
		emailFlag string
		planFlag  string
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&planFlag, "plan", "paid", "plan to assign (free, paid)")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	plan := strings.TrimSpace(strings.ToLower(planFlag))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	switch plan {
	case "free", "paid":
	default:
		exitWithError(fmt.Errorf("unsupported plan %q", plan))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "grantaccess").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	updateCtx, cancelUpdate := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelUpdate()

	var row pgx.Row
	if userID != "" {
		row = runner.QueryRow(updateCtx, sqlinline.QUpdateUserPlanByID, userID, plan)
	} else {
		row = runner.QueryRow(updateCtx, sqlinline.QUpdateUserPlanByEmail, email, plan)
	}

	var (
		updatedID    string
		updatedEmail string
		updatedPlan  string
	)
	if err := row.Scan(&updatedID, &updatedEmail, &updatedPlan); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			exitWithError(errors.New("user not found"))
		}
		exitWithError(fmt.Errorf("failed to update user plan: %w", err))
	}

	fmt.Printf("User %s (%s) updated to plan %s\n", updatedID, updatedEmail, updatedPlan)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
