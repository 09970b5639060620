package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"genstudio/internal/adapter/repo"
	"genstudio/internal/infra"
	"genstudio/internal/sqlinline"
)

func main() {
	var (
		userFlag   string
		amountFlag int
		showFlag   bool
	)

	flag.StringVar(&userFlag, "user", "", "user ID (JWT subject) to credit")
	flag.IntVar(&amountFlag, "amount", 0, "credits to add; negative values remove credits, clamped at zero")
	flag.BoolVar(&showFlag, "show", false, "print the current balance without changing it")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(userFlag)
	if userID == "" {
		exitWithError(errors.New("-user is required"))
	}
	if !showFlag && amountFlag == 0 {
		exitWithError(errors.New("-amount must be non-zero unless -show is set"))
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

	logger := infra.NewLogger("cli").With().Str("cmd", "credits").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if _, err := runner.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
		exitWithError(fmt.Errorf("failed to ensure schema: %w", err))
	}
	credits := repo.NewCreditRepository(runner)

	if showFlag {
		balance, err := credits.Balance(ctx, userID)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("User %s balance=%d\n", userID, balance)
		return
	}

	balance, err := credits.Grant(ctx, userID, amountFlag)
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("User %s granted %+d credits\n", userID, amountFlag)
	fmt.Printf("balance=%d\n", balance)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
