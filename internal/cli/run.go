package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/AEATech/txcore/internal/config"
	"github.com/AEATech/txcore/internal/logging"
	"github.com/AEATech/txcore/internal/txdemo"
	"github.com/AEATech/txcore/internal/txpg"
	"github.com/AEATech/txcore/pkg/txcore"
)

// connectionStringFromEnv returns the first non-empty connection string
// from TXRUNNER_CONNECTION_STRING or DATABASE_URL.
func connectionStringFromEnv() string {
	if s := os.Getenv("TXRUNNER_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

var runCmd = &cobra.Command{
	Use:   "run [project-dir]",
	Short: "Run the demo upsert/audit transaction against a database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("account", "", "Account name to upsert (default: a generated name)")
	runCmd.Flags().Int64("balance", 1000, "Starting balance for the account")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := loggerFor(verbose)

	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	cfg, err := config.Load(projectDir)
	if err != nil && err != config.ErrConfigNotFound {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg == nil {
		cfg = &config.RunConfig{}
	}

	connString := connectionStringFromEnv()
	if connString == "" {
		connString = buildConnString(cfg.Connection)
	}
	if connString == "" {
		return fmt.Errorf("no connection info: set TXRUNNER_CONNECTION_STRING/DATABASE_URL or a [connection] block in %s", config.ConfigFileName)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	policy, err := cfg.Retry.BuildRetryPolicy()
	if err != nil {
		return fmt.Errorf("building retry policy: %w", err)
	}

	mgr := txcore.NewTransactionManager(
		txcore.NewDefaultClassifier(txpg.PGHeuristics{}),
		policy,
		txcore.RealSleeper{},
	).WithOnAttempt(func(attempt int, kind txcore.ErrorKind, attemptErr error, delay time.Duration) {
		logger.Verbose("attempt %d failed (%s): %v; retrying in %s", attempt+1, kind, attemptErr, delay)
	})

	accountName, _ := cmd.Flags().GetString("account")
	if accountName == "" {
		accountName = "demo-" + uuid.NewString()[:8]
	}
	balance, _ := cmd.Flags().GetInt64("balance")

	conn := txpg.NewPoolConnection(pool)
	opts := txcore.TxOptions{IsolationLevel: config.ParseIsolationLevel(cfg.IsolationLevel)}

	account := txdemo.UpsertAccount{ID: uuid.New(), Name: accountName, Balance: balance}
	audit := txdemo.AppendAuditEntry{AccountID: account.ID, Action: "account.created"}

	result, err := mgr.Run(ctx, conn, opts, account, audit)
	if err != nil {
		logger.Error("run failed: %v", err)
		return err
	}

	logger.Info("run succeeded: %d row(s) affected over %d attempt(s)", result.AffectedRows, result.Attempts)
	return nil
}

func buildConnString(c config.ConnectionConfig) string {
	if c.Host == "" {
		return ""
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, sslmode)
}

func loggerFor(verbose bool) Logger {
	return logging.NewConsoleLogger(verbose)
}
