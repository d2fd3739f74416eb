// Command txrunner is a small demonstration CLI for pkg/txcore: it drives
// an upsert-then-audit-log operation pair against a PostgreSQL database
// through txcore.TransactionManager, retrying transient and connection
// failures per its configured policy.
package main

import (
	"fmt"
	"os"

	"github.com/AEATech/txcore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
