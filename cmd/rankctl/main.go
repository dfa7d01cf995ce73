// Command rankctl ranks campaign briefs from the terminal.
//
//	rankctl rank --segment F2 --industry beer --budget-band "up to 30M" --fixture talents.yaml
//	rankctl probe --url http://localhost:9080 --industry beer --budget-band "up to 30M"
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/talentmatch/internal/rankctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rankctl.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("rankctl: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
