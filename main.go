// Package main is the entry point for the starspin CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/starspin/cmd"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute(ctx)

	stop()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Cannot stop profiling", profErr)
	}
	iocache.CloseStores()

	if err != nil {
		contract.LogFatal("Cannot run starspin", err)
	}
}
