// SPDX-License-Identifier: EPL-2.0

// audprep prepares audio datasets: it builds MFCC feature tables from a
// directory of clips and normalizes speech corpora described by a metadata
// table.
//
// Usage:
//
//	audprep features --input ./audio --output processed_audio_features.csv
//	audprep normalize --source-dir ./merged_dataset/audio --metadata ./merged_dataset/metadata.csv
//	audprep config
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/audprep/cmd/audprep/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(commands.ExitCode(err))
}
