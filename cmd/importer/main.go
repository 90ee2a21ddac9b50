// Command importer reads bank statement files, detects their format
// and loads the transactions into the configured repository.
//
// Usage:
//
//	importer statement.pdf export.csv ...
//	importer -watch /path/to/inbox
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
	importservice "github.com/davidbugayov/statement-importer/internal/domain/import/service"
	"github.com/davidbugayov/statement-importer/pkg/cron"
	"github.com/davidbugayov/statement-importer/pkg/storage"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <statement-file> [statement-file...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	fileType := flag.String("type", "", "force file type (pdf, csv, xlsx, txt) instead of detecting by extension")
	watchDir := flag.String("watch", "", "watch a directory and import new statement files on a schedule")
	flag.Parse()

	if flag.NArg() == 0 && *watchDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := NewDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	if *watchDir != "" {
		if err := watch(ctx, deps, *watchDir, *fileType); err != nil {
			fmt.Fprintf(os.Stderr, "importer: %v\n", err)
			os.Exit(1)
		}
		return
	}

	exitCode := 0
	for _, path := range flag.Args() {
		src := extractor.NewSource(path, extractor.FileType(*fileType))
		if !runImport(ctx, deps, src) {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// watch runs scheduled imports from a directory until interrupted.
// Successfully imported files move to the archive; failed ones stay
// and are retried on the next scan.
func watch(ctx context.Context, deps *Dependencies, dir, fileType string) error {
	archive, err := storage.NewLocalArchive(deps.Config.Import.ArchiveDir)
	if err != nil {
		return err
	}

	runner := func(ctx context.Context, path string) bool {
		return runImport(ctx, deps, extractor.NewSource(path, extractor.FileType(fileType)))
	}

	scheduler := cron.NewScheduler(dir, runner, archive, deps.Logger)
	scheduler.Scan(ctx)
	if err := scheduler.Start(deps.Config.Import.WatchSchedule); err != nil {
		return err
	}

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

// runImport drives one file through the pipeline, rendering the event
// stream to the terminal. It returns false when the import failed.
func runImport(ctx context.Context, deps *Dependencies, src extractor.Source) bool {
	fmt.Printf("importing %s\n", src.Path)

	ok := false
	for event := range deps.Importer.Import(ctx, src) {
		switch e := event.(type) {
		case importservice.Progress:
			fmt.Printf("\r[%3d%%] %s", e.Current*100/e.Total, e.Message)
		case importservice.Success:
			fmt.Printf("\nimported %d transactions (%d skipped), total %s\n",
				e.Imported, e.Skipped, e.TotalAmount.StringFixed(2))
			ok = true
		case importservice.Failure:
			fmt.Printf("\nimport failed: %v\n", e)
		}
	}
	return ok
}
