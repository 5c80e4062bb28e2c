// Command ingest downloads, transcribes and extracts metadata for strategy
// videos, either for one explicit URL or for a batch selected from the
// remote store.
//
// Usage:
//
//	ingest [flags] <url>            ingest a single video URL
//	ingest --from-queue             process queue items in the "done" state
//	ingest --from-strategy-videos   process records missing a video heading
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"reelingest/internal/audio"
	"reelingest/internal/classify"
	"reelingest/internal/config"
	"reelingest/internal/extract"
	"reelingest/internal/logger"
	"reelingest/internal/pipeline"
	"reelingest/internal/report"
	"reelingest/internal/store"
	"reelingest/internal/transcribe"
)

func main() {
	fromQueue := flag.Bool("from-queue", false, "process strategy_video_queue items in the done state")
	fromBacklog := flag.Bool("from-strategy-videos", false, "process strategy_videos with a null video_heading")
	cookies := flag.String("cookies", "", "path to a cookies file for Instagram downloads")
	dryRun := flag.Bool("dry-run", false, "classify and print intended work without downloading or transcribing")
	reportPath := flag.String("report", "", "write an xlsx run report to this path")
	flag.Usage = usage
	flag.Parse()

	_ = godotenv.Load()
	log := logger.New().WithField("service", "ingest")

	url := flag.Arg(0)
	if url == "" && !*fromQueue && !*fromBacklog {
		usage()
		os.Exit(1)
	}
	if *fromQueue && *fromBacklog {
		fmt.Fprintln(os.Stderr, "choose one of --from-queue or --from-strategy-videos")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// The transcriber is selected once, before the batch loop. Dry runs do
	// no transcription work, so they skip the availability check.
	var transcriber transcribe.Transcriber
	if !*dryRun {
		transcriber, err = transcribe.New(transcribe.Options{
			APIKey:       cfg.TranscribeAPIKey,
			APIURL:       cfg.TranscribeAPIURL,
			WhisperBin:   cfg.WhisperBin,
			WhisperModel: cfg.WhisperModel,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	st := store.New(cfg.StoreURL, cfg.StoreKey)
	p := pipeline.New(st, audio.NewAcquirer(), transcriber, extract.New(cfg.StoreURL, cfg.StoreKey))
	p.CookiesFile = *cookies
	p.DryRun = *dryRun

	ctx := context.Background()
	var items []classify.WorkItem
	switch {
	case url != "":
		item, err := p.SelectSingle(url)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		items = []classify.WorkItem{item}
	case *fromQueue:
		items, err = p.SelectFromQueue(ctx)
	default:
		items, err = p.SelectBacklog(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(items) == 0 {
		log.Info("no URLs to process")
		return
	}

	results := p.Run(ctx, items)

	done, failed := 0, 0
	for _, r := range results {
		switch r.Outcome {
		case pipeline.OutcomeDone:
			done++
		case pipeline.OutcomeFailed:
			failed++
		}
	}
	log.WithField("total", len(results)).
		WithField("done", done).
		WithField("failed", failed).
		Info("batch finished")

	if *reportPath != "" {
		if err := report.Write(*reportPath, results); err != nil {
			log.WithError(err).Warn("could not write run report")
		} else {
			log.WithField("path", *reportPath).Info("run report written")
		}
	}

	// Item-level failures are recorded in the store, not in the exit code.
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ingest [flags] [url]

Ingest strategy videos: download audio, transcribe, extract metadata.

  ingest https://youtu.be/dQw4w9WgXcQ
  ingest --from-queue
  ingest --from-strategy-videos --cookies ~/cookies.txt

Flags:
`)
	flag.PrintDefaults()
}
