package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yungbote/sotfinder-backend/internal/app"
)

type langList []string

func (l *langList) String() string { return strings.Join(*l, ",") }
func (l *langList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

// curriculum_sweep runs one loader pass, or force-refreshes the given
// languages, without starting the HTTP server. With -prune it first deletes
// stored curricula for languages the feed no longer lists.
func main() {
	var langs langList
	flag.Var(&langs, "lang", "language to force-refresh (repeatable); omit to run a full sweep")
	prune := flag.Bool("prune", false, "delete stored curricula for languages missing from the feed")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if *prune {
		removed, err := application.Services.Loader.Prune(ctx)
		if err != nil {
			fmt.Printf("prune failed: %v\n", err)
			application.Close()
			os.Exit(1)
		}
		fmt.Printf("pruned=%v\n", removed)
	}

	if len(langs) == 0 {
		report, err := application.Services.Loader.RunOnce(ctx)
		if err != nil {
			fmt.Printf("sweep failed: %v\n", err)
			application.Close()
			os.Exit(1)
		}
		fmt.Printf("generated=%v skipped=%v failed=%v duration=%s\n",
			report.Generated, report.Skipped, report.Failed, report.Duration)
		return
	}

	failed := 0
	for _, lang := range langs {
		cur, err := application.Services.Curriculum.RefreshCurriculum(ctx, lang)
		if err != nil {
			failed++
			fmt.Printf("%s: refresh failed: %v\n", lang, err)
			continue
		}
		fmt.Printf("%s: %s (%d sources, %d levels)\n", lang, cur.Status, len(cur.CanonicalSources), len(cur.OverallLearningPath))
	}
	if failed > 0 {
		application.Close()
		os.Exit(1)
	}
}
