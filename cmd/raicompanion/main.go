package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"raicompanion/internal/companion"
	"raicompanion/internal/config"
)

func main() {
	mode := flag.String("mode", "guided", "analysis mode: quick, guided, or expert")
	model := flag.String("model", "", "provider or model alias (default from config)")
	modules := flag.String("modules", "", "comma-separated module ids to force instead of auto-selection")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: raicompanion [flags] <input text>")
		fmt.Fprintln(os.Stderr, "reads stdin when no input argument is given")
		flag.PrintDefaults()
	}
	flag.Parse()

	input := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(input) == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		input = string(data)
	}

	cfg, err := config.Load(os.Getenv("RAI_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	app, err := companion.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer app.Close()

	var explicit []string
	if *modules != "" {
		for _, id := range strings.Split(*modules, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				explicit = append(explicit, trimmed)
			}
		}
	}

	res, err := app.Engine.Analyze(ctx, companion.Request{
		Input:    input,
		Mode:     *mode,
		Provider: *model,
		Modules:  explicit,
	})
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	fmt.Printf("# Analysis %s (mode=%s provider=%s model=%s)\n\n", res.ID, res.Mode, res.Provider, res.Model)
	for _, key := range res.Order {
		fmt.Printf("## %s  [confidence %.2f]\n%s\n\n", key, res.Confidences[key], res.Sections[key])
	}
	fmt.Printf("premises: %s\n", strings.Join(res.Premises, ", "))
	fmt.Printf("modules:  %s\n", strings.Join(res.Modules, ", "))
	fmt.Printf("latency:  %dms over %d attempt(s), %d tokens\n", res.LatencyMS, len(res.Attempts), res.TokensUsed)
}
