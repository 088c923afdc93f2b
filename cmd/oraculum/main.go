// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/oraculum"
	"github.com/poiesic/oraculum/config"
	"github.com/poiesic/oraculum/core"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env for ${VAR} substitution in the config file.
	godotenv.Load()

	app := &cli.App{
		Name:  "oraculum",
		Usage: "Local retrieval-augmented question answering over your documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "oraculum.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Index the configured document directory",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Clear the index and rebuild from scratch",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Answer a single question from the indexed documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "results",
						Aliases: []string{"n"},
						Usage:   "Number of chunks to retrieve (0 uses the configured default)",
					},
					&cli.BoolFlag{
						Name:    "sources",
						Aliases: []string{"s"},
						Usage:   "Print the source documents that grounded the answer",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactively ask questions until exit",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "sources",
						Aliases: []string{"s"},
						Usage:   "Print the source documents for every answer",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show document and index statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openPipeline loads the configuration and constructs the pipeline.
func openPipeline(c *cli.Context, opts ...oraculum.Option) (*oraculum.Pipeline, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	pipeline, err := oraculum.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start pipeline: %w", err)
	}
	return pipeline, nil
}

func indexCommand(c *cli.Context) error {
	pipeline, err := openPipeline(c, oraculum.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer pipeline.Close()

	report, err := pipeline.IndexDocuments(context.Background(), c.Bool("force"))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks from %d documents in %v\n",
		report.ChunksIndexed, report.DocumentsLoaded, report.Elapsed.Round(10*time.Millisecond))
	if report.DocumentsFailed > 0 {
		fmt.Printf("Skipped %d unreadable documents\n", report.DocumentsFailed)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required: oraculum query \"...\"")
	}

	pipeline, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	answer, err := pipeline.Query(context.Background(), question, oraculum.QueryOptions{
		NResults:    c.Int("results"),
		ShowSources: c.Bool("sources"),
	})
	if err != nil {
		return err
	}

	printAnswer(answer.Text, answer.Backend, answer.Degraded)
	printSources(answer)
	return nil
}

func chatCommand(c *cli.Context) error {
	pipeline, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	fmt.Println("Ask a question, or type \"exit\" to leave.")

	showSources := c.Bool("sources")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "exit", "quit", "q":
			return nil
		}

		// Each question is answered independently; no conversation state
		// carries across turns.
		answer, err := pipeline.Query(context.Background(), question, oraculum.QueryOptions{
			ShowSources: showSources,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		printAnswer(answer.Text, answer.Backend, answer.Degraded)
		printSources(answer)
	}
}

func statsCommand(c *cli.Context) error {
	pipeline, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	stats, err := pipeline.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Documents:  %d\n", stats.Documents)
	fmt.Printf("Chunks:     %d\n", stats.Entries)
	fmt.Printf("Dimensions: %d\n", stats.Dimensions)
	return nil
}

func printAnswer(text, backend string, degraded bool) {
	if degraded {
		fmt.Println("[degraded answer: no generation model responded]")
	} else if backend != "" {
		fmt.Printf("[%s]\n", backend)
	}
	fmt.Println(text)
}

func printSources(answer *core.Answer) {
	if len(answer.Sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, source := range answer.Sources {
		fmt.Printf("  %s (distance %.3f)\n", source.Filename, source.Distance)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
