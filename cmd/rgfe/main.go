// Copyright 2025 the rgfe authors
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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ganarajpr/rgfe-sub000"
	"github.com/ganarajpr/rgfe-sub000/config"
	"github.com/ganarajpr/rgfe-sub000/core"
	"github.com/ganarajpr/rgfe-sub000/corpus"
	"github.com/ganarajpr/rgfe-sub000/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "rgfe",
		Usage: "Question answering over the Rigveda corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (default: ./rgfe.yaml, then ~/.config/rgfe/config.yaml)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question against the corpus, streaming the result",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Path to the binary corpus index (overrides config)",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory for the persistent embedding cache (overrides config)",
					},
					&cli.BoolFlag{
						Name:    "progress",
						Aliases: []string{"p"},
						Usage:   "Report pipeline progress on stderr",
					},
					&cli.BoolFlag{
						Name:  "cite",
						Usage: "Print the cited verses after the answer",
					},
				},
			},
			{
				Name:   "encode",
				Usage:  "Build a binary corpus index from a JSON-lines corpus",
				Action: encodeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"in"},
						Usage:    "Path to the JSON-lines corpus file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"out"},
						Usage:    "Path of the binary index file to write",
						Required: true,
					},
				},
			},
			{
				Name:   "inspect",
				Usage:  "Print header and entry statistics for a binary corpus index",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Path to the binary corpus index (overrides config)",
					},
					&cli.IntFlag{
						Name:  "sample",
						Usage: "Number of sample entries to print",
						Value: 3,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads .env if present and configures logging before any command runs.
func setup(c *cli.Context) error {
	_ = godotenv.Load()

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

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: rgfe ask QUESTION")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	indexFile := cfg.IndexFile
	if v := c.String("index"); v != "" {
		indexFile = v
	}
	cacheDir := cfg.CacheDir
	if v := c.String("cache-dir"); v != "" {
		cacheDir = v
	}

	opts := []rgfe.AssistantOption{rgfe.WithAIConfig(cfg.AI())}
	if cacheDir != "" {
		opts = append(opts, rgfe.WithEmbeddingCache(cacheDir))
	}
	assistant, err := rgfe.Open(indexFile, opts...)
	if err != nil {
		return err
	}
	defer assistant.Close()

	engineOpts := []pipeline.Option{pipeline.WithConfig(cfg.Pipeline())}
	if c.Bool("progress") {
		engineOpts = append(engineOpts, pipeline.WithMonitor(&progressReporter{out: os.Stderr}))
	}
	engine, err := assistant.NewEngine(engineOpts...)
	if err != nil {
		return err
	}
	defer engine.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	answer, err := engine.Ask(ctx, question)
	if err != nil {
		return err
	}
	for fragment := range answer.Fragments() {
		fmt.Print(fragment)
	}
	fmt.Println()

	if c.Bool("cite") {
		fmt.Println()
		for _, item := range answer.Items() {
			fmt.Printf("[%s] %s\n", item.Entry.Reference, item.Entry.Text)
			if item.Translation != "" {
				fmt.Printf("    %s\n", item.Translation)
			}
		}
	}
	return nil
}

// corpusLine is one record of the JSON-lines corpus consumed by encode.
type corpusLine struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Reference string    `json:"reference"`
	Embedding []float32 `json:"embedding"`
}

func encodeCommand(c *cli.Context) error {
	in, err := os.Open(c.String("input"))
	if err != nil {
		return err
	}
	defer in.Close()

	var entries []core.CorpusEntry
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record corpusLine
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if record.ID == "" {
			record.ID = fmt.Sprintf("%016x", uint64(core.IDFromContent(record.Text)))
		}
		entry := core.CorpusEntry{
			ID:          record.ID,
			Text:        record.Text,
			SourceLabel: record.Source,
			Reference:   record.Reference,
			Embedding:   record.Embedding,
		}
		if err := core.ValidateEntry(&entry); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	output := c.String("output")
	if err := corpus.EncodeFile(output, entries); err != nil {
		return err
	}
	slog.Info("corpus encoded", "entries", len(entries), "file", output)
	return nil
}

func inspectCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	indexFile := cfg.IndexFile
	if v := c.String("index"); v != "" {
		indexFile = v
	}

	entries, header, err := corpus.DecodeFile(indexFile)
	if err != nil {
		return err
	}

	sources := make(map[string]int)
	withEmbedding := 0
	for _, e := range entries {
		sources[e.SourceLabel]++
		if len(e.Embedding) > 0 {
			withEmbedding++
		}
	}

	fmt.Printf("file:       %s\n", indexFile)
	fmt.Printf("version:    %d\n", header.Version)
	fmt.Printf("dimension:  %d\n", header.Dimension)
	fmt.Printf("entries:    %d (%d with embeddings)\n", len(entries), withEmbedding)
	for label, count := range sources {
		fmt.Printf("source:     %s (%d entries)\n", label, count)
	}

	sample := c.Int("sample")
	if sample > len(entries) {
		sample = len(entries)
	}
	for i := 0; i < sample; i++ {
		e := entries[i]
		fmt.Printf("\n[%s] %s\n%s\n", e.Reference, e.ID, e.Text)
	}
	return nil
}

// progressReporter prints pipeline progress events on stderr.
type progressReporter struct {
	out *os.File
}

func (p *progressReporter) RequestStarted(_, question string) {
	fmt.Fprintf(p.out, "? %s\n", question)
}

func (p *progressReporter) IterationStarted(_ string, iteration int) {
	fmt.Fprintf(p.out, "-- retrieval round %d\n", iteration)
}

func (p *progressReporter) ReferenceLookup(_, reference string, hits int) {
	fmt.Fprintf(p.out, "   reference %s: %d verses\n", reference, hits)
}

func (p *progressReporter) PhraseChosen(_, phrase string, hits int) {
	fmt.Fprintf(p.out, "   searching %q: %d hits\n", phrase, hits)
}

func (p *progressReporter) PhraseRejected(_, phrase string, similarity float32) {
	fmt.Fprintf(p.out, "   rejected %q (similarity %.2f)\n", phrase, similarity)
}

func (p *progressReporter) ItemsEvaluated(_ string, kept, filtered int) {
	fmt.Fprintf(p.out, "   evaluated: %d kept, %d filtered\n", kept, filtered)
}

func (p *progressReporter) TranslationFinished(_ string, translated int) {
	fmt.Fprintf(p.out, "-- translated %d verses\n", translated)
}

func (p *progressReporter) SynthesisStarted(_ string, selected int) {
	fmt.Fprintf(p.out, "-- synthesizing from %d verses\n", selected)
}

func (p *progressReporter) RequestFinished(_ string) {}
