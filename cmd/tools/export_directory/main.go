package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/config"
	"github.com/podiumreach/speaker-directory-go/internal/directory"
	"github.com/podiumreach/speaker-directory-go/internal/domain"
	"github.com/podiumreach/speaker-directory-go/internal/sheets"
)

// Exports the normalized speaker collection as JSON, for seeding the
// embedded fallback set or inspecting what the live source produces.
var (
	output = flag.String("output", "", "Output file (default: stdout)")
	pretty = flag.Bool("pretty", true, "Indent the JSON output")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := zap.NewNop()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var source directory.RowSource
	client, err := sheets.NewClient(ctx, sheets.Config{
		APIKey:          cfg.Sheets.APIKey,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		ReadRange:       cfg.Sheets.ReadRange,
		FetchTimeout:    cfg.Sheets.FetchTimeout,
	}, logger)
	if err != nil {
		log.Printf("Sheets source unavailable (%v), exporting fallback set", err)
	} else {
		source = client
	}

	fallback, err := domain.LoadFallbackSpeakers()
	if err != nil {
		log.Fatalf("Failed to load fallback speakers: %v", err)
	}

	dir := directory.NewService(source, nil, nil, fallback, directory.Config{}, logger)
	speakers := dir.GetAllSpeakers(ctx)

	var data []byte
	if *pretty {
		data, err = json.MarshalIndent(speakers, "", "  ")
	} else {
		data, err = json.Marshal(speakers)
	}
	if err != nil {
		log.Fatalf("Failed to marshal speakers: %v", err)
	}

	if *output == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
	log.Printf("Exported %d speakers to %s", len(speakers), *output)
}
