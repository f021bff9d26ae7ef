// Command entrydebug drafts an entry from an extracted document on disk and
// writes every intermediate artifact to a directory. It never submits.
//
//	entrydebug -in extracted.json [-out debug_output] [-codes tables.xlsx]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"entrygate/internal/artifact/local"
	"entrygate/internal/codetable"
	"entrygate/internal/config"
	"entrygate/internal/entry"
	"entrygate/internal/normalize"
	"entrygate/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "extracted document (JSON or model output containing JSON)")
	out := flag.String("out", "debug_output", "directory for artifacts")
	codes := flag.String("codes", "", "code table workbook (.xlsx); built-in tables when empty")
	broker := flag.String("broker", "", "broker number; defaults to ENTRYGATE_ENTRY_BROKER_NO")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *codes != "" {
		cfg.Entry.CodeTables = *codes
	}
	if *broker != "" {
		cfg.Entry.BrokerNo = *broker
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}

	tables, err := codetable.Load(cfg.Entry.CodeTables)
	if err != nil {
		return fmt.Errorf("failed to load code tables: %w", err)
	}
	mapper := entry.NewMapper(normalize.New(tables, cfg.Entry.DefaultCountry), entry.Settings{
		BrokerNo:   cfg.Entry.BrokerNo,
		EntryType:  cfg.Entry.EntryType,
		DefaultUOM: cfg.Entry.DefaultUOM,
	})

	// No submitter, repository or background writer: artifacts are written
	// synchronously below.
	svc := service.NewEntryService(mapper, nil, nil, nil, &cfg.Filing)
	ctx := context.Background()

	draft, err := svc.Draft(ctx, raw)
	if err != nil {
		return err
	}

	section("input", pretty(raw))
	section("entry record", mustJSON(draft.Entry))
	section("findings", mustJSON(draft.Findings))
	fmt.Printf("%d errors, %d warnings, %d info\n", draft.Summary.Errors, draft.Summary.Warnings, draft.Summary.Info)
	section("entry xml", []byte(draft.XML))

	artifacts, err := service.DraftArtifacts(draft, raw)
	if err != nil {
		return err
	}
	dir, err := local.NewStore(*out).Save(ctx, draft.ID.String(), artifacts)
	if err != nil {
		return err
	}
	fmt.Printf("\nwrote %d files to %s\n", len(artifacts), dir)
	return nil
}

func section(title string, body []byte) {
	fmt.Printf("\n== %s ==\n%s\n", title, body)
}

func mustJSON(v any) []byte {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return []byte(err.Error())
	}
	return b
}

// pretty indents raw when it is plain JSON and returns it unchanged otherwise.
func pretty(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return raw
	}
	return buf.Bytes()
}
