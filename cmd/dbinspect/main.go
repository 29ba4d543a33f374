// dbinspect dumps a read-only summary of an editor database: every project,
// its chapters, and per-chapter segment counts. Point DB_PATH at the badger
// directory while the server is stopped.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.qwen3-tts/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	projects := map[string]*domain.Project{}
	chapters := map[string]*domain.Chapter{}

	err = db.View(func(txn *badger.Txn) error {
		if err := scan(txn, "project:", func(val []byte) error {
			var p domain.Project
			if err := json.Unmarshal(val, &p); err != nil {
				return err
			}
			projects[p.ID] = &p
			return nil
		}); err != nil {
			return err
		}
		return scan(txn, "chapter:", func(val []byte) error {
			var c domain.Chapter
			if err := json.Unmarshal(val, &c); err != nil {
				return err
			}
			chapters[c.ID] = &c
			return nil
		})
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	totalSegments := 0
	pendingSegments := 0

	for _, p := range projects {
		fmt.Printf("Project: %s\n", p.Name)
		fmt.Printf("  ID: %s\n", p.ID)
		fmt.Printf("  Chapters: %d\n", len(p.ChapterOrder))
		if len(p.CharacterVoices) > 0 {
			fmt.Printf("  Character voices: %d\n", len(p.CharacterVoices))
		}
		for _, chapterID := range p.ChapterOrder {
			c, ok := chapters[chapterID]
			if !ok {
				fmt.Printf("    [MISSING] %s\n", chapterID)
				continue
			}
			pending := 0
			for i := range c.Segments {
				if !c.Segments[i].HasAudio() {
					pending++
				}
			}
			totalSegments += len(c.Segments)
			pendingSegments += pending
			fmt.Printf("    %s: %d segments", c.Name, len(c.Segments))
			if pending > 0 {
				fmt.Printf(" (%d awaiting synthesis)", pending)
			}
			fmt.Println()
		}
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total projects: %d\n", len(projects))
	fmt.Printf("Total chapters: %d\n", len(chapters))
	fmt.Printf("Total segments: %d\n", totalSegments)
	fmt.Printf("Segments awaiting synthesis: %d\n", pendingSegments)
}

// scan visits the value of every record under prefix. A record that fails to
// decode is reported and skipped rather than aborting the dump.
func scan(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if err := item.Value(fn); err != nil {
			log.Printf("Error reading %s: %v", key, err)
		}
	}
	return nil
}
