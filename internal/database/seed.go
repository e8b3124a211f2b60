package database

import (
	"bufio"
	_ "embed"
	"fmt"
	"log"
	"strings"
)

//go:embed starter_vocab.tsv
var starterVocab string

// StarterVocabTitle is the title of the vocabulary created on first start
const StarterVocabTitle = "Korean Basics"

// SeedStarterVocab creates a starter vocabulary when the database has none
func (db *DB) SeedStarterVocab() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM vocabs").Scan(&count); err != nil {
		return fmt.Errorf("failed to check vocab count: %w", err)
	}

	if count > 0 {
		log.Printf("Vocabularies already present (%d), skipping seed", count)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	vocabID, err := tx.ExecReturningID(
		"INSERT INTO vocabs (title, description) VALUES (?, ?)",
		StarterVocabTitle, "Everyday nouns to get started",
	)
	if err != nil {
		return fmt.Errorf("failed to create starter vocab: %w", err)
	}

	stmt, err := tx.Prepare(db.Dialect.RewriteQuery(
		"INSERT INTO words (vocab_id, english, korean, pronunciation, difficulty, example, position) VALUES (?, ?, ?, ?, ?, ?, ?)",
	))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	scanner := bufio.NewScanner(strings.NewReader(starterVocab))
	position := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		position++
		if _, err := stmt.Exec(vocabID, fields[0], fields[1], fields[2], fields[3], fields[4], position); err != nil {
			return fmt.Errorf("failed to seed word %q: %w", fields[0], err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading starter vocab: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Seeded starter vocabulary with %d words", position)
	return nil
}
