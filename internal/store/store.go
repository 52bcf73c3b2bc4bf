// Package store provides SQLite-backed persistence for user-added
// dictionary entries: open a sqlite3 database, prepare statements, and
// expose a small set of typed operations rather than a general SQL layer.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // load the driver

	"github.com/ko-nlp/komorph/dict"
	"github.com/ko-nlp/komorph/feature"
	"github.com/ko-nlp/komorph/jamo"
	"github.com/ko-nlp/komorph/postag"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_entry (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	form TEXT NOT NULL,
	tag TEXT NOT NULL,
	logprob REAL NOT NULL DEFAULT 0,
	vowel_cond INTEGER NOT NULL DEFAULT 0,
	polarity_cond INTEGER NOT NULL DEFAULT 0,
	allomorph_group INTEGER NOT NULL DEFAULT 0
);
`

// Store wraps a sqlite3-backed user dictionary database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite3 database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddEntry inserts a user dictionary entry (in ordinary Hangul text, not
// jamo-normalized) and returns its row id.
func (s *Store) AddEntry(form string, tag postag.Tag, logProb float64, vowel feature.CondVowel, polarity feature.CondPolarity, allomorphGroup int32) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO user_entry (form, tag, logprob, vowel_cond, polarity_cond, allomorph_group) VALUES (?, ?, ?, ?, ?, ?)`,
		form, tag.String(), logProb, int(vowel), int(polarity), allomorphGroup,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert entry: %w", err)
	}
	return res.LastInsertId()
}

// RemoveEntry deletes a user dictionary entry by its row id.
func (s *Store) RemoveEntry(id int64) error {
	_, err := s.db.Exec(`DELETE FROM user_entry WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete entry %d: %w", id, err)
	}
	return nil
}

// LoadInto reads every stored user entry and adds it to b, so a Builder can
// merge the default embedded dictionary with user customizations before
// Build.
func (s *Store) LoadInto(b *dict.Builder) error {
	rows, err := s.db.Query(`SELECT form, tag, logprob, vowel_cond, polarity_cond, allomorph_group FROM user_entry`)
	if err != nil {
		return fmt.Errorf("store: query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var form, tagName string
		var logProb float64
		var vowel, polarity int
		var group int32
		if err := rows.Scan(&form, &tagName, &logProb, &vowel, &polarity, &group); err != nil {
			return fmt.Errorf("store: scan entry: %w", err)
		}
		tag, ok := postag.Parse(tagName)
		if !ok {
			return fmt.Errorf("store: unknown tag %q in user_entry", tagName)
		}
		b.Add(dict.Entry{
			Form:           jamo.Normalize(form),
			Tag:            tag,
			LogProb:        logProb,
			Vowel:          feature.CondVowel(vowel),
			Polarity:       feature.CondPolarity(polarity),
			AllomorphGroup: group,
		})
	}
	return rows.Err()
}
