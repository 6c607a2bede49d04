// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history persists REPL input across sessions in a bolt database.
// Entries are keyed by a monotonically increasing sequence number so that
// insertion order survives reopening the database.
package history

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketInputs = "inputs"

// A Store records the lines typed into the REPL.
type Store struct {
	db *bolt.DB
}

// Open opens the history database at path, creating it if needed. The
// timeout bounds the wait for the file lock when another process holds
// the database open.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketInputs))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// An Entry is one recorded input line.
type Entry struct {
	Seq  int
	Text string
}

// NextSeq returns the sequence number the next Add will assign.
func (s *Store) NextSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		seq = tx.Bucket([]byte(bucketInputs)).Sequence() + 1
		return nil
	})
	return int(seq), err
}

// Add appends a line to the history and returns its sequence number.
// Duplicates are recorded as typed; callers that want collapsed history
// filter when loading.
func (s *Store) Add(text string) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInputs))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(text))
	})
	return int(seq), err
}

// All returns every recorded line in insertion order.
func (s *Store) All() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketInputs)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entries = append(entries, Entry{Seq: int(unmarshalSeq(k)), Text: string(v)})
		}
		return nil
	})
	return entries, err
}

// Tail returns the most recent n lines, oldest first.
func (s *Store) Tail(n int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketInputs)).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < n; k, v = c.Prev() {
			entries = append(entries, Entry{Seq: int(unmarshalSeq(k)), Text: string(v)})
		}
		return nil
	})
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
