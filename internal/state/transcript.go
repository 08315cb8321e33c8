// internal/state/transcript.go
package state

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/clawline/internal/types"
)

// TranscriptStore keeps per-session chat history as append-only JSONL
// files, one file per session key. Session keys contain characters that
// are awkward in filenames, so files are named by key hash.
type TranscriptStore struct {
	root string
	mu   sync.Mutex
}

// NewTranscriptStore creates a transcript store rooted at the given data
// directory.
func NewTranscriptStore(root string) *TranscriptStore {
	return &TranscriptStore{root: root}
}

func (s *TranscriptStore) path(key types.SessionKey) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.root, "transcripts", hex.EncodeToString(sum[:8])+".jsonl")
}

// Append records one entry at the end of the session's transcript.
func (s *TranscriptStore) Append(key types.SessionKey, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := types.TranscriptEntry{Role: role, Text: text, At: time.Now()}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal transcript entry: %w", err)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transcripts dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Read returns the session's full transcript in order. A session with no
// history returns an empty slice.
func (s *TranscriptStore) Read(key types.SessionKey) ([]types.TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var entries []types.TranscriptEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry types.TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("parse transcript line: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return entries, nil
}
