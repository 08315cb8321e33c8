// internal/state/backup.go
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/clawline/internal/types"
)

// BackupVersion is the current export schema version.
const BackupVersion = 1

// Backup is the versioned export format. Credentials are deliberately
// excluded: server records are sanitized before export and re-import
// leaves tokens empty for the user to re-enter.
type Backup struct {
	Version        int                         `json:"version"`
	ExportedAt     time.Time                   `json:"exportedAt"`
	Servers        []*types.Server             `json:"servers"`
	Triggers       map[string]*types.Trigger   `json:"triggers"`
	SessionAliases map[types.SessionKey]string `json:"sessionAliases"`
	Favorites      []types.SessionKey          `json:"favorites"`
}

// Stores bundles the persistent stores for backup and wiring convenience.
type Stores struct {
	Servers     *ServerStore
	Triggers    *TriggerStore
	Aliases     *AliasStore
	Favorites   *FavoriteStore
	Transcripts *TranscriptStore
}

// NewStores creates all stores rooted at the given data directory.
func NewStores(root string) *Stores {
	return &Stores{
		Servers:     NewServerStore(root),
		Triggers:    NewTriggerStore(root),
		Aliases:     NewAliasStore(root),
		Favorites:   NewFavoriteStore(root),
		Transcripts: NewTranscriptStore(root),
	}
}

// Export produces a backup of all non-secret state as JSON.
func (s *Stores) Export() ([]byte, error) {
	servers, err := s.Servers.List()
	if err != nil {
		return nil, fmt.Errorf("export servers: %w", err)
	}
	sanitized := make([]*types.Server, 0, len(servers))
	for _, server := range servers {
		clean := *server
		clean.Token = ""
		sanitized = append(sanitized, &clean)
	}

	triggerList, err := s.Triggers.List()
	if err != nil {
		return nil, fmt.Errorf("export triggers: %w", err)
	}
	triggers := make(map[string]*types.Trigger, len(triggerList))
	for _, t := range triggerList {
		triggers[t.Slug] = t
	}

	aliases, err := s.Aliases.All()
	if err != nil {
		return nil, fmt.Errorf("export aliases: %w", err)
	}
	favorites, err := s.Favorites.List()
	if err != nil {
		return nil, fmt.Errorf("export favorites: %w", err)
	}

	backup := Backup{
		Version:        BackupVersion,
		ExportedAt:     time.Now().UTC(),
		Servers:        sanitized,
		Triggers:       triggers,
		SessionAliases: aliases,
		Favorites:      favorites,
	}
	return json.MarshalIndent(backup, "", "  ")
}

// Import restores state from an exported backup. Existing records with
// matching IDs or slugs are skipped rather than overwritten.
func (s *Stores) Import(data []byte) error {
	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %d", backup.Version)
	}

	for _, server := range backup.Servers {
		server.Token = ""
		if err := s.Servers.Add(server); err != nil {
			continue // already present
		}
	}
	for _, trigger := range backup.Triggers {
		if existing, err := s.Triggers.Get(trigger.Slug); err == nil && existing != nil {
			continue
		}
		if err := s.Triggers.Upsert(trigger); err != nil {
			return fmt.Errorf("import trigger %s: %w", trigger.Slug, err)
		}
	}
	for key, alias := range backup.SessionAliases {
		if err := s.Aliases.Set(key, alias); err != nil {
			return fmt.Errorf("import alias for %s: %w", key, err)
		}
	}
	for _, key := range backup.Favorites {
		if err := s.Favorites.Add(key); err != nil {
			return fmt.Errorf("import favorite %s: %w", key, err)
		}
	}
	return nil
}
