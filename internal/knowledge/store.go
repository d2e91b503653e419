package knowledge

import (
	"sync"
	"time"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/google/uuid"
)

// Confidence levels per provenance
const (
	ConfidenceUserInput          = 0.9
	ConfidenceAIAnalysis         = 0.85
	ConfidenceAISuggestion       = 0.75
	ConfidenceAcceptedSuggestion = 1.0
)

// Store is the append-only knowledge base of one project.
// ai_analysis entries are unique per (type, stage).
type Store struct {
	mu      sync.RWMutex
	entries []*entity.KnowledgeEntry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Append adds the entry and reports whether it was stored
func (s *Store) Append(entry *entity.KnowledgeEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Source == entity.SourceAIAnalysis && s.hasLocked(entry.Type, entry.Stage, entity.SourceAIAnalysis) {
		return false
	}

	stored := *entry
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = s.now()
	}
	stored.Tags = copyTags(stored.Tags)

	s.entries = append(s.entries, &stored)
	return true
}

// Entries returns a snapshot of every entry in insertion order
func (s *Store) Entries() []*entity.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLocked(func(*entity.KnowledgeEntry) bool { return true })
}

// ByStage returns a snapshot of the stage's entries
func (s *Store) ByStage(stage entity.Stage) []*entity.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLocked(func(e *entity.KnowledgeEntry) bool { return e.Stage == stage })
}

// Has reports whether any entry of the type exists for the stage
func (s *Store) Has(kt entity.KnowledgeType, stage entity.Stage) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hasLocked(kt, stage, "")
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *Store) hasLocked(kt entity.KnowledgeType, stage entity.Stage, source entity.KnowledgeSource) bool {
	for _, e := range s.entries {
		if e.Type != kt || e.Stage != stage {
			continue
		}
		if source == "" || e.Source == source {
			return true
		}
	}
	return false
}

func (s *Store) filterLocked(keep func(*entity.KnowledgeEntry) bool) []*entity.KnowledgeEntry {
	out := make([]*entity.KnowledgeEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !keep(e) {
			continue
		}
		c := *e
		c.Tags = copyTags(e.Tags)
		out = append(out, &c)
	}
	return out
}

// copyTags never returns nil so entries always serialise tags as a list
func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
