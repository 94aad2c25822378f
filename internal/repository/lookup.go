package repository

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

//go:embed seed.json
var embeddedSeed []byte

// seedFile is the on-disk shape of the lookup seed. Records stay raw until
// they have been validated.
type seedFile struct {
	People      map[string]json.RawMessage `json:"people"`
	IDDocuments map[string]json.RawMessage `json:"idDocuments"`
}

// LookupRepository serves pre-seeded records by id. It is read-only after
// construction and safe for concurrent use.
type LookupRepository interface {
	GetPersonByID(id string) (entity.Person, bool)
	GetIDDocumentByID(id string) (entity.IDDocument, bool)
}

type lookupRepository struct {
	people      map[string]entity.Person
	idDocuments map[string]entity.IDDocument
}

// NewLookupRepository loads the seed from seedPath, or the embedded seed when
// seedPath is empty. Any record that does not match its schema is an error.
func NewLookupRepository(seedPath string, logger *slog.Logger) (LookupRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, source := embeddedSeed, "embedded"
	if seedPath != "" {
		b, err := os.ReadFile(seedPath)
		if err != nil {
			return nil, fmt.Errorf("read lookup seed: %w", err)
		}
		data, source = b, seedPath
	}

	repo, err := loadSeed(data)
	if err != nil {
		logger.Error("failed to load lookup seed", "source", source, "error", err)
		return nil, err
	}
	logger.Info("lookup seed loaded",
		"source", source,
		"people", len(repo.people),
		"id_documents", len(repo.idDocuments),
	)
	return repo, nil
}

func loadSeed(data []byte) (*lookupRepository, error) {
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode lookup seed: %w", err)
	}

	personSchema, err := llm.CompileSchema("seed_person.json", llm.BuildPersonJSONSchema())
	if err != nil {
		return nil, err
	}
	docSchema, err := llm.CompileSchema("seed_id_document.json", llm.BuildIDDocumentJSONSchema())
	if err != nil {
		return nil, err
	}

	repo := &lookupRepository{
		people:      make(map[string]entity.Person, len(seed.People)),
		idDocuments: make(map[string]entity.IDDocument, len(seed.IDDocuments)),
	}
	for _, id := range sortedKeys(seed.People) {
		var p entity.Person
		if err := decodeSeedRecord(seed.People[id], personSchema.Validate, &p); err != nil {
			return nil, fmt.Errorf("seed person %q: %w", id, err)
		}
		repo.people[id] = p
	}
	for _, id := range sortedKeys(seed.IDDocuments) {
		doc := entity.NewIDDocument()
		if err := decodeSeedRecord(seed.IDDocuments[id], docSchema.Validate, &doc); err != nil {
			return nil, fmt.Errorf("seed id document %q: %w", id, err)
		}
		doc.EnsureCollections()
		repo.idDocuments[id] = doc
	}
	return repo, nil
}

func decodeSeedRecord(raw json.RawMessage, validate func(any) error, out any) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if err := validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return json.Unmarshal(raw, out)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetPersonByID returns a copy of the seeded person; a miss is (zero, false).
func (r *lookupRepository) GetPersonByID(id string) (entity.Person, bool) {
	p, ok := r.people[id]
	return p, ok
}

// GetIDDocumentByID returns a deep copy of the seeded document.
func (r *lookupRepository) GetIDDocumentByID(id string) (entity.IDDocument, bool) {
	doc, ok := r.idDocuments[id]
	if !ok {
		return entity.IDDocument{}, false
	}
	return doc.Clone(), true
}
