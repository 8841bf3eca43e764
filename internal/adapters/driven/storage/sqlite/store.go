package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the version, ledger, and model store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.inkwell/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".inkwell", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VersionStore returns a VersionStore interface backed by this store.
func (s *Store) VersionStore() driven.VersionStore {
	return &versionStore{store: s}
}

// FeedbackLedger returns a FeedbackLedger interface backed by this store.
func (s *Store) FeedbackLedger() driven.FeedbackLedger {
	return &feedbackLedger{store: s}
}

// RankingModelStore returns a RankingModelStore interface backed by this store.
func (s *Store) RankingModelStore() driven.RankingModelStore {
	return &modelStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Version Store ====================

// versionStore implements driven.VersionStore.
type versionStore struct {
	store *Store
}

var _ driven.VersionStore = (*versionStore)(nil)

// SaveVersion stores a version. A version that already exists under the
// same ID is left untouched, which keeps saves idempotent.
func (s *versionStore) SaveVersion(ctx context.Context, v *domain.DocumentVersion) error {
	metadataJSON, err := json.Marshal(v.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO versions (id, url, content, type, embedding, active, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, v.ID, v.URL, v.Content, string(v.Type), float32SliceToBytes(v.Embedding),
		boolToInt(v.Active), string(metadataJSON), createdAt)

	if err != nil {
		return fmt.Errorf("saving version: %w", err)
	}
	return nil
}

// GetVersion retrieves a version by ID.
func (s *versionStore) GetVersion(ctx context.Context, id string) (*domain.DocumentVersion, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, url, content, type, embedding, active, metadata, created_at
		FROM versions WHERE id = ?
	`, id)

	return scanVersion(row)
}

// ListVersions returns all versions of a URL in creation order.
func (s *versionStore) ListVersions(ctx context.Context, url string) ([]domain.DocumentVersion, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, url, content, type, embedding, active, metadata, created_at
		FROM versions WHERE url = ?
		ORDER BY created_at ASC, id ASC
	`, url)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	return scanVersionRows(rows)
}

// ListActive returns the active versions across all URLs.
func (s *versionStore) ListActive(ctx context.Context) ([]domain.DocumentVersion, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, url, content, type, embedding, active, metadata, created_at
		FROM versions WHERE active = 1
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying active versions: %w", err)
	}
	defer rows.Close()

	return scanVersionRows(rows)
}

// SetActive marks the given version active and deactivates every other
// version of the same URL.
func (s *versionStore) SetActive(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var url string
	row := tx.QueryRowContext(ctx, "SELECT url FROM versions WHERE id = ?", id)
	if err := row.Scan(&url); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("resolving version url: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE versions SET active = 0 WHERE url = ?", url); err != nil {
		return fmt.Errorf("deactivating versions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE versions SET active = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("activating version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteVersion removes a version.
func (s *versionStore) DeleteVersion(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM versions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting version: %w", err)
	}
	return nil
}

// CountVersions returns the total number of stored versions.
func (s *versionStore) CountVersions(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM versions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting versions: %w", err)
	}
	return count, nil
}

// ==================== Feedback Ledger ====================

// feedbackLedger implements driven.FeedbackLedger.
type feedbackLedger struct {
	store *Store
}

var _ driven.FeedbackLedger = (*feedbackLedger)(nil)

// Append records a feedback event. The ledger is append-only; events with
// a reward outside [-1, 1] are rejected with domain.ErrOutOfRange.
func (s *feedbackLedger) Append(ctx context.Context, event *domain.FeedbackEvent) error {
	if !domain.ValidReward(event.Reward) {
		return domain.ErrOutOfRange
	}

	featuresJSON, err := json.Marshal(event.Features)
	if err != nil {
		return fmt.Errorf("marshalling features: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO feedback_events (id, query, version_id, features, reward, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.Query, event.ResultID, string(featuresJSON), event.Reward, createdAt)

	if err != nil {
		return fmt.Errorf("appending feedback: %w", err)
	}
	return nil
}

// Count returns the number of recorded feedback events.
func (s *feedbackLedger) Count(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting feedback: %w", err)
	}
	return count, nil
}

// Window returns the latest n events in oldest-first order.
// A non-positive n returns the full history.
func (s *feedbackLedger) Window(ctx context.Context, n int) ([]domain.FeedbackEvent, error) {
	query := `
		SELECT id, query, version_id, features, reward, created_at
		FROM feedback_events ORDER BY seq ASC
	`
	args := []any{}
	if n > 0 {
		query = `
			SELECT id, query, version_id, features, reward, created_at
			FROM (
				SELECT seq, id, query, version_id, features, reward, created_at
				FROM feedback_events ORDER BY seq DESC LIMIT ?
			) ORDER BY seq ASC
		`
		args = append(args, n)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var events []domain.FeedbackEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		var event domain.FeedbackEvent
		var featuresJSON string
		if err := rows.Scan(&event.ID, &event.Query, &event.ResultID,
			&featuresJSON, &event.Reward, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}

		if err := json.Unmarshal([]byte(featuresJSON), &event.Features); err != nil {
			return nil, fmt.Errorf("unmarshaling features: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}

	return events, nil
}

// ==================== Ranking Model Store ====================

// modelStore implements driven.RankingModelStore.
type modelStore struct {
	store *Store
}

var _ driven.RankingModelStore = (*modelStore)(nil)

// SaveSnapshot persists a ranking snapshot.
func (s *modelStore) SaveSnapshot(ctx context.Context, snap *domain.RankingSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	trainedAt := snap.TrainedAt
	if trainedAt.IsZero() {
		trainedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO ranking_snapshots (version, schema_version, payload, trained_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(version) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload = excluded.payload,
			trained_at = excluded.trained_at
	`, snap.Version, snap.Schema, string(payload), trainedAt)

	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot. A missing or
// schema-incompatible snapshot reports domain.ErrNotFound so callers
// fall back to the neutral model.
func (s *modelStore) LatestSnapshot(ctx context.Context) (*domain.RankingSnapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT schema_version, payload
		FROM ranking_snapshots ORDER BY version DESC LIMIT 1
	`)

	var schemaVersion int
	var payload string
	if err := row.Scan(&schemaVersion, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	if schemaVersion != domain.RankingSchemaVersion {
		return nil, domain.ErrNotFound
	}

	var snap domain.RankingSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}

	return &snap, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanVersion scans a single version row.
func scanVersion(row *sql.Row) (*domain.DocumentVersion, error) {
	var v domain.DocumentVersion
	var versionType string
	var embeddingBlob []byte
	var active int
	var metadataJSON sql.NullString

	if err := row.Scan(&v.ID, &v.URL, &v.Content, &versionType,
		&embeddingBlob, &active, &metadataJSON, &v.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning version: %w", err)
	}

	v.Type = domain.VersionType(versionType)
	v.Embedding = bytesToFloat32Slice(embeddingBlob)
	v.Active = active != 0

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &v.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &v, nil
}

// scanVersionRows scans multiple version rows.
func scanVersionRows(rows *sql.Rows) ([]domain.DocumentVersion, error) {
	var versions []domain.DocumentVersion //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v domain.DocumentVersion
		var versionType string
		var embeddingBlob []byte
		var active int
		var metadataJSON sql.NullString

		if err := rows.Scan(&v.ID, &v.URL, &v.Content, &versionType,
			&embeddingBlob, &active, &metadataJSON, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}

		v.Type = domain.VersionType(versionType)
		v.Embedding = bytesToFloat32Slice(embeddingBlob)
		v.Active = active != 0

		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &v.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}

		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}

	return versions, nil
}
