package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// Document is the indexed form of a file node.
type Document struct {
	NodeID      string
	WorkspaceID string
	Title       string
	Content     string
	Category    models.Category
	Tags        []string
	WordCount   int
	ModifiedAt  time.Time
}

// Result is a search hit.
type Result struct {
	NodeID      string
	WorkspaceID string
	Title       string
	Category    models.Category
	WordCount   int
	ModifiedAt  time.Time
	Snippet     string
}

const defaultLimit = 50

const metaTable = `
CREATE TABLE IF NOT EXISTS nodes_meta (
	node_id     TEXT PRIMARY KEY,
	workspace   TEXT,
	title       TEXT,
	content     TEXT,
	category    TEXT,
	tags        TEXT,
	word_count  INTEGER,
	modified_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_nodes_meta_workspace ON nodes_meta(workspace);
CREATE INDEX IF NOT EXISTS idx_nodes_meta_category ON nodes_meta(category);
`

// Column 3 of nodes_fts is content; snippets are cut from it.
const ftsTable = `
CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
	node_id UNINDEXED,
	workspace UNINDEXED,
	title,
	content,
	tags,
	tokenize = 'porter unicode61'
);
`

// Index is a sqlite-backed search index over file nodes. When the sqlite
// build lacks FTS5 it falls back to LIKE matching on nodes_meta.
type Index struct {
	db  *sql.DB
	fts bool
}

// NewIndex opens or creates the index at dbPath. Pass ":memory:" for a throwaway one.
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	idx := &Index{db: db}
	if err := idx.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create search schema: %w", err)
	}
	return idx, nil
}

func (idx *Index) createSchema() error {
	if _, err := idx.db.Exec(metaTable); err != nil {
		return err
	}
	if !idx.probeFTS5() {
		return nil
	}
	_, err := idx.db.Exec(ftsTable)
	idx.fts = err == nil
	return nil
}

func (idx *Index) probeFTS5() bool {
	if _, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_probe USING fts5(x)"); err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS fts5_probe")
	return true
}

// UsesFTS reports whether full-text search is available.
func (idx *Index) UsesFTS() bool {
	return idx.fts
}

// IndexDocument replaces whatever is indexed for doc.NodeID.
func (idx *Index) IndexDocument(ctx context.Context, doc *Document) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := idx.remove(ctx, tx, doc.NodeID); err != nil {
		return err
	}

	tags := strings.Join(doc.Tags, " ")

	if idx.fts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes_fts (node_id, workspace, title, content, tags)
			VALUES (?, ?, ?, ?, ?)
		`, doc.NodeID, doc.WorkspaceID, doc.Title, doc.Content, tags)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO nodes_meta (
			node_id, workspace, title, content, category, tags, word_count, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.NodeID, doc.WorkspaceID, doc.Title, doc.Content, string(doc.Category), tags,
		doc.WordCount, doc.ModifiedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Options narrows a search. Zero values mean no filter and the default limit.
type Options struct {
	WorkspaceID string
	Category    models.Category
	Limit       int
}

// Search returns the nodes matching every term of query. A blank query
// matches nothing.
func (idx *Index) Search(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	o := Options{Limit: defaultLimit}
	if opts != nil {
		o = *opts
		if o.Limit <= 0 {
			o.Limit = defaultLimit
		}
	}
	if strings.TrimSpace(query) == "" {
		return []*Result{}, nil
	}

	if idx.fts {
		return idx.matchFTS(ctx, query, &o)
	}
	return idx.matchLike(ctx, query, &o)
}

func filters(prefix string, opts *Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.WorkspaceID != "" {
		conditions = append(conditions, prefix+"workspace = ?")
		args = append(args, opts.WorkspaceID)
	}
	if opts.Category != "" {
		conditions = append(conditions, prefix+"category = ?")
		args = append(args, string(opts.Category))
	}
	return conditions, args
}

// ftsQuery quotes every term so user input cannot be read as FTS5 syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

func (idx *Index) matchFTS(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	where, args := filters("m.", opts)
	where = append(where, "nodes_fts MATCH ?")
	args = append(args, ftsQuery(query), opts.Limit)

	q := `SELECT m.node_id, m.workspace, m.title, m.category, m.word_count, m.modified_at,
		snippet(nodes_fts, 3, '<match>', '</match>', '...', 32)
		FROM nodes_fts f JOIN nodes_meta m ON f.node_id = m.node_id
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY rank LIMIT ?`
	return idx.query(ctx, q, true, args...)
}

// matchLike requires the terms to appear in order in the title, content or tags.
func (idx *Index) matchLike(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	where, args := filters("", opts)
	pattern := "%" + strings.Join(strings.Fields(query), "%") + "%"
	where = append(where, "(title LIKE ? OR content LIKE ? OR tags LIKE ?)")
	args = append(args, pattern, pattern, pattern, opts.Limit)

	q := `SELECT node_id, workspace, title, category, word_count, modified_at
		FROM nodes_meta
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY modified_at DESC LIMIT ?`
	return idx.query(ctx, q, false, args...)
}

func (idx *Index) query(ctx context.Context, q string, withSnippet bool, args ...any) ([]*Result, error) {
	rows, err := idx.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	results := []*Result{}
	for rows.Next() {
		var (
			r        Result
			category string
		)
		dest := []any{&r.NodeID, &r.WorkspaceID, &r.Title, &category, &r.WordCount, &r.ModifiedAt}
		if withSnippet {
			dest = append(dest, &r.Snippet)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r.Category = models.Category(category)
		results = append(results, &r)
	}
	return results, rows.Err()
}

func (idx *Index) remove(ctx context.Context, tx *sql.Tx, nodeID string) error {
	if idx.fts {
		if _, err := tx.ExecContext(ctx, "DELETE FROM nodes_fts WHERE node_id = ?", nodeID); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM nodes_meta WHERE node_id = ?", nodeID)
	return err
}

// Remove removes nodes from the index. Unknown ids are ignored.
func (idx *Index) Remove(ctx context.Context, nodeIDs ...string) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, id := range nodeIDs {
		if err := idx.remove(ctx, tx, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Clear empties the index, for a full rebuild.
func (idx *Index) Clear(ctx context.Context) error {
	if idx.fts {
		if _, err := idx.db.ExecContext(ctx, "DELETE FROM nodes_fts"); err != nil {
			return err
		}
	}
	_, err := idx.db.ExecContext(ctx, "DELETE FROM nodes_meta")
	return err
}

// Count returns the number of indexed documents.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes_meta").Scan(&n)
	return n, err
}

func (idx *Index) Close() error {
	return idx.db.Close()
}
