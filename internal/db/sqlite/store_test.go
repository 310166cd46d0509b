package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/reportdex/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{
		DSN:         filepath.Join(t.TempDir(), "reports.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertReport(t *testing.T, s *Store, id int64, infoCode, content string) {
	t.Helper()
	err := s.Exec(context.Background(),
		`INSERT INTO reports (id, info_code, title, publish_date, pdf_link, content_text)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, infoCode, "title "+infoCode, "2024-01-0"+infoCode[len(infoCode)-1:], "https://example.com/"+infoCode+".pdf", content)
	require.NoError(t, err)
}

func queryAll(t *testing.T, s *Store, query string, args ...any) []db.Row {
	t.Helper()
	var rows []db.Row
	err := s.Read(context.Background(), func(q db.Querier) error {
		var err error
		rows, err = q.Query(context.Background(), query, args...)
		return err
	})
	require.NoError(t, err)
	return rows
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.Error(t, err)
}

func TestOpen_MigratesSchema(t *testing.T) {
	s := setupTestStore(t)

	rows := queryAll(t, s, `SELECT name FROM sqlite_master WHERE type IN ('table', 'trigger') ORDER BY name`)
	var names []string
	for _, r := range rows {
		names = append(names, r["name"].(string))
	}
	for _, want := range []string{"filter_options", "report_author_index", "reports", "reports_fts", "reports_fts_ai"} {
		assert.Contains(t, names, want)
	}
}

func TestOpen_MigrateIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "twice.db")
	for range 2 {
		s, err := Open(context.Background(), Config{DSN: dsn, AutoMigrate: true})
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
}

func TestPing(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestRead_ScansTypes(t *testing.T) {
	s := setupTestStore(t)
	insertReport(t, s, 1, "AP1", "宏观经济展望")

	rows := queryAll(t, s, `SELECT id, info_code, attach_pages, COUNT(*) AS count FROM reports`)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.EqualValues(t, 1, row["id"])
	assert.Nil(t, row["attach_pages"])
	assert.EqualValues(t, 1, row["count"])
	switch v := row["info_code"].(type) {
	case string:
		assert.Equal(t, "AP1", v)
	case []byte:
		assert.Equal(t, "AP1", string(v))
	default:
		t.Fatalf("unexpected info_code type %T", v)
	}
}

func TestRead_EmptyResult(t *testing.T) {
	s := setupTestStore(t)
	rows := queryAll(t, s, `SELECT id FROM reports WHERE info_code = ?`, "missing")
	assert.Empty(t, rows)
}

func TestRead_FullTextTrigram(t *testing.T) {
	s := setupTestStore(t)
	insertReport(t, s, 1, "AP1", "二零二四年宏观经济展望")
	insertReport(t, s, 2, "AP2", "银行业季度点评")
	insertReport(t, s, 3, "AP3", "宏观经济与货币政策")

	rows := queryAll(t, s,
		`SELECT reports.info_code FROM reports JOIN reports_fts ON reports.id = reports_fts.rowid
		 WHERE reports_fts.content_text MATCH ? ORDER BY reports.id`,
		db.PhraseQuery([]string{"宏观经济"}))
	require.Len(t, rows, 2)

	rows = queryAll(t, s,
		`SELECT reports.info_code FROM reports JOIN reports_fts ON reports.id = reports_fts.rowid
		 WHERE reports_fts.content_text MATCH ?`,
		db.PhraseQuery([]string{"宏观经济", "货币政策"}))
	require.Len(t, rows, 1)
}

func TestRead_FullTextFollowsUpdates(t *testing.T) {
	s := setupTestStore(t)
	insertReport(t, s, 1, "AP1", "旧的内容文本")
	require.NoError(t, s.Exec(context.Background(), `UPDATE reports SET content_text = ? WHERE id = 1`, "全新的内容文本"))

	match := `SELECT reports.id FROM reports JOIN reports_fts ON reports.id = reports_fts.rowid WHERE reports_fts.content_text MATCH ?`
	assert.Empty(t, queryAll(t, s, match, db.PhraseQuery([]string{"旧的内"})))
	assert.Len(t, queryAll(t, s, match, db.PhraseQuery([]string{"全新的"})), 1)

	require.NoError(t, s.Exec(context.Background(), `DELETE FROM reports WHERE id = 1`))
	assert.Empty(t, queryAll(t, s, match, db.PhraseQuery([]string{"全新的"})))
}

func TestRead_LikeEscaping(t *testing.T) {
	s := setupTestStore(t)
	insertReport(t, s, 1, "AP1", "增长5%左右")
	insertReport(t, s, 2, "AP2", "增长50左右")

	rows := queryAll(t, s,
		`SELECT id FROM reports WHERE content_text LIKE ? ESCAPE '\'`,
		"%"+db.EscapeLike("5%")+"%")
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0]["id"])
}

func TestRead_PropagatesCallbackError(t *testing.T) {
	s := setupTestStore(t)
	sentinel := errors.New("stop")

	err := s.Read(context.Background(), func(db.Querier) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestRead_BadSQL(t *testing.T) {
	s := setupTestStore(t)

	err := s.Read(context.Background(), func(q db.Querier) error {
		_, err := q.Query(context.Background(), `SELECT nope FROM nowhere`)
		return err
	})
	var dbErr *db.Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, db.OpQuery, dbErr.Op)
}

func TestRead_CanceledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Read(ctx, func(q db.Querier) error {
		_, err := q.Query(ctx, `SELECT 1`)
		return err
	})
	assert.Error(t, err)
}
