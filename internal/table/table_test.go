package table

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVFormatsCells(t *testing.T) {
	t.Parallel()

	tb := New("id", "name", "avg", "when", "missing")
	require.NoError(t, tb.Append(int64(7), "Ana", 12.5, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), nil))

	var buf bytes.Buffer
	require.NoError(t, tb.WriteCSV(&buf))

	assert.Equal(t, "id,name,avg,when,missing\n7,Ana,12.5,2024-01-02T03:04:05Z,\n", buf.String())
}

func TestAppendRejectsWrongWidth(t *testing.T) {
	t.Parallel()

	tb := New("a", "b")
	err := tb.Append(1)
	require.Error(t, err)
	assert.Equal(t, 0, tb.Len())
}

func TestSaveCSVCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	tb := New("query", "backend")
	require.NoError(t, tb.Append("q1", "relational"))
	require.NoError(t, tb.SaveCSV(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "query,backend\nq1,relational\n", string(b))
}

func TestMapsAndIndex(t *testing.T) {
	t.Parallel()

	tb := Table{Columns: []string{"x", "y"}, Rows: [][]any{{1, "a"}}}
	assert.Equal(t, 1, tb.Index("y"))
	assert.Equal(t, -1, tb.Index("z"))
	assert.Equal(t, []map[string]any{{"x": 1, "y": "a"}}, tb.Maps())
}
