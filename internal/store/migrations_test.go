package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStatementsSplit(t *testing.T) {
	script := `-- header comment
CREATE TABLE a (id TEXT PRIMARY KEY);

-- second step
CREATE INDEX idx_a ON a(id);
`
	stmts := sqlStatements(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id TEXT PRIMARY KEY)", stmts[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a(id)", stmts[1])
}

func TestSQLStatementsCommentOnlyFragments(t *testing.T) {
	assert.Empty(t, sqlStatements("-- nothing here;\n-- still nothing"))
	assert.Empty(t, sqlStatements("  \n\t\n"))
}

func TestStripLineComments(t *testing.T) {
	chunk := "-- leading comment\nCREATE TABLE b (\n    id TEXT\n)\n-- trailing comment"
	assert.Equal(t, "CREATE TABLE b (\n    id TEXT\n)", stripLineComments(chunk))
}

func TestEmbeddedSchemaStatements(t *testing.T) {
	// The embedded script must split into at least the two tables plus
	// their indexes, with no comment fragment surviving as a statement.
	stmts := sqlStatements(schemaV1)
	require.GreaterOrEqual(t, len(stmts), 2)
	for _, s := range stmts {
		assert.NotEmpty(t, s)
		assert.False(t, s[0] == '-', "comment leaked into statements: %q", s)
	}
}
