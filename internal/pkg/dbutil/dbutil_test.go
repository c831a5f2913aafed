package dbutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalize_RebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM documents WHERE user_id = ? AND status = ?", []interface{}{"u1", "indexed"})
	require.Equal(t, "SELECT id FROM documents WHERE user_id = $1 AND status = $2", query)
	require.Equal(t, []interface{}{"u1", "indexed"}, args)
}

func TestFinalize_RewritesMySQLLimit(t *testing.T) {
	query, args := Finalize(
		"SELECT id FROM documents WHERE user_id = ? ORDER BY ctime DESC LIMIT ?,?",
		[]interface{}{"u1", uint(20), uint(10)},
	)
	require.Equal(t, "SELECT id FROM documents WHERE user_id = $1 ORDER BY ctime DESC LIMIT $2 OFFSET $3", query)
	// gendry emits offset,count; Postgres wants count first.
	require.Equal(t, []interface{}{"u1", uint(10), uint(20)}, args)
}
