package script_test

import (
	"testing"

	"github.com/pseudomuto/ssm/pkg/script"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "single statement without semicolon",
			src:      "DEFINE TABLE user",
			expected: []string{"DEFINE TABLE user"},
		},
		{
			name:     "multiple statements",
			src:      "DEFINE TABLE user;\nDEFINE INDEX idx ON user FIELDS name;",
			expected: []string{"DEFINE TABLE user", "DEFINE INDEX idx ON user FIELDS name"},
		},
		{
			name:     "semicolons inside strings",
			src:      `CREATE note SET body = 'a; b'; CREATE note SET body = "c; d";`,
			expected: []string{`CREATE note SET body = 'a; b'`, `CREATE note SET body = "c; d"`},
		},
		{
			name:     "escaped and doubled quotes",
			src:      `INSERT INTO t VALUES ('it''s; fine'); INSERT INTO t VALUES ('a\'; b');`,
			expected: []string{`INSERT INTO t VALUES ('it''s; fine')`, `INSERT INTO t VALUES ('a\'; b')`},
		},
		{
			name: "semicolons inside blocks",
			src: `DEFINE FUNCTION fn::greet($name: string) {
	LET $msg = "hi " + $name;
	RETURN $msg;
};
DEFINE TABLE user;`,
			expected: []string{
				"DEFINE FUNCTION fn::greet($name: string) {\n\tLET $msg = \"hi \" + $name;\n\tRETURN $msg;\n}",
				"DEFINE TABLE user",
			},
		},
		{
			name:     "comments are dropped before statements",
			src:      "-- users\n# more\n// and more\n/* block; comment */\nDEFINE TABLE user;\n-- trailing only",
			expected: []string{"DEFINE TABLE user"},
		},
		{
			name:     "comments inside statements are kept",
			src:      "DEFINE TABLE user -- the users; table\n SCHEMAFULL;",
			expected: []string{"DEFINE TABLE user -- the users; table\n SCHEMAFULL"},
		},
		{
			name:     "trailing comment without semicolon",
			src:      "DEFINE TABLE user;\nDEFINE FIELD name ON user TYPE string -- display name\n",
			expected: []string{"DEFINE TABLE user", "DEFINE FIELD name ON user TYPE string"},
		},
		{
			name:     "comment before semicolon",
			src:      "DEFINE TABLE user /* users */\n;",
			expected: []string{"DEFINE TABLE user"},
		},
		{
			name:     "quoted identifiers",
			src:      "CREATE `odd;name` SET a = 1; CREATE ⟨other;name⟩ SET a = 2;",
			expected: []string{"CREATE `odd;name` SET a = 1", "CREATE ⟨other;name⟩ SET a = 2"},
		},
		{
			name:     "graph arrows and arithmetic",
			src:      "RELATE user:a->likes->post:b; SELECT 1 - 2 / 3 FROM t;",
			expected: []string{"RELATE user:a->likes->post:b", "SELECT 1 - 2 / 3 FROM t"},
		},
		{
			name:     "empty statements",
			src:      ";;  ;\n",
			expected: nil,
		},
		{
			name:     "empty script",
			src:      "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := script.Split(tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.expected, script.Texts(stmts))
		})
	}
}

func TestSplit_Lines(t *testing.T) {
	stmts, err := script.Split("-- header\n\nDEFINE TABLE user;\nDEFINE TABLE post;\n\n\nDEFINE TABLE comment;")
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	require.Equal(t, 3, stmts[0].Line)
	require.Equal(t, 4, stmts[1].Line)
	require.Equal(t, 7, stmts[2].Line)
}

func TestSplit_Errors(t *testing.T) {
	tests := []string{
		"CREATE note SET body = 'unterminated;",
		`CREATE note SET body = "unterminated;`,
		"CREATE `unterminated SET a = 1;",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := script.Split(src)
			require.Error(t, err)
			require.Contains(t, err.Error(), "failed to tokenize script")
		})
	}
}

func TestJoin(t *testing.T) {
	require.Equal(t, "BEGIN TRANSACTION;\nDEFINE TABLE user;\n", script.Join("BEGIN TRANSACTION", "DEFINE TABLE user"))
	require.Empty(t, script.Join())
}
