package e2e_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsongraph runs the command from the module root with stdin and returns
// stdout, stderr and the exit code.
func jsongraph(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err, "failed to run jsongraph: %s", stderr.String())
	}
	return stdout.String(), stderr.String(), code
}

type graphDocument struct {
	Nodes []struct {
		ID          string `json:"id"`
		Kind        string `json:"kind"`
		Key         string `json:"key"`
		Path        string `json:"path"`
		Label       string `json:"label"`
		Highlighted bool   `json:"highlighted"`
		Position    struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"position"`
	} `json:"nodes"`
	Edges []struct {
		ID     string `json:"id"`
		Source string `json:"source"`
		Target string `json:"target"`
	} `json:"edges"`
	Stats *struct {
		Nodes    int `json:"nodes"`
		MaxDepth int `json:"max_depth"`
	} `json:"stats"`
}

// TestEndToEnd_ComplexNestedStructures converts a document mixing every kind of value
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"id": 12345,
		"uuid": "550e8400-e29b-41d4-a716-446655440000",
		"created_at": "2023-05-20T14:56:23Z",
		"updated_at": null,
		"config": {
			"enabled": true,
			"features": ["logging", "metrics", "alerting"],
			"rate_limits": {
				"per_second": 100,
				"burst": 150
			}
		},
		"users": [
			{"id": 1, "name": "Alice", "roles": ["admin", "user"]},
			{"id": 2, "name": "Bob", "roles": ["user"]}
		],
		"active": true
	}`
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0o644))

	stdout, stderr, code := jsongraph(t, "", "graph", "-i", jsonFile, "--output-format", "json", "--stats")
	require.Equal(t, 0, code, stderr)

	var doc graphDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	// One node per value, one edge per non-root node
	require.Len(t, doc.Nodes, 27)
	assert.Len(t, doc.Edges, len(doc.Nodes)-1)
	require.NotNil(t, doc.Stats)
	assert.Equal(t, len(doc.Nodes), doc.Stats.Nodes)
	assert.Equal(t, 4, doc.Stats.MaxDepth)

	labels := make(map[string]string)
	for _, node := range doc.Nodes {
		labels[node.Path] = node.Label
	}
	assert.Equal(t, "root", labels["$"])
	assert.Equal(t, "id: 12345", labels["$.id"])
	assert.Equal(t, "updated_at: null", labels["$.updated_at"])
	assert.Equal(t, "features[3]", labels["$.config.features"])
	assert.Equal(t, "0: \"admin\"", labels["$.users[0].roles[0]"])
	assert.Equal(t, "per_second: 100", labels["$.config.rate_limits.per_second"])

	seen := make(map[[2]int]string)
	for _, node := range doc.Nodes {
		pos := [2]int{node.Position.X, node.Position.Y}
		if other, dup := seen[pos]; dup {
			t.Errorf("%s and %s share position %v", other, node.Path, pos)
		}
		seen[pos] = node.Path
	}
}

// TestEndToEnd_Diagnostics checks the report printed for broken input
func TestEndToEnd_Diagnostics(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		location string
		hint     string
	}{
		{
			name:     "TrailingCommaInObject",
			input:    "{\n  \"a\": 1,\n}",
			location: "<stdin>:3:1:",
			hint:     "trailing comma",
		},
		{
			name:     "TrailingCommaInArray",
			input:    `["item1", "item2",]`,
			location: "<stdin>:1:19:",
			hint:     "trailing comma",
		},
		{
			name:     "MissingComma",
			input:    "{\n  \"a\": 1\n  \"b\": 2\n}",
			location: "<stdin>:3:3:",
			hint:     "missing comma",
		},
		{
			name:     "Unterminated",
			input:    `{"name": "John Doe", "age": 30`,
			location: "<stdin>:1:31:",
			hint:     "incomplete",
		},
		{
			name:     "Empty",
			input:    "   ",
			location: "<stdin>:1:1:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, code := jsongraph(t, tc.input, "graph", "--color", "never")
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "✗ "+tc.location+" error:")
			if tc.hint != "" {
				assert.Contains(t, stderr, "hint:")
				assert.Contains(t, stderr, tc.hint)
			}
		})
	}
}

// TestEndToEnd_Search finds nodes by exact path and by fragment
func TestEndToEnd_Search(t *testing.T) {
	input := `{"user": {"id": 1, "name": "Ada"}, "items": [{"name": "a"}, {"name": "b"}]}`

	stdout, stderr, code := jsongraph(t, input, "search", "$.items[1].name", "--color", "never")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "name: \"b\"\n"), stdout)
	assert.Contains(t, stdout, "path      $.items[1].name")

	stdout, stderr, code = jsongraph(t, input, "search", "USER.NAME", "--color", "never")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "path      $.user.name")

	_, stderr, code = jsongraph(t, input, "search", "address")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "No match found.")
}

// TestEndToEnd_Check validates a tree of mixed formats
func TestEndToEnd_Check(t *testing.T) {
	tempDir := t.TempDir()
	files := map[string]string{
		"valid.json":        `{"ok": true}`,
		"config/app.yaml":   "name: app\nport: 8080\n",
		"config/app.toml":   "name = \"app\"\n",
		"broken/trail.json": `[1, 2,]`,
		".hidden/bad.json":  `{`,
	}
	for name, content := range files {
		path := filepath.Join(tempDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	stdout, stderr, code := jsongraph(t, "", "check", tempDir, "--color", "never")
	assert.Equal(t, 1, code, stderr)
	assert.Contains(t, stdout, "✓ "+filepath.Join(tempDir, "valid.json"))
	assert.Contains(t, stdout, "✓ "+filepath.Join(tempDir, "config", "app.yaml"))
	assert.Contains(t, stdout, "✓ "+filepath.Join(tempDir, "config", "app.toml"))
	assert.Contains(t, stdout, "✗ "+filepath.Join(tempDir, "broken", "trail.json")+":1:7: error:")
	assert.NotContains(t, stdout, ".hidden")
}

// TestEndToEnd_Sample round-trips both samples through the CLI
func TestEndToEnd_Sample(t *testing.T) {
	sample, stderr, code := jsongraph(t, "", "sample")
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code := jsongraph(t, sample, "graph", "--output-format", "dot")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `label="address"`)

	broken, stderr, code := jsongraph(t, "", "sample", "--broken")
	require.Equal(t, 0, code, stderr)

	_, stderr, code = jsongraph(t, broken, "graph")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "<stdin>:7:7:")
}
