package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"slicestub/internal/model"
	"slicestub/internal/oracle"
	"slicestub/internal/stub"
)

// TestExamples runs the collector over every directory under examples/ and
// compares the produced plan against the directory's expected.yaml. An
// optional context.yaml supplies the context index.
func TestExamples(t *testing.T) {
	root := filepath.Join("..", "..", "examples")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())

		t.Run(entry.Name(), func(t *testing.T) {
			prog := model.NewProgram()
			require.NoError(t, prog.LoadDir(dir, true))

			var ctx *oracle.Index

			if data, err := os.ReadFile(filepath.Join(dir, "context.yaml")); err == nil {
				ctx, err = oracle.Parse(data)
				require.NoError(t, err)
			}

			res, err := New(prog, ctx, DefaultConfig()).Run()
			require.NoError(t, err)

			got, err := stub.ExportYAML(res)
			require.NoError(t, err)

			want, err := os.ReadFile(filepath.Join(dir, "expected.yaml"))
			require.NoError(t, err)

			var gotDoc, wantDoc stub.Document
			require.NoError(t, yaml.Unmarshal(got, &gotDoc))
			require.NoError(t, yaml.Unmarshal(want, &wantDoc))

			assert.Equal(t, wantDoc, gotDoc)
		})
	}
}
