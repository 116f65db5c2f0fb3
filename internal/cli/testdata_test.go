package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/stretchr/testify/require"
)

const unitYAML = `
nodes:
  - id: submit
    tag: button
  - id: total
    attributes:
      data-var-template: "Points: %score%"
variables:
  score:
    type: number
objects:
  submit:
    states:
      done:
        markers: [done]
branching:
  end:
    - condition: {variable: score, operator: ">=", value: 10}
      goTo: pass
    - default: true
      goTo: retry
triggers:
  - event: press
    eventTarget: "#submit"
    action: adjustVariable
    actionParams:
      variable: score
      value: 10
  - event: press
    eventTarget: "#submit"
    action: changeState
    actionParams:
      target: submit
      state: done
`

func writeUnit(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestFactory(t *testing.T, path string) *Factory {
	t.Helper()
	f, err := NewFactory(path, filepath.Join(filepath.Dir(path), "functions.yaml"), logging.NewNop())
	require.NoError(t, err)
	return f
}
