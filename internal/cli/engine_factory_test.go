package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Build(t *testing.T) {
	f := newTestFactory(t, writeUnit(t, unitYAML))

	_, err := f.Build(nil)
	require.Error(t, err, "build before load")

	report, err := f.Reload(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Errors())

	eng, err := f.Build(nil)
	require.NoError(t, err)
	defer eng.Destroy()

	require.NoError(t, eng.Dispatch(domain.InputEvent{Kind: domain.EventPress, Target: "submit"}))
	score, _ := eng.Variables().Get("score")
	assert.EqualValues(t, 10, score)

	total, _ := eng.Document().Get("total")
	assert.Equal(t, "Points: 10", total.Content)

	// Engines are independent.
	other, err := f.Engine()
	require.NoError(t, err)
	defer other.Destroy()
	score, _ = other.Variables().Get("score")
	assert.EqualValues(t, 0, score)
}

func TestFactory_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writeUnit(t, unitYAML)
	f := newTestFactory(t, path)
	_, err := f.Reload(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`
triggers:
  - event: explode
    action: adjustVariable
`), 0o644))

	report, err := f.Reload(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Errors())
	assert.Len(t, f.Config().Triggers, 2, "previous configuration kept")
}

func TestFactory_Navigator(t *testing.T) {
	f := newTestFactory(t, writeUnit(t, `
nodes:
  - id: go
variables: {}
triggers:
  - event: press
    eventTarget: "#go"
    action: next
  - event: press
    eventTarget: "#go"
    action: jumpToScene
    actionParams: {sceneId: finale}
`))
	_, err := f.Reload(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	eng, err := f.Build(&out)
	require.NoError(t, err)
	defer eng.Destroy()

	require.NoError(t, eng.Dispatch(domain.InputEvent{Kind: domain.EventPress, Target: "go"}))
	assert.Contains(t, out.String(), ">>> navigate: next (unit 1)")
	assert.Contains(t, out.String(), `>>> navigate: scene "finale"`)
}

func TestFactory_ExternalFunctions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	path := writeUnit(t, `
nodes:
  - id: grade
variables:
  verdict:
    type: text
triggers:
  - event: press
    eventTarget: "#grade"
    action: executeFunction
    actionParams:
      fn: verdict
      variable: verdict
      args: {score: 90}
`)
	functions := `
functions:
  - name: verdict
    command: sh
    args: ["-c", "if [ \"$CUEPOINT_ARG_SCORE\" -ge 80 ]; then echo pass; else echo fail; fi"]
`
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "functions.yaml"), []byte(functions), 0o644))

	f := newTestFactory(t, path)
	_, err := f.Reload(context.Background())
	require.NoError(t, err)
	eng, err := f.Build(nil)
	require.NoError(t, err)
	defer eng.Destroy()

	require.NoError(t, eng.Dispatch(domain.InputEvent{Kind: domain.EventPress, Target: "grade"}))
	verdict, _ := eng.Variables().Get("verdict")
	assert.Equal(t, "pass", verdict)
}

func TestCreateLogger(t *testing.T) {
	logger, err := createLogger(false, "warn")
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	_, err = createLogger(false, "loud")
	assert.Error(t, err)

	logger, err = createLogger(true, "")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
