package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScript = `
name: quiz walkthrough
steps:
  - event: {kind: press, target: submit}
    expect:
      vars: {score: 10}
      states: {submit: done}
      content: {total: "Points: 10"}
  - evaluate: end
    expect:
      target: pass
  - set: {score: 0}
  - evaluate: end
    expect:
      target: retry
`

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(passingScript), 0o644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "quiz walkthrough", s.Name)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, "submit", s.Steps[0].Event.Target)
	assert.EqualValues(t, 10, s.Steps[0].Expect.Variables["score"])
	assert.Equal(t, "pass", *s.Steps[1].Expect.Target)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(passingScript), 0o644))
	s, err := LoadScript(path)
	require.NoError(t, err)

	c, _, _ := newTestConsole(t)
	assert.NoError(t, Replay(c, s))
}

func TestReplay_ReportsFailingStep(t *testing.T) {
	target := "pass"
	s := &Script{Steps: []Step{
		{Evaluate: "end", Expect: &Expectation{Target: &target}},
	}}

	c, _, _ := newTestConsole(t)
	err := Replay(c, s)

	require.ErrorIs(t, err, ErrExpectation)
	assert.Contains(t, err.Error(), "step 1")
	assert.Contains(t, err.Error(), `target = "retry", want "pass"`)
}

func TestExpectation_Check(t *testing.T) {
	c, eng, _ := newTestConsole(t)
	require.NoError(t, c.Exec("press submit"))

	tests := []struct {
		name   string
		expect Expectation
		failed []string
	}{
		{"loose number match", Expectation{Variables: map[string]any{"score": "10"}}, nil},
		{"wrong value", Expectation{Variables: map[string]any{"score": 11}}, []string{`variable "score" = 10, want 11`}},
		{"undefined variable", Expectation{Variables: map[string]any{"nope": 1}}, []string{`variable "nope" is not defined`}},
		{"wrong state", Expectation{States: map[string]string{"submit": "normal"}}, []string{`state of "submit" = "done", want "normal"`}},
		{"missing node", Expectation{Content: map[string]string{"ghost": ""}}, []string{`node "ghost" not found`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expect.Check(eng, "")
			if tt.failed == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrExpectation)
			for _, msg := range tt.failed {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestRunSession_Script(t *testing.T) {
	unit := writeUnit(t, unitYAML)
	script := filepath.Join(filepath.Dir(unit), "walk.yaml")
	require.NoError(t, os.WriteFile(script, []byte(passingScript), 0o644))

	var out bytes.Buffer
	err := RunSession(RunOptions{
		ConfigPath:    unit,
		FunctionsPath: filepath.Join(filepath.Dir(unit), "functions.yaml"),
		ScriptPath:    script,
		SessionID:     "walk",
		Persistence:   PersistenceOptions{Dir: filepath.Dir(unit)},
	}, bytes.NewReader(nil), &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "4 steps passed")
	assert.FileExists(t, filepath.Join(filepath.Dir(unit), ".cuepoint", "sessions", "walk.json"))
}

func TestRunSession_QuizExample(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "quiz")

	var out bytes.Buffer
	err := RunSession(RunOptions{
		ConfigPath:    filepath.Join(dir, "unit.yaml"),
		FunctionsPath: filepath.Join(dir, "functions.yaml"),
		ScriptPath:    filepath.Join(dir, "walkthrough.yaml"),
		SessionID:     "quiz",
		Persistence:   PersistenceOptions{Dir: t.TempDir()},
	}, bytes.NewReader(nil), &out)

	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "4 steps passed")
}
