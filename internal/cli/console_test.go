package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, opts ...ConsoleOption) (*Console, *cuepoint.Engine, *bytes.Buffer) {
	t.Helper()
	f := newTestFactory(t, writeUnit(t, unitYAML))
	_, err := f.Reload(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	eng, err := f.Build(&out)
	require.NoError(t, err)
	t.Cleanup(eng.Destroy)

	c := NewConsole(eng, &out, opts...)
	t.Cleanup(c.Close)
	return c, eng, &out
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Step
	}{
		{"press submit", Step{Event: &domain.InputEvent{Kind: domain.EventPress, Target: "submit"}}},
		{"click submit", Step{Event: &domain.InputEvent{Kind: domain.EventPress, Target: "submit"}}},
		{"key-press Enter submit", Step{Event: &domain.InputEvent{Kind: domain.EventKeyPress, Key: "Enter", Target: "submit"}}},
		{"drag-drop card zone", Step{Event: &domain.InputEvent{Kind: domain.EventDragDrop, Item: "card", Target: "zone"}}},
		{"cue-point intro beat", Step{Event: &domain.InputEvent{Kind: domain.EventCuePoint, Target: "intro", Name: "beat"}}},
		{"custom done", Step{Event: &domain.InputEvent{Kind: domain.EventCustom, Name: "done"}}},
		{"ready", Step{Event: &domain.InputEvent{Kind: domain.EventContentStart}}},
		{"leave", Step{Event: &domain.InputEvent{Kind: domain.EventContentEnd}}},
		{"eval end", Step{Evaluate: "end"}},
		{"set name Ada Lovelace", Step{Set: map[string]any{"name": "Ada Lovelace"}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			fields := strings.Fields(tt.line)
			got, err := ParseCommand(fields[0], fields[1:])
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("errors", func(t *testing.T) {
		_, err := ParseCommand("explode", nil)
		assert.ErrorIs(t, err, domain.ErrUnknownEvent)
		_, err = ParseCommand("eval", nil)
		assert.Error(t, err)
		_, err = ParseCommand("set", []string{"x"})
		assert.Error(t, err)
	})
}

func TestConsole_Exec(t *testing.T) {
	c, eng, out := newTestConsole(t)

	require.NoError(t, c.Exec("press submit"))
	assert.Contains(t, out.String(), "~ score = 10")
	assert.Contains(t, out.String(), "~ submit: done")

	require.NoError(t, c.Exec("eval end"))
	assert.Contains(t, out.String(), "→ pass")
	assert.Equal(t, "pass", c.LastTarget())

	require.NoError(t, c.Exec("set score 3"))
	score, _ := eng.Variables().Get("score")
	assert.EqualValues(t, 3, score)

	out.Reset()
	require.NoError(t, c.Exec("vars"))
	assert.Contains(t, out.String(), "score = 3")

	out.Reset()
	require.NoError(t, c.Exec("states"))
	assert.Contains(t, out.String(), "submit: done")

	out.Reset()
	require.NoError(t, c.Exec("path"))
	assert.Contains(t, out.String(), "end → pass")

	require.NoError(t, c.Exec("   "))
	assert.ErrorIs(t, c.Exec("quit"), ErrQuit)
	assert.ErrorIs(t, c.Exec("press ghost"), domain.ErrNodeNotFound)
}

func TestConsole_JSON(t *testing.T) {
	c, _, out := newTestConsole(t, WithJSONOutput(true))

	require.NoError(t, c.Exec(`{"event":{"kind":"press","target":"submit"}}`))
	require.NoError(t, c.Exec(`{"evaluate":"end","expect":{"target":"pass","vars":{"score":10}}}`))
	require.NoError(t, c.Exec(`not json`))
	require.Error(t, c.Exec(`{"expect":{"vars":{"score":99}}}`))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	var first Result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NotNil(t, first.Diff)
	assert.EqualValues(t, 10, first.Diff.Variables["score"])

	var second Result
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "pass", second.Target)
	require.NotNil(t, second.Matched)
	assert.True(t, *second.Matched)

	var third, fourth Result
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	assert.NotEmpty(t, third.Error)
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &fourth))
	assert.Contains(t, fourth.Error, "expectation failed")
}

func TestConsole_Trace(t *testing.T) {
	c, _, out := newTestConsole(t, WithTrace(true))

	require.NoError(t, c.Exec("press submit"))
	assert.Contains(t, out.String(), "· ")

	c.Close()
	out.Reset()
	require.NoError(t, c.Exec("press submit"))
	assert.NotContains(t, out.String(), "· ")
}

func TestConsole_Loop(t *testing.T) {
	c, eng, out := newTestConsole(t)

	lines := make(chan string, 4)
	lines <- "press submit"
	lines <- "bogus"
	lines <- "press submit"
	lines <- "quit"

	saves := 0
	err := c.Loop(context.Background(), lines, false, func() error {
		saves++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, saves, "failed lines are not saved")
	assert.Contains(t, out.String(), "error:")
	score, _ := eng.Variables().Get("score")
	assert.EqualValues(t, 20, score)
}

func TestConsole_LoopStopsOnCancel(t *testing.T) {
	c, _, _ := newTestConsole(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Loop(ctx, make(chan string), false, nil) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestConsole_LoopEndsOnEOF(t *testing.T) {
	c, _, _ := newTestConsole(t)
	err := c.Loop(context.Background(), readLines(strings.NewReader("press submit\n")), false, nil)
	assert.NoError(t, err)
}
