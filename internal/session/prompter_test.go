package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter_ReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("1,2\r\ncpu\n"), &out)
	defer p.Close()

	ctx := context.Background()
	a, err := p.Prompt(ctx, "targets? ")
	require.NoError(t, err)
	assert.Equal(t, "1,2", a)

	a, err = p.Prompt(ctx, "mode? ")
	require.NoError(t, err)
	assert.Equal(t, "cpu", a)

	_, err = p.Prompt(ctx, "tasks? ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "targets? mode? tasks? ", out.String())
}

func TestLinePrompter_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewLinePrompter(pr, io.Discard)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Prompt(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLinePrompter_Closed(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewLinePrompter(pr, io.Discard)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err := p.Prompt(context.Background(), "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestScriptedPrompter(t *testing.T) {
	p := NewScriptedPrompter("a", "b")
	ctx := context.Background()

	a, err := p.Prompt(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "a", a)
	a, err = p.Prompt(ctx, "q2")
	require.NoError(t, err)
	assert.Equal(t, "b", a)
	_, err = p.Prompt(ctx, "q3")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{"q1", "q2", "q3"}, p.Questions())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Prompt(cctx, "q4")
	assert.ErrorIs(t, err, context.Canceled)
}
