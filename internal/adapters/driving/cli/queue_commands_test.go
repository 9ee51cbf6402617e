package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflow-io/docflow/internal/adapters/driven/storage/memory"
	"github.com/docflow-io/docflow/internal/adapters/driven/tools/upper"
	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
	"github.com/docflow-io/docflow/internal/core/services"
)

// setupQueueTest swaps in a memory-backed queue for the duration of a test.
func setupQueueTest(t *testing.T) driving.Queue {
	t.Helper()

	registry := services.NewToolRegistry()
	require.NoError(t, registry.Register(upper.New()))
	queue := services.NewQueueService(memory.NewLifecycleStore(), memory.NewBlobStore(), registry)

	oldQueue, oldRegistry := queueSvc, toolRegistry
	queueSvc, toolRegistry = queue, registry
	t.Cleanup(func() {
		queueSvc, toolRegistry = oldQueue, oldRegistry
	})
	return queue
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSubmitCmd_Use(t *testing.T) {
	assert.Equal(t, "submit <tool> [file]", submitCmd.Use)
}

func TestSubmitCmd_FromStdin(t *testing.T) {
	setupQueueTest(t)

	out, err := execute(t, "hello from stdin", "submit", "upper")
	require.NoError(t, err)

	docID := strings.TrimSpace(out)
	assert.True(t, domain.IsIdentity(docID))
}

func TestStatusCmd_Executes(t *testing.T) {
	queue := setupQueueTest(t)

	_, docID, err := queue.Submit(context.Background(), "upper", "queued doc", driving.SubmitOptions{})
	require.NoError(t, err)

	out, err := execute(t, "", "status", "upper", docID)
	require.NoError(t, err)
	assert.Contains(t, out, "PENDING")

	// A document that was never submitted reports UNKNOWN.
	out, err = execute(t, "", "status", "upper", "0x00000000000000000000000000000000")
	require.NoError(t, err)
	assert.Contains(t, out, "UNKNOWN")
}

func TestResultCmd_Executes(t *testing.T) {
	queue := setupQueueTest(t)
	ctx := context.Background()

	_, docID, err := queue.Submit(ctx, "upper", "finish me", driving.SubmitOptions{})
	require.NoError(t, err)
	_, err = queue.Claim(ctx, "upper")
	require.NoError(t, err)
	require.NoError(t, queue.Complete(ctx, "upper", docID, "FINISH ME"))

	out, err := execute(t, "", "result", "upper", docID)
	require.NoError(t, err)
	assert.Contains(t, out, "FINISH ME")
}

func TestResultCmd_NotReady(t *testing.T) {
	queue := setupQueueTest(t)

	_, docID, err := queue.Submit(context.Background(), "upper", "not yet", driving.SubmitOptions{})
	require.NoError(t, err)

	_, err = execute(t, "", "result", "upper", docID)
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestStatsCmd_Executes(t *testing.T) {
	queue := setupQueueTest(t)

	_, _, err := queue.Submit(context.Background(), "upper", "count me", driving.SubmitOptions{})
	require.NoError(t, err)

	out, err := execute(t, "", "stats", "upper")
	require.NoError(t, err)
	assert.Contains(t, out, "PENDING  1")
	assert.Contains(t, out, "TOTAL    1")
}

func TestWorkCmd_ExitOnIdle(t *testing.T) {
	queue := setupQueueTest(t)
	ctx := context.Background()

	_, docID, err := queue.Submit(ctx, "upper", "work on me", driving.SubmitOptions{})
	require.NoError(t, err)

	_, err = execute(t, "", "work", "upper", "--exit-on-idle")
	require.NoError(t, err)

	result, err := queue.Result(ctx, "upper", docID, "")
	require.NoError(t, err)
	assert.Equal(t, "WORK ON ME", result)
}
