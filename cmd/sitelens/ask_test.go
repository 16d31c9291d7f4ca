package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/sitelens"
	main "github.com/fwojciec/sitelens/cmd/sitelens"
	"github.com/fwojciec/sitelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints answer with supporting points", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, taskID int, question string) (*sitelens.QnARecord, error) {
				assert.Equal(t, 7, taskID)
				assert.Equal(t, "Which shop is cheaper?", question)
				return &sitelens.QnARecord{
					Answer:           "Shop A is cheaper.",
					SupportingPoints: []string{"https://a.example lists $10"},
					Confidence:       sitelens.ConfidenceHigh,
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Asker:  asker,
		}

		require.NoError(t, (&main.AskCmd{ID: 7, Question: "Which shop is cheaper?"}).Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "Shop A is cheaper.")
		assert.Contains(t, output, "- https://a.example lists $10")
		assert.Contains(t, output, "Confidence: high")
	})

	t.Run("warns about degraded answers", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, _ int, _ string) (*sitelens.QnARecord, error) {
				return &sitelens.QnARecord{
					Answer:     "I could not answer that question.",
					Confidence: sitelens.ConfidenceLow,
					Error:      "empty reply",
				}, nil
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Asker:  asker,
		}

		require.NoError(t, (&main.AskCmd{ID: 7, Question: "Why?"}).Run(deps))
		assert.Contains(t, stderr.String(), "warning: empty reply")
	})

	t.Run("task not completed", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, _ int, _ string) (*sitelens.QnARecord, error) {
				return nil, sitelens.Errorf(sitelens.EINVALID, "Task is not completed yet")
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Asker:  asker,
		}

		err := (&main.AskCmd{ID: 7, Question: "Why?"}).Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: Task is not completed yet")
	})
}
