package pipeline

import (
	"context"
	"strings"

	"github.com/fwojciec/sitelens"
)

// Ensure Asker implements sitelens.Asker at compile time.
var _ sitelens.Asker = (*Asker)(nil)

// Asker answers questions about completed tasks.
type Asker struct {
	tasks       sitelens.TaskService
	synthesizer sitelens.Synthesizer
}

// NewAsker creates a new Asker.
func NewAsker(tasks sitelens.TaskService, synthesizer sitelens.Synthesizer) *Asker {
	return &Asker{tasks: tasks, synthesizer: synthesizer}
}

// Ask answers question from the successful results of a completed task.
// Supporting points that name a site by its short identifier are rewritten
// to the full URL of that site.
func (a *Asker) Ask(ctx context.Context, taskID int, question string) (*sitelens.QnARecord, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, sitelens.Errorf(sitelens.EINVALID, "Question is required")
	}

	task, err := a.tasks.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != sitelens.TaskCompleted {
		return nil, sitelens.Errorf(sitelens.EINVALID, "Task is not completed yet")
	}

	sites := task.SiteResults()
	if len(sites) == 0 {
		return nil, sitelens.Errorf(sitelens.EINVALID, "No successful results to answer from")
	}

	answer := a.synthesizer.Answer(ctx, task.Domain, sites, question, task.Instruction)
	urls := make([]string, len(sites))
	for i, s := range sites {
		urls[i] = s.URL
	}
	answer.SupportingPoints = sitelens.RewriteSupportingPoints(answer.SupportingPoints, urls)
	return answer, nil
}
