package gin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/sitelens"
	"github.com/gin-gonic/gin"
)

type scrapeRequest struct {
	TaskName         string   `json:"task_name"`
	URLs             []string `json:"urls"`
	Instruction      string   `json:"instruction"`
	Domain           string   `json:"domain"`
	Tags             []string `json:"tags"`
	EnableComparison *bool    `json:"enable_comparison"`
	IsScheduled      bool     `json:"is_scheduled"`
	ScheduleType     string   `json:"schedule_type"`
	ScheduleTime     string   `json:"schedule_time"`
}

func (r scrapeRequest) taskRequest() sitelens.TaskRequest {
	return sitelens.TaskRequest{
		Name:             r.TaskName,
		URLs:             r.URLs,
		Instruction:      r.Instruction,
		Domain:           r.Domain,
		Tags:             r.Tags,
		EnableComparison: r.EnableComparison,
	}
}

func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if len(sitelens.CleanURLs(req.URLs)) == 0 {
		writeError(c, sitelens.Errorf(sitelens.EINVALID, "No URLs provided"))
		return
	}

	if req.IsScheduled {
		s.schedule(c, req)
		return
	}

	ctx := c.Request.Context()
	task, err := s.Runner.Create(ctx, req.taskRequest())
	if err != nil {
		writeError(c, err)
		return
	}

	// A started batch runs to completion even if the client goes away.
	task, err = s.Runner.Run(context.WithoutCancel(ctx), task.ID, sitelens.RunOptions{})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":    task.ID,
		"status":     task.Status,
		"results":    task.Results,
		"errors":     task.Errors,
		"comparison": task.Comparison,
		"domain":     task.Domain,
		"language":   task.Language,
	})
}

func (s *Server) handleSchedule(c *gin.Context) {
	req := scrapeRequest{TaskName: "Scheduled Task"}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if len(sitelens.CleanURLs(req.URLs)) == 0 {
		writeError(c, sitelens.Errorf(sitelens.EINVALID, "No URLs provided"))
		return
	}
	s.schedule(c, req)
}

// schedule creates a pending task and registers it with the scheduler.
func (s *Server) schedule(c *gin.Context, req scrapeRequest) {
	if s.Scheduler == nil {
		writeError(c, sitelens.Errorf(sitelens.EINTERNAL, "scheduler not configured"))
		return
	}
	if strings.TrimSpace(req.ScheduleType) == "" || strings.TrimSpace(req.ScheduleTime) == "" {
		writeError(c, sitelens.Errorf(sitelens.EINVALID, "Schedule type and time are required"))
		return
	}
	trigger, err := sitelens.ParseTrigger(req.ScheduleType, req.ScheduleTime)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	tr := req.taskRequest()
	tr.Schedule = &trigger
	task, err := s.Runner.Create(ctx, tr)
	if err != nil {
		writeError(c, err)
		return
	}

	next, err := s.Scheduler.Schedule(ctx, sitelens.ScheduledJob{
		ID:          sitelens.JobID(task.ID),
		TaskID:      task.ID,
		Trigger:     trigger,
		URLs:        task.URLs,
		Instruction: task.Instruction,
		Domain:      task.Domain,
	})
	if err != nil {
		// Do not leave a task behind that will never run.
		_ = s.Tasks.DeleteTask(context.WithoutCancel(ctx), task.ID)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":       task.ID,
		"message":       "Task scheduled successfully",
		"schedule_type": trigger.Kind,
		"next_run":      next,
	})
}

// lineList is a list given either as a JSON array or as a single string
// with one item per line.
type lineList []string

func (l *lineList) UnmarshalJSON(b []byte) error {
	items, err := decodeList(b, "\n")
	*l = items
	return err
}

// commaList is a list given either as a JSON array or as a single
// comma-separated string.
type commaList []string

func (l *commaList) UnmarshalJSON(b []byte) error {
	items, err := decodeList(b, ",")
	*l = items
	return err
}

func decodeList(b []byte, sep string) ([]string, error) {
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, errors.New("expected a list or a string")
		}
		items = strings.Split(s, sep)
	}
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Server) handleTaskRerun(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var body struct {
		TaskName         *string    `json:"task_name"`
		URLs             lineList   `json:"urls"`
		Instruction      *string    `json:"instruction"`
		Domain           *string    `json:"domain"`
		Tags             *commaList `json:"tags"`
		EnableComparison *bool      `json:"enable_comparison"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	req := sitelens.RerunRequest{
		Name:             body.TaskName,
		URLs:             body.URLs,
		Instruction:      body.Instruction,
		Domain:           body.Domain,
		EnableComparison: body.EnableComparison,
	}
	if body.Tags != nil {
		req.Tags = *body.Tags
	}

	task, err := s.Runner.Rerun(context.WithoutCancel(c.Request.Context()), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": task.ID,
		"message": "Analysis re-run completed successfully",
		"status":  task.Status,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	task, err := s.Tasks.FindTaskByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(task.Results) == 0 {
		writeError(c, sitelens.Errorf(sitelens.ENOTFOUND, "No results available"))
		return
	}

	format, err := sitelens.ParseExportFormat(c.Param("format"))
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := sitelens.Export(&buf, format, task.Results); err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sitelens.ExportFilename(task.ID, format)))
	c.Data(http.StatusOK, format.ContentType()+"; charset=utf-8", buf.Bytes())
}
