package gin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleDomains(c *gin.Context) {
	type domainView struct {
		Name          string   `json:"name"`
		Parameters    []string `json:"parameters"`
		AnalysisFocus []string `json:"analysis_focus"`
		Description   string   `json:"description"`
	}

	out := make(map[string]domainView)
	for _, d := range sitelens.Domains() {
		out[d.Key] = domainView{
			Name:          d.Name,
			Parameters:    d.Parameters,
			AnalysisFocus: d.AnalysisFocus,
			Description:   d.Name + " focused analysis",
		}
	}
	c.JSON(http.StatusOK, gin.H{"domains": out})
}

func (s *Server) handleTaskList(c *gin.Context) {
	filter, err := parseTaskFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	tasks, err := s.Tasks.FindTasks(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// parseTaskFilter reads list filters from the query string.
func parseTaskFilter(c *gin.Context) (sitelens.TaskFilter, error) {
	var filter sitelens.TaskFilter

	if v := c.Query("domain"); v != "" {
		filter.Domain = &v
	}
	if v := c.Query("status"); v != "" {
		status := sitelens.TaskStatus(v)
		if !status.Valid() {
			return filter, sitelens.Errorf(sitelens.EINVALID, "invalid status %q", v)
		}
		filter.Status = &status
	}
	if v := c.Query("tags"); v != "" {
		filter.Tag = &v
	}
	for name, dst := range map[string]**bool{
		"starred":   &filter.Starred,
		"archived":  &filter.Archived,
		"scheduled": &filter.Scheduled,
	} {
		if v, ok := c.GetQuery(name); ok {
			b := strings.EqualFold(v, "true")
			*dst = &b
		}
	}

	if v := c.Query("date_from"); v != "" {
		t, err := parseDate(v, false)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := parseDate(v, true)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &t
	}

	filter.Search = c.Query("search")
	filter.SortBy = c.DefaultQuery("sort_by", "created_at")
	filter.SortOrder = sitelens.SortOrder(strings.ToLower(c.DefaultQuery("sort_order", "desc")))

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return filter, sitelens.Errorf(sitelens.EINVALID, "invalid %s %q", name, v)
			}
			*dst = n
		}
	}
	return filter, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain date used
// as an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, sitelens.Errorf(sitelens.EINVALID, "invalid date %q", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

func (s *Server) handleTaskView(c *gin.Context) {
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
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleTaskDelete(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := s.Tasks.DeleteTask(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	s.unschedule(id)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *Server) handleTaskBulkDelete(c *gin.Context) {
	var body struct {
		TaskIDs []int `json:"task_ids"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}
	if len(body.TaskIDs) == 0 {
		writeError(c, sitelens.Errorf(sitelens.EINVALID, "No task IDs provided"))
		return
	}

	n, err := s.Tasks.DeleteTasks(c.Request.Context(), body.TaskIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	for _, id := range body.TaskIDs {
		s.unschedule(id)
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       strconv.Itoa(n) + " task(s) deleted successfully",
		"deleted_count": n,
	})
}

func (s *Server) unschedule(id int) {
	if s.Scheduler != nil {
		s.Scheduler.Unschedule(sitelens.JobID(id))
	}
}

func (s *Server) handleTaskProgress(c *gin.Context) {
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

	progress := sitelens.ProgressEvent{Current: task.CurrentURLIndex, Total: task.TotalURLs}
	if task.Progress != nil {
		progress = *task.Progress
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id":                  task.ID,
		"progress":                 progress,
		"current_url_index":        task.CurrentURLIndex,
		"total_urls":               task.TotalURLs,
		"estimated_time_remaining": task.EstimatedTimeRemaining,
		"status":                   task.Status,
	})
}

func (s *Server) handleTaskAsk(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var body struct {
		Question string `json:"question"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	answer, err := s.Asker.Ask(c.Request.Context(), id, body.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleTaskStar(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	starred, err := s.Tasks.ToggleStar(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "Task unstarred"
	if starred {
		msg = "Task starred"
	}
	c.JSON(http.StatusOK, gin.H{"starred": starred, "message": msg})
}

func (s *Server) handleTaskArchive(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	archived, err := s.Tasks.ToggleArchive(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "Task unarchived"
	if archived {
		msg = "Task archived"
	}
	c.JSON(http.StatusOK, gin.H{"archived": archived, "message": msg})
}

func (s *Server) handleTaskTags(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var body struct {
		Tags []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, sitelens.Errorf(sitelens.EINVALID, "Tags must be a list"))
		return
	}

	tags := sitelens.CleanTags(body.Tags)
	if _, err := s.Tasks.UpdateTask(c.Request.Context(), id, sitelens.TaskUpdate{Tags: tags}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tags updated successfully", "tags": tags})
}
