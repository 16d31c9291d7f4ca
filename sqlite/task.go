package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/sitelens"
)

// Compile-time interface verification.
var _ sitelens.TaskService = (*TaskService)(nil)

const taskColumns = `id, name, urls, instruction, domain, status, tags, starred, archived,
	progress, current_url_index, total_urls, estimated_time_remaining, language,
	results, errors, comparison, comparison_enabled,
	is_scheduled, schedule_type, schedule_time, next_run, created_at, completed_at`

// queryer is satisfied by both *DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TaskService implements sitelens.TaskService using SQLite.
type TaskService struct {
	db  *DB
	now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *DB) *TaskService {
	return &TaskService{db: db, now: time.Now}
}

// CreateTask stores a new task and assigns its ID and creation time.
func (s *TaskService) CreateTask(ctx context.Context, task *sitelens.Task) error {
	if task.Domain == "" {
		task.Domain = sitelens.DefaultDomain
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if task.Status == "" {
		task.Status = sitelens.TaskPending
	}
	if task.Language == "" {
		task.Language = sitelens.DefaultLanguage
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if task.TotalURLs == 0 {
		task.TotalURLs = len(task.URLs)
	}
	task.CreatedAt = s.now().UTC().Truncate(time.Second)

	row, err := encodeTask(task)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (name, urls, instruction, domain, status, tags, starred, archived,
			progress, current_url_index, total_urls, estimated_time_remaining, language,
			results, errors, comparison, comparison_enabled,
			is_scheduled, schedule_type, schedule_time, next_run, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.args()...)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = int(id)
	return nil
}

// FindTaskByID retrieves a task by ID.
func (s *TaskService) FindTaskByID(ctx context.Context, id int) (*sitelens.Task, error) {
	return findTaskByID(ctx, s.db, id)
}

func findTaskByID(ctx context.Context, q queryer, id int) (*sitelens.Task, error) {
	row := q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
	}
	return task, err
}

// FindTasks retrieves tasks matching the filter.
func (s *TaskService) FindTasks(ctx context.Context, filter sitelens.TaskFilter) ([]*sitelens.Task, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + taskColumns + " FROM tasks WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Domain != nil {
		query.WriteString(" AND domain = ?")
		args = append(args, *filter.Domain)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Starred != nil {
		query.WriteString(" AND starred = ?")
		args = append(args, *filter.Starred)
	}
	if filter.Archived != nil {
		query.WriteString(" AND archived = ?")
		args = append(args, *filter.Archived)
	}
	if filter.Scheduled != nil {
		query.WriteString(" AND is_scheduled = ?")
		args = append(args, *filter.Scheduled)
	}
	if filter.DateFrom != nil {
		query.WriteString(" AND created_at >= ?")
		args = append(args, formatTime(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query.WriteString(" AND created_at <= ?")
		args = append(args, formatTime(*filter.DateTo))
	}
	if filter.Tag != nil {
		query.WriteString(" AND EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value = ?)")
		args = append(args, *filter.Tag)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query.WriteString(" AND (name LIKE ? OR urls LIKE ? OR instruction LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	sortBy := "created_at"
	if slices.Contains(sitelens.TaskSortFields, filter.SortBy) {
		sortBy = filter.SortBy
	}
	order := "DESC"
	if strings.EqualFold(string(filter.SortOrder), string(sitelens.SortAsc)) {
		order = "ASC"
	}
	fmt.Fprintf(&query, " ORDER BY %s %s, id %s", sortBy, order, order)

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*sitelens.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update. The read and the write happen in
// one transaction.
func (s *TaskService) UpdateTask(ctx context.Context, id int, upd sitelens.TaskUpdate) (*sitelens.Task, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	task, err := findTaskByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	task.Apply(upd)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	row, err := encodeTask(task)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, urls = ?, instruction = ?, domain = ?, status = ?, tags = ?, starred = ?, archived = ?,
			progress = ?, current_url_index = ?, total_urls = ?, estimated_time_remaining = ?, language = ?,
			results = ?, errors = ?, comparison = ?, comparison_enabled = ?,
			is_scheduled = ?, schedule_type = ?, schedule_time = ?, next_run = ?, created_at = ?, completed_at = ?
		WHERE id = ?
	`, append(row.args(), id)...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask permanently removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
	}

	return nil
}

// DeleteTasks removes every listed task and returns how many existed.
func (s *TaskService) DeleteTasks(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// ToggleStar flips the starred flag and returns its new value.
func (s *TaskService) ToggleStar(ctx context.Context, id int) (bool, error) {
	return s.toggle(ctx, "starred", id)
}

// ToggleArchive flips the archived flag and returns its new value.
func (s *TaskService) ToggleArchive(ctx context.Context, id int) (bool, error) {
	return s.toggle(ctx, "archived", id)
}

// toggle flips a boolean column. column is never caller-supplied.
func (s *TaskService) toggle(ctx context.Context, column string, id int) (bool, error) {
	var v bool
	err := s.db.QueryRowContext(ctx,
		"UPDATE tasks SET "+column+" = 1 - "+column+" WHERE id = ? RETURNING "+column, id,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
	}
	return v, err
}

// taskRow is the column encoding of a task, in taskColumns order minus id.
type taskRow struct {
	name, urls, instruction, domain, status, tags string
	starred, archived                             bool
	progress                                      sql.NullString
	currentURLIndex, totalURLs                    int
	eta                                           sql.NullInt64
	language                                      string
	results, errors                               string
	comparison                                    sql.NullString
	comparisonEnabled                             sql.NullBool
	isScheduled                                   bool
	scheduleType, scheduleTime                    string
	nextRun                                       sql.NullString
	createdAt                                     string
	completedAt                                   sql.NullString
}

func (r taskRow) args() []any {
	return []any{
		r.name, r.urls, r.instruction, r.domain, r.status, r.tags, r.starred, r.archived,
		r.progress, r.currentURLIndex, r.totalURLs, r.eta, r.language,
		r.results, r.errors, r.comparison, r.comparisonEnabled,
		r.isScheduled, r.scheduleType, r.scheduleTime, r.nextRun, r.createdAt, r.completedAt,
	}
}

func encodeTask(t *sitelens.Task) (taskRow, error) {
	row := taskRow{
		name:            t.Name,
		instruction:     t.Instruction,
		domain:          t.Domain,
		status:          string(t.Status),
		starred:         t.Starred,
		archived:        t.Archived,
		currentURLIndex: t.CurrentURLIndex,
		totalURLs:       t.TotalURLs,
		language:        t.Language,
		isScheduled:     t.IsScheduled,
		scheduleType:    t.ScheduleType,
		scheduleTime:    t.ScheduleTime,
		createdAt:       formatTime(t.CreatedAt),
	}

	var err error
	if row.urls, err = encodeJSON(nonNil(t.URLs)); err != nil {
		return row, err
	}
	if row.tags, err = encodeJSON(nonNil(t.Tags)); err != nil {
		return row, err
	}
	if row.results, err = encodeJSON(nonNil(t.Results)); err != nil {
		return row, err
	}
	if row.errors, err = encodeJSON(nonNil(t.Errors)); err != nil {
		return row, err
	}
	if t.Progress != nil {
		s, err := encodeJSON(t.Progress)
		if err != nil {
			return row, err
		}
		row.progress = sql.NullString{String: s, Valid: true}
	}
	if t.Comparison != nil {
		s, err := encodeJSON(t.Comparison)
		if err != nil {
			return row, err
		}
		row.comparison = sql.NullString{String: s, Valid: true}
	}
	if t.EstimatedTimeRemaining != nil {
		row.eta = sql.NullInt64{Int64: int64(*t.EstimatedTimeRemaining), Valid: true}
	}
	if t.ComparisonEnabled != nil {
		row.comparisonEnabled = sql.NullBool{Bool: *t.ComparisonEnabled, Valid: true}
	}
	if t.NextRun != nil {
		row.nextRun = sql.NullString{String: formatTime(*t.NextRun), Valid: true}
	}
	if t.CompletedAt != nil {
		row.completedAt = sql.NullString{String: formatTime(*t.CompletedAt), Valid: true}
	}
	return row, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*sitelens.Task, error) {
	var task sitelens.Task
	var row taskRow
	if err := sc.Scan(
		&task.ID, &row.name, &row.urls, &row.instruction, &row.domain, &row.status, &row.tags,
		&row.starred, &row.archived, &row.progress, &row.currentURLIndex, &row.totalURLs, &row.eta,
		&row.language, &row.results, &row.errors, &row.comparison, &row.comparisonEnabled,
		&row.isScheduled, &row.scheduleType, &row.scheduleTime, &row.nextRun, &row.createdAt, &row.completedAt,
	); err != nil {
		return nil, err
	}

	task.Name = row.name
	task.Instruction = row.instruction
	task.Domain = row.domain
	task.Status = sitelens.TaskStatus(row.status)
	task.Starred = row.starred
	task.Archived = row.archived
	task.CurrentURLIndex = row.currentURLIndex
	task.TotalURLs = row.totalURLs
	task.Language = row.language
	task.IsScheduled = row.isScheduled
	task.ScheduleType = row.scheduleType
	task.ScheduleTime = row.scheduleTime

	if err := decodeJSON(row.urls, "urls", &task.URLs); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.tags, "tags", &task.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.results, "results", &task.Results); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.errors, "errors", &task.Errors); err != nil {
		return nil, err
	}
	if row.progress.Valid {
		if err := decodeJSON(row.progress.String, "progress", &task.Progress); err != nil {
			return nil, err
		}
	}
	if row.comparison.Valid {
		if err := decodeJSON(row.comparison.String, "comparison", &task.Comparison); err != nil {
			return nil, err
		}
	}
	if row.eta.Valid {
		v := int(row.eta.Int64)
		task.EstimatedTimeRemaining = &v
	}
	if row.comparisonEnabled.Valid {
		v := row.comparisonEnabled.Bool
		task.ComparisonEnabled = &v
	}

	var err error
	if task.CreatedAt, err = parseRFC3339(row.createdAt, "created_at"); err != nil {
		return nil, err
	}
	if row.nextRun.Valid {
		t, err := parseRFC3339(row.nextRun.String, "next_run")
		if err != nil {
			return nil, err
		}
		task.NextRun = &t
	}
	if row.completedAt.Valid {
		t, err := parseRFC3339(row.completedAt.String, "completed_at")
		if err != nil {
			return nil, err
		}
		task.CompletedAt = &t
	}
	return &task, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode task: %w", err)
	}
	return string(b), nil
}

func decodeJSON(s, fieldName string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fieldName, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
