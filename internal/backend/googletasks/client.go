// Package googletasks implements recordstore.Store on the Google Tasks API.
// The category table maps to task lists and the task table to the tasks of
// every list.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskflow/internal/config"
	"taskflow/internal/mapper"
	"taskflow/internal/recordstore"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of items per page.
	PageSize = 100

	// APITimeout is the timeout for a store operation.
	APITimeout = 10 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Tables names the record tables served by the client.
type Tables struct {
	Tasks      string
	Categories string
}

// Client implements recordstore.Store using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	tables  Tables
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	// Create token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	c, err := NewWithHTTPClient(ctx, httpClient, Tables{
		Tasks:      cfg.Settings.TaskTable,
		Categories: cfg.Settings.CategoryTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.timeout = cfg.Settings.Timeout.Duration
	c.log = log.With().Str("backend", "googletasks").Logger()
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, tables Tables, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, tables: tables, timeout: APITimeout, log: zerolog.Nop()}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// FetchRecords returns every list or every task, filtered client side.
func (c *Client) FetchRecords(ctx context.Context, table string, p recordstore.FetchParams) ([]recordstore.Record, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var all []recordstore.Record
	var err error
	switch table {
	case c.tables.Categories:
		all, err = c.listRecords(ctx)
	case c.tables.Tasks:
		all, err = c.taskRecords(ctx)
	default:
		return nil, unknownTable(table)
	}
	if err != nil {
		return nil, err
	}

	result := []recordstore.Record{}
	for _, r := range all {
		if recordstore.Matches(r, p) {
			result = append(result, recordstore.Project(r, p.Fields))
		}
	}
	return result, nil
}

// GetRecordByID returns one list or task.
func (c *Client) GetRecordByID(ctx context.Context, table, id string, fields []string) (recordstore.Record, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	switch table {
	case c.tables.Categories:
		list, err := c.svc.Tasklists.Get(id).Context(ctx).Do()
		if err != nil {
			return nil, wrapError(err)
		}
		return recordstore.Project(listRecord(list), fields), nil
	case c.tables.Tasks:
		listID, taskID, ok := splitID(id)
		if !ok {
			return nil, recordstore.ErrNotFound
		}
		t, err := c.svc.Tasks.Get(listID, taskID).Context(ctx).Do()
		if err != nil {
			return nil, wrapError(err)
		}
		return recordstore.Project(taskRecord(listID, t), fields), nil
	}
	return nil, unknownTable(table)
}

// CreateRecords inserts lists or tasks.
func (c *Client) CreateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var create func(context.Context, recordstore.Record) (recordstore.Record, error)
	switch table {
	case c.tables.Categories:
		create = c.createList
	case c.tables.Tasks:
		lists, err := c.listIDs(ctx)
		if err != nil {
			return recordstore.WriteResult{}, err
		}
		create = func(ctx context.Context, r recordstore.Record) (recordstore.Record, error) {
			listID := recordstore.FieldString(r[mapper.FieldCategory])
			if !lists[listID] {
				listID = DefaultListID
			}
			return c.insertTask(ctx, listID, r)
		}
	default:
		return recordstore.WriteResult{}, unknownTable(table)
	}
	return writeEach(ctx, records, create), nil
}

// UpdateRecords updates lists or tasks. A task whose category changes is
// moved by inserting it into the new list and deleting the original.
func (c *Client) UpdateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	switch table {
	case c.tables.Categories:
		return writeEach(ctx, records, c.updateList), nil
	case c.tables.Tasks:
		return writeEach(ctx, records, c.updateTask), nil
	}
	return recordstore.WriteResult{}, unknownTable(table)
}

// DeleteRecords deletes lists or tasks by id.
func (c *Client) DeleteRecords(ctx context.Context, table string, ids []string) (recordstore.DeleteResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var del func(string) error
	switch table {
	case c.tables.Categories:
		del = func(id string) error {
			return c.svc.Tasklists.Delete(id).Context(ctx).Do()
		}
	case c.tables.Tasks:
		del = func(id string) error {
			listID, taskID, ok := splitID(id)
			if !ok {
				return recordstore.ErrNotFound
			}
			return c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
		}
	default:
		return recordstore.DeleteResult{}, unknownTable(table)
	}

	results := make([]recordstore.RecordResult, 0, len(ids))
	for _, id := range ids {
		if err := del(id); err != nil {
			c.log.Debug().Err(err).Str("id", id).Msg("delete failed")
			results = append(results, recordstore.RecordResult{Message: wrapError(err).Error()})
			continue
		}
		results = append(results, recordstore.RecordResult{Success: true, Data: recordstore.Record{recordstore.FieldID: id}})
	}
	return recordstore.DeleteResult{Success: true, Results: results}, nil
}

func writeEach(ctx context.Context, records []recordstore.Record, write func(context.Context, recordstore.Record) (recordstore.Record, error)) recordstore.WriteResult {
	results := make([]recordstore.RecordResult, 0, len(records))
	for _, r := range records {
		data, err := write(ctx, r)
		if err != nil {
			results = append(results, recordstore.RecordResult{Message: wrapError(err).Error()})
			continue
		}
		results = append(results, recordstore.RecordResult{Success: true, Data: data})
	}
	return recordstore.WriteResult{Success: true, Results: results}
}

func (c *Client) allLists(ctx context.Context) ([]*tasks.TaskList, error) {
	var lists []*tasks.TaskList
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		lists = append(lists, resp.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return lists, nil
}

func (c *Client) listIDs(ctx context.Context) (map[string]bool, error) {
	lists, err := c.allLists(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(lists))
	for _, l := range lists {
		ids[l.Id] = true
	}
	return ids, nil
}

func (c *Client) listRecords(ctx context.Context) ([]recordstore.Record, error) {
	lists, err := c.allLists(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]recordstore.Record, 0, len(lists))
	for _, l := range lists {
		recs = append(recs, listRecord(l))
	}
	return recs, nil
}

func (c *Client) taskRecords(ctx context.Context) ([]recordstore.Record, error) {
	lists, err := c.allLists(ctx)
	if err != nil {
		return nil, err
	}
	var recs []recordstore.Record
	for _, l := range lists {
		err := c.svc.Tasks.List(l.Id).
			MaxResults(PageSize).
			ShowCompleted(true).
			ShowHidden(true).
			ShowDeleted(false).
			Pages(ctx, func(resp *tasks.Tasks) error {
				for _, t := range resp.Items {
					recs = append(recs, taskRecord(l.Id, t))
				}
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list: %s: %w", l.Title, wrapError(err))
		}
	}
	return recs, nil
}

func (c *Client) createList(ctx context.Context, r recordstore.Record) (recordstore.Record, error) {
	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{
		Title: recordstore.FieldString(r[recordstore.FieldName]),
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return listRecord(list), nil
}

func (c *Client) updateList(ctx context.Context, r recordstore.Record) (recordstore.Record, error) {
	list, err := c.svc.Tasklists.Patch(r.ID(), &tasks.TaskList{
		Title: recordstore.FieldString(r[recordstore.FieldName]),
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return listRecord(list), nil
}

func (c *Client) insertTask(ctx context.Context, listID string, r recordstore.Record) (recordstore.Record, error) {
	t, err := c.svc.Tasks.Insert(listID, taskFromRecord(r)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return taskRecord(listID, t), nil
}

func (c *Client) updateTask(ctx context.Context, r recordstore.Record) (recordstore.Record, error) {
	listID, taskID, ok := splitID(r.ID())
	if !ok {
		return nil, recordstore.ErrNotFound
	}
	current, err := c.svc.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	merged := taskRecord(listID, current)
	for k, v := range r {
		merged[k] = v
	}

	target := recordstore.FieldString(merged[mapper.FieldCategory])
	if target != "" && target != listID {
		moved, err := c.insertTask(ctx, target, merged)
		if err != nil {
			return nil, err
		}
		if err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
			c.log.Warn().Err(err).Str("id", r.ID()).Msg("moved task but failed to delete original")
		}
		return moved, nil
	}

	t := taskFromRecord(merged)
	t.Id = taskID
	updated, err := c.svc.Tasks.Update(listID, taskID, t).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return taskRecord(listID, updated), nil
}

func listRecord(l *tasks.TaskList) recordstore.Record {
	return recordstore.Record{
		recordstore.FieldID:         l.Id,
		recordstore.FieldName:       l.Title,
		recordstore.FieldModifiedOn: l.Updated,
	}
}

func taskRecord(listID string, t *tasks.Task) recordstore.Record {
	notes := ParseNotes(t.Notes)
	completed := ""
	if t.Status == statusCompleted {
		completed = statusCompleted
	}
	return recordstore.Record{
		recordstore.FieldID:         joinID(listID, t.Id),
		recordstore.FieldName:       t.Title,
		recordstore.FieldTags:       notes.Tags,
		recordstore.FieldModifiedOn: t.Updated,
		mapper.FieldTitle:           t.Title,
		mapper.FieldDescription:     notes.Description,
		mapper.FieldCompleted:       completed,
		mapper.FieldDueDate:         dueDate(t.Due),
		mapper.FieldPriority:        notes.Priority,
		mapper.FieldCategory:        listID,
	}
}

func taskFromRecord(r recordstore.Record) *tasks.Task {
	title := recordstore.FieldString(r[mapper.FieldTitle])
	if title == "" {
		title = recordstore.FieldString(r[recordstore.FieldName])
	}
	t := &tasks.Task{
		Title: title,
		Notes: Notes{
			Description: recordstore.FieldString(r[mapper.FieldDescription]),
			Priority:    recordstore.FieldString(r[mapper.FieldPriority]),
			Tags:        recordstore.FieldString(r[recordstore.FieldTags]),
		}.String(),
		Status: statusNeedsAction,
	}
	if strings.Contains(recordstore.FieldString(r[mapper.FieldCompleted]), statusCompleted) {
		t.Status = statusCompleted
	} else {
		t.NullFields = append(t.NullFields, "Completed")
	}
	if due := recordstore.FieldString(r[mapper.FieldDueDate]); due != "" {
		if d, err := time.Parse(mapper.DateLayout, due); err == nil {
			t.Due = d.Format("2006-01-02T15:04:05.000Z")
		}
	}
	return t
}

// dueDate reduces an RFC 3339 due timestamp to its date. The API keeps only
// the date portion of due.
func dueDate(due string) string {
	if len(due) < len(mapper.DateLayout) {
		return ""
	}
	return due[:len(mapper.DateLayout)]
}

func joinID(listID, taskID string) string {
	return listID + "/" + taskID
}

func splitID(id string) (listID, taskID string, ok bool) {
	listID, taskID, ok = strings.Cut(id, "/")
	return listID, taskID, ok && listID != "" && taskID != ""
}

func unknownTable(table string) error {
	return fmt.Errorf("unknown table: %s", table)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, recordstore.ErrNotFound) {
		return err
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: taskflow login)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return recordstore.ErrNotFound
	}

	return err
}
