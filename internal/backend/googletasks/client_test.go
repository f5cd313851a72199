package googletasks_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"

	"taskflow/internal/backend/googletasks"
	"taskflow/internal/recordstore"
)

var tables = googletasks.Tables{Tasks: "task", Categories: "category"}

type fakeAPI struct {
	inserted map[string]any
	insertTo string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[{"id":"L1","title":"Work"},{"id":"L2","title":"Home"}]}`)
	})
	mux.HandleFunc("/tasks/v1/lists/L1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			f.insertTo = "L1"
			_ = json.NewDecoder(r.Body).Decode(&f.inserted)
			io.WriteString(w, `{"id":"T9","title":"New","status":"needsAction"}`)
			return
		}
		io.WriteString(w, `{"items":[{"id":"T1","title":"Write docs","status":"needsAction",
			"notes":"Draft\n\n---\npriority: high\ntags: docs","due":"2026-03-12T00:00:00.000Z"}]}`)
	})
	mux.HandleFunc("/tasks/v1/lists/L2/tasks", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[{"id":"T2","title":"Buy milk","status":"completed"}]}`)
	})
	mux.HandleFunc("/tasks/v1/lists/@default/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.insertTo = "@default"
		_ = json.NewDecoder(r.Body).Decode(&f.inserted)
		io.WriteString(w, `{"id":"T10","title":"New","status":"needsAction"}`)
	})
	return mux
}

func newClient(t *testing.T, api *fakeAPI) *googletasks.Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	c, err := googletasks.NewWithHTTPClient(context.Background(), srv.Client(), tables, option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestFetchRecords_Categories(t *testing.T) {
	c := newClient(t, &fakeAPI{})

	recs, err := c.FetchRecords(context.Background(), "category", recordstore.FetchParams{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(recs) != 2 || recs[0].ID() != "L1" || recs[0]["Name"] != "Work" {
		t.Errorf("unexpected records %v", recs)
	}
}

func TestFetchRecords_Tasks(t *testing.T) {
	c := newClient(t, &fakeAPI{})

	recs, err := c.FetchRecords(context.Background(), "task", recordstore.FetchParams{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 tasks, got %v", recs)
	}

	first := recs[0]
	want := map[string]string{
		"Id":          "L1/T1",
		"title":       "Write docs",
		"description": "Draft",
		"priority":    "high",
		"Tags":        "docs",
		"due_date":    "2026-03-12",
		"category":    "L1",
		"completed":   "",
	}
	for k, v := range want {
		if got := recordstore.FieldString(first[k]); got != v {
			t.Errorf("%s: expected %q, got %q", k, v, got)
		}
	}
	if recs[1]["completed"] != "completed" {
		t.Errorf("expected completed task, got %v", recs[1])
	}
}

func TestFetchRecords_Filtered(t *testing.T) {
	c := newClient(t, &fakeAPI{})

	recs, err := c.FetchRecords(context.Background(), "task", recordstore.FetchParams{
		Where: []recordstore.Condition{{FieldName: "category", Operator: recordstore.ExactMatch, Values: []string{"L2"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID() != "L2/T2" {
		t.Errorf("unexpected records %v", recs)
	}
}

func TestCreateRecords_Task(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(t, api)

	res, err := c.CreateRecords(context.Background(), "task", []recordstore.Record{{
		"title":    "New",
		"priority": "low",
		"category": "L1",
		"due_date": "2026-04-01",
	}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !res.Success || len(res.Results) != 1 || !res.Results[0].Success {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := res.Results[0].Data.ID(); got != "L1/T9" {
		t.Errorf("expected id L1/T9, got %s", got)
	}
	if api.insertTo != "L1" {
		t.Errorf("expected insert into L1, got %s", api.insertTo)
	}
	if api.inserted["notes"] != "---\npriority: low" || api.inserted["due"] != "2026-04-01T00:00:00.000Z" {
		t.Errorf("unexpected inserted task %v", api.inserted)
	}
}

func TestCreateRecords_UnknownCategoryUsesDefaultList(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(t, api)

	res, err := c.CreateRecords(context.Background(), "task", []recordstore.Record{{"title": "New", "category": "development"}})
	if err != nil || !res.Results[0].Success {
		t.Fatalf("create failed: %+v %v", res, err)
	}
	if api.insertTo != "@default" {
		t.Errorf("expected insert into default list, got %s", api.insertTo)
	}
}

func TestUnknownTable(t *testing.T) {
	c := newClient(t, &fakeAPI{})
	if _, err := c.FetchRecords(context.Background(), "other", recordstore.FetchParams{}); err == nil {
		t.Error("expected error for unknown table")
	}
}
