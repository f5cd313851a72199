package apper_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskflow/internal/backend/apper"
	"taskflow/internal/recordstore"
)

type captured struct {
	method string
	path   string
	auth   string
	proj   string
	reqID  string
	body   map[string]any
}

func newServer(t *testing.T, status int, reply string, got *captured) *apper.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.proj = r.Header.Get("X-Project-Id")
		got.reqID = r.Header.Get("X-Request-Id")
		data, _ := io.ReadAll(r.Body)
		got.body = nil
		if len(data) > 0 {
			_ = json.Unmarshal(data, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	c, err := apper.New(context.Background(), apper.Options{
		BaseURL:    srv.URL + "/v1/",
		ProjectID:  "proj-1",
		PublicKey:  "pk-abc",
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestFetchRecords(t *testing.T) {
	var got captured
	c := newServer(t, http.StatusOK, `{"success":true,"data":[{"Id":1,"title":"Write docs"}]}`, &got)

	recs, err := c.FetchRecords(context.Background(), "task", recordstore.FetchParams{
		Fields: []string{"title"},
		Where:  []recordstore.Condition{{FieldName: "category", Operator: recordstore.ExactMatch, Values: []string{"design"}}},
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "1" || recs[0]["title"] != "Write docs" {
		t.Errorf("unexpected records %v", recs)
	}

	if got.method != http.MethodPost || got.path != "/v1/projects/proj-1/tables/task/records/fetch" {
		t.Errorf("unexpected request %s %s", got.method, got.path)
	}
	if got.auth != "Bearer pk-abc" {
		t.Errorf("expected bearer auth, got %q", got.auth)
	}
	if got.proj != "proj-1" {
		t.Errorf("expected project header, got %q", got.proj)
	}
	if _, err := uuid.Parse(got.reqID); err != nil {
		t.Errorf("expected uuid request id, got %q", got.reqID)
	}
	if _, ok := got.body["where"]; !ok {
		t.Errorf("expected where in body, got %v", got.body)
	}
}

func TestFetchRecords_DataOnlyReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"records", `{"data":[{"Id":1,"title":"Write docs"},{"Id":2,"title":"Ship release"}]}`, 2},
		{"null data", `{"data":null}`, 0},
		{"empty object", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got captured
			c := newServer(t, http.StatusOK, tt.reply, &got)

			recs, err := c.FetchRecords(context.Background(), "task", recordstore.FetchParams{})
			if err != nil {
				t.Fatalf("fetch failed: %v", err)
			}
			if recs == nil || len(recs) != tt.want {
				t.Errorf("expected %d records, got %v", tt.want, recs)
			}
		})
	}
}

func TestGetRecordByID_DataOnlyReply(t *testing.T) {
	var got captured
	c := newServer(t, http.StatusOK, `{"data":{"Id":1,"title":"Write docs"}}`, &got)

	rec, err := c.GetRecordByID(context.Background(), "task", "1", nil)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.ID() != "1" || rec["title"] != "Write docs" {
		t.Errorf("unexpected record %v", rec)
	}

	c = newServer(t, http.StatusOK, `{}`, &got)
	if _, err := c.GetRecordByID(context.Background(), "task", "1", nil); !errors.Is(err, recordstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing data, got %v", err)
	}
}

func TestFetchRecords_Unsuccessful(t *testing.T) {
	var got captured
	c := newServer(t, http.StatusOK, `{"success":false,"message":"table missing"}`, &got)

	_, err := c.FetchRecords(context.Background(), "task", recordstore.FetchParams{})
	if err == nil || err.Error() != "table missing" {
		t.Errorf("expected server message, got %v", err)
	}
}

func TestGetRecordByID_NotFound(t *testing.T) {
	var got captured
	c := newServer(t, http.StatusNotFound, `{"success":false}`, &got)

	_, err := c.GetRecordByID(context.Background(), "task", "42", nil)
	if !errors.Is(err, recordstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got.method != http.MethodGet || got.path != "/v1/projects/proj-1/tables/task/records/42" {
		t.Errorf("unexpected request %s %s", got.method, got.path)
	}
}

func TestCreateRecords(t *testing.T) {
	var got captured
	c := newServer(t, http.StatusOK,
		`{"success":true,"results":[{"success":false,"errors":[{"fieldLabel":"Priority","message":"unknown value"}]}]}`, &got)

	res, err := c.CreateRecords(context.Background(), "task", []recordstore.Record{{"title": "x"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !res.Success || len(res.Results) != 1 || res.Results[0].Success {
		t.Fatalf("unexpected result %+v", res)
	}
	if errs := res.Results[0].Errors; len(errs) != 1 || errs[0].FieldLabel != "Priority" {
		t.Errorf("unexpected field errors %v", errs)
	}
	recs, ok := got.body["records"].([]any)
	if got.method != http.MethodPost || !ok || len(recs) != 1 {
		t.Errorf("unexpected request %s body %v", got.method, got.body)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	var got captured
	c := newServer(t, http.StatusOK, `{"success":true,"results":[{"success":true}]}`, &got)

	if _, err := c.UpdateRecords(context.Background(), "task", []recordstore.Record{{"Id": "1"}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.method != http.MethodPut {
		t.Errorf("expected PUT, got %s", got.method)
	}

	res, err := c.DeleteRecords(context.Background(), "task", []string{"1", "2"})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !res.Success {
		t.Errorf("expected success, got %+v", res)
	}
	ids, _ := got.body["RecordIds"].([]any)
	if got.method != http.MethodDelete || len(ids) != 2 {
		t.Errorf("unexpected request %s body %v", got.method, got.body)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		reply  string
		want   string
	}{
		{http.StatusInternalServerError, `{"message":"boom"}`, "status 500: boom"},
		{http.StatusBadGateway, `upstream down`, "status 502: upstream down"},
		{http.StatusUnauthorized, ``, "unauthorized"},
	}
	for _, tt := range tests {
		var got captured
		c := newServer(t, tt.status, tt.reply, &got)
		_, err := c.FetchRecords(context.Background(), "task", recordstore.FetchParams{})
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("status %d: expected %q, got %v", tt.status, tt.want, err)
		}
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := apper.New(context.Background(), apper.Options{
		BaseURL:    srv.URL,
		ProjectID:  "p",
		PublicKey:  "k",
		Timeout:    50 * time.Millisecond,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.FetchRecords(context.Background(), "task", recordstore.FetchParams{})
	if err == nil || err.Error() != "request timed out" {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := apper.New(context.Background(), apper.Options{BaseURL: "http://x"}); err == nil {
		t.Error("expected error without credentials")
	}
}
