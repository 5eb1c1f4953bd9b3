package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newTestClient(handler http.HandlerFunc) (*httptest.Server, *clientImpl) {
	ts := httptest.NewServer(handler)
	c := newClientWithBaseURL("test-token", "acme", 3, ts.Client(), ts.URL)
	return ts, c
}

func decodeRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return req
}

func respond(w http.ResponseWriter, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"data":` + data + `}`))
}

func TestProjectID_ResolvesAndCaches(t *testing.T) {
	calls := 0
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token header, got %q", got)
		}
		req := decodeRequest(t, r)
		if req.Variables["org"] != "acme" || req.Variables["number"] != float64(3) {
			t.Errorf("unexpected variables: %v", req.Variables)
		}
		calls++
		respond(w, `{"organization":{"projectV2":{"id":"PROJ_1"}}}`)
	})
	defer ts.Close()

	for i := 0; i < 2; i++ {
		id, err := client.ProjectID(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "PROJ_1" {
			t.Fatalf("expected PROJ_1, got %q", id)
		}
	}
	if calls != 1 {
		t.Errorf("expected project ID cached after one call, got %d calls", calls)
	}
}

func TestProjectID_NotFound(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		respond(w, `{"organization":{"projectV2":{"id":""}}}`)
	})
	defer ts.Close()

	if _, err := client.ProjectID(context.Background()); err == nil {
		t.Fatal("expected error for missing project")
	}
}

func TestListItems_ParsesContentKinds(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if strings.Contains(req.Query, "projectV2(number:") {
			respond(w, `{"organization":{"projectV2":{"id":"PROJ_1"}}}`)
			return
		}
		respond(w, `{"node":{"items":{
			"pageInfo":{"hasNextPage":false,"endCursor":""},
			"nodes":[
				{
					"id":"ITEM_1",
					"fieldValues":{"nodes":[
						{"field":{"name":"Status"},"name":"In progress"},
						{"field":{"name":"End date"},"date":"2026-10-01"}
					]},
					"content":{
						"__typename":"Issue","id":"C1","title":"Real issue","body":"body text",
						"assignees":{"nodes":[{"login":"alice"}]},
						"labels":{"nodes":[{"name":"bug"},{"name":"infra"}]},
						"repository":{"name":"api","owner":{"login":"acme"}}
					}
				},
				{
					"id":"ITEM_2",
					"fieldValues":{"nodes":[]},
					"content":{
						"__typename":"DraftIssue","id":"D1","title":"Draft thing","body":"",
						"assignees":{"nodes":[{"login":"ghost"}]}
					}
				}
			]
		}}}`)
	})
	defer ts.Close()

	items, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	issue := items[0]
	if issue.ContentKind != ContentIssue || issue.ContentID != "C1" {
		t.Errorf("unexpected issue content: %+v", issue)
	}
	if issue.Status != "In progress" || issue.DueDate != "2026-10-01" {
		t.Errorf("unexpected field values: %+v", issue)
	}
	if issue.Assignee != "alice" || len(issue.Labels) != 2 {
		t.Errorf("unexpected assignee/labels: %+v", issue)
	}
	if issue.RepoOwner != "acme" || issue.RepoName != "api" {
		t.Errorf("unexpected repository: %+v", issue)
	}

	draft := items[1]
	if draft.ContentKind != ContentDraft || draft.Title != "Draft thing" {
		t.Errorf("unexpected draft: %+v", draft)
	}
	// Assignees echoed on drafts are not authoritative.
	if draft.Assignee != "" {
		t.Errorf("expected draft assignee dropped, got %q", draft.Assignee)
	}
}

func TestListItems_Pagination(t *testing.T) {
	page := 0
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if strings.Contains(req.Query, "projectV2(number:") {
			respond(w, `{"organization":{"projectV2":{"id":"PROJ_1"}}}`)
			return
		}
		page++
		if page == 1 {
			if _, ok := req.Variables["cursor"]; ok {
				t.Error("expected no cursor on first page")
			}
			respond(w, `{"node":{"items":{
				"pageInfo":{"hasNextPage":true,"endCursor":"CUR_1"},
				"nodes":[{"id":"ITEM_1","fieldValues":{"nodes":[]},"content":{"__typename":"DraftIssue","id":"D1","title":"One"}}]
			}}}`)
			return
		}
		if req.Variables["cursor"] != "CUR_1" {
			t.Errorf("expected cursor CUR_1, got %v", req.Variables["cursor"])
		}
		respond(w, `{"node":{"items":{
			"pageInfo":{"hasNextPage":false,"endCursor":""},
			"nodes":[{"id":"ITEM_2","fieldValues":{"nodes":[]},"content":{"__typename":"DraftIssue","id":"D2","title":"Two"}}]
		}}}`)
	})
	defer ts.Close()

	items, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ItemID != "ITEM_1" || items[1].ItemID != "ITEM_2" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestGetFields_BuildsOptionMap(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if strings.Contains(req.Query, "projectV2(number:") {
			respond(w, `{"organization":{"projectV2":{"id":"PROJ_1"}}}`)
			return
		}
		respond(w, `{"node":{"fields":{"nodes":[
			{"id":"F1","name":"Title","dataType":"TITLE"},
			{"id":"F2","name":"Status","dataType":"SINGLE_SELECT","options":[
				{"id":"O1","name":"Todo"},{"id":"O2","name":"In progress"}
			]},
			{"id":"F3","name":"End date","dataType":"DATE"},
			{}
		]}}}`)
	})
	defer ts.Close()

	fields, err := client.GetFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 named fields, got %d", len(fields))
	}
	status := fields["Status"]
	if status.ID != "F2" || status.Options["In progress"] != "O2" {
		t.Errorf("unexpected status field: %+v", status)
	}
	if fields["End date"].DataType != "DATE" {
		t.Errorf("unexpected date field: %+v", fields["End date"])
	}
}

func TestResolveUserID_NotFoundIsNotAnError(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a User"}]}`))
	})
	defer ts.Close()

	id, err := client.ResolveUserID(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("expected missing user to resolve to empty ID, got error: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty ID, got %q", id)
	}
}

func TestResolveLabelIDs_DropsUnresolvable(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req.Variables["label"] == "bug" {
			respond(w, `{"repository":{"label":{"id":"L_BUG"}}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"repository":{"label":null}},"errors":[{"type":"NOT_FOUND","message":"no such label"}]}`))
	})
	defer ts.Close()

	ids, err := client.ResolveLabelIDs(context.Background(), "acme", "api", []string{"bug", "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "L_BUG" {
		t.Errorf("expected only L_BUG, got %v", ids)
	}
}

func TestGraphQLErrorsSurface(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":null,"errors":[{"type":"FORBIDDEN","message":"token scope missing"}]}`))
	})
	defer ts.Close()

	_, err := client.ProjectID(context.Background())
	if err == nil || !strings.Contains(err.Error(), "token scope missing") {
		t.Fatalf("expected graphql error surfaced, got %v", err)
	}
}

func TestGraphQLHTTPErrorSurface(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer ts.Close()

	_, err := client.ProjectID(context.Background())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestAddDraftItem(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if strings.Contains(req.Query, "projectV2(number:") {
			respond(w, `{"organization":{"projectV2":{"id":"PROJ_1"}}}`)
			return
		}
		if req.Variables["projectId"] != "PROJ_1" || req.Variables["title"] != "New draft" {
			t.Errorf("unexpected variables: %v", req.Variables)
		}
		respond(w, `{"addProjectV2DraftIssue":{"projectItem":{"id":"ITEM_9"}}}`)
	})
	defer ts.Close()

	id, err := client.AddDraftItem(context.Background(), "New draft", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ITEM_9" {
		t.Errorf("expected ITEM_9, got %q", id)
	}
}

func TestUnarchiveItem_FetchesRestoredState(t *testing.T) {
	ts, client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		switch {
		case strings.Contains(req.Query, "projectV2(number:"):
			respond(w, `{"organization":{"projectV2":{"id":"PROJ_1"}}}`)
		case strings.Contains(req.Query, "unarchiveProjectV2Item"):
			respond(w, `{"unarchiveProjectV2Item":{"item":{"id":"ITEM_5"}}}`)
		default:
			respond(w, `{"node":{
				"id":"ITEM_5",
				"fieldValues":{"nodes":[{"field":{"name":"Status"},"name":"Done"}]},
				"content":{"__typename":"Issue","id":"C5","title":"Restored",
					"repository":{"name":"api","owner":{"login":"acme"}}}
			}}`)
		}
	})
	defer ts.Close()

	item, err := client.UnarchiveItem(context.Background(), "ITEM_5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ItemID != "ITEM_5" || item.ContentKind != ContentIssue || item.ContentID != "C5" {
		t.Errorf("unexpected restored item: %+v", item)
	}
	if item.Status != "Done" {
		t.Errorf("expected status preserved, got %q", item.Status)
	}
}
