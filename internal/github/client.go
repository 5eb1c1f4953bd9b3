package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultGraphQLURL = "https://api.github.com/graphql"
	userAgent         = "tasksmd-sync/1.0"
)

// Client defines the interface for interacting with a GitHub Projects v2
// board via the GraphQL API.
type Client interface {
	Org() string

	GetFields(ctx context.Context) (map[string]ProjectField, error)
	ListItems(ctx context.Context) ([]*ProjectItem, error)

	AddDraftItem(ctx context.Context, title, body string) (string, error)
	CreateIssue(ctx context.Context, owner, repo, title, body string) (string, error)
	AddItemToProject(ctx context.Context, contentID string) (string, error)

	UpdateItemFieldText(ctx context.Context, itemID, fieldID, value string) error
	UpdateItemFieldSingleSelect(ctx context.Context, itemID, fieldID, optionID string) error
	UpdateItemFieldDate(ctx context.Context, itemID, fieldID, date string) error

	UpdateDraftItem(ctx context.Context, draftID, title, body string) error
	UpdateIssue(ctx context.Context, issueID, title, body string) error
	SetIssueAssignees(ctx context.Context, issueID string, userIDs []string) error
	SetIssueLabels(ctx context.Context, issueID string, labelIDs []string) error

	ResolveUserID(ctx context.Context, login string) (string, error)
	ResolveLabelIDs(ctx context.Context, owner, repo string, names []string) ([]string, error)

	ArchiveItem(ctx context.Context, itemID string) error
	UnarchiveItem(ctx context.Context, itemID string) (*ProjectItem, error)
	ReopenIssue(ctx context.Context, issueID string) error
}

// clientImpl is the concrete implementation of Client. Project, field, and
// repository lookups are cached on the client object, so a single client
// instance serves one board for the lifetime of a run.
type clientImpl struct {
	token         string
	org           string
	projectNumber int
	httpClient    *http.Client
	baseURL       string

	mu        sync.Mutex
	projectID string
	fields    map[string]ProjectField
	repoIDs   map[string]string // "owner/name" -> repository node ID
}

// NewClient creates a new Projects v2 client for the given org and project number.
func NewClient(token, org string, projectNumber int) Client {
	return &clientImpl{
		token:         token,
		org:           org,
		projectNumber: projectNumber,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       defaultGraphQLURL,
		repoIDs:       make(map[string]string),
	}
}

// newClientWithBaseURL is an internal constructor for testing with httptest servers.
func newClientWithBaseURL(token, org string, projectNumber int, httpClient *http.Client, baseURL string) *clientImpl {
	return &clientImpl{
		token:         token,
		org:           org,
		projectNumber: projectNumber,
		httpClient:    httpClient,
		baseURL:       baseURL,
		repoIDs:       make(map[string]string),
	}
}

// Org returns the organization login the client was constructed for.
func (c *clientImpl) Org() string {
	return c.org
}

// graphQLError is a single entry in a GraphQL response's errors array.
type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// graphql executes a query or mutation and decodes the "data" object into
// out. Any GraphQL-level error fails the call.
func (c *clientImpl) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.run(ctx, query, vars, out, false)
}

// graphqlLenient behaves like graphql but tolerates NOT_FOUND errors,
// decoding whatever partial data the server returned. Used by the resolver
// operations, where a missing user or label is an expected outcome.
func (c *clientImpl) graphqlLenient(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.run(ctx, query, vars, out, true)
}

func (c *clientImpl) run(ctx context.Context, query string, vars map[string]any, out any, lenient bool) error {
	payload := map[string]any{"query": query}
	if len(vars) > 0 {
		payload["variables"] = vars
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("graphql: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("graphql: decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		fatal := envelope.Errors
		if lenient {
			fatal = nil
			for _, e := range envelope.Errors {
				if e.Type != "NOT_FOUND" {
					fatal = append(fatal, e)
				}
			}
		}
		if len(fatal) > 0 {
			msgs := make([]string, len(fatal))
			for i, e := range fatal {
				msgs[i] = e.Message
			}
			return fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("graphql: decode data: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Project discovery
// ---------------------------------------------------------------------------

const projectIDQuery = `
query($org: String!, $number: Int!) {
  organization(login: $org) {
    projectV2(number: $number) { id }
  }
}`

// ProjectID fetches (and caches) the node ID for the configured project.
func (c *clientImpl) ProjectID(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.projectID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	var resp struct {
		Organization struct {
			ProjectV2 struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"organization"`
	}
	err := c.graphql(ctx, projectIDQuery, map[string]any{"org": c.org, "number": c.projectNumber}, &resp)
	if err != nil {
		return "", fmt.Errorf("resolve project %s/#%d: %w", c.org, c.projectNumber, err)
	}
	if resp.Organization.ProjectV2.ID == "" {
		return "", fmt.Errorf("project #%d not found in organization %s", c.projectNumber, c.org)
	}

	c.mu.Lock()
	c.projectID = resp.Organization.ProjectV2.ID
	c.mu.Unlock()
	return resp.Organization.ProjectV2.ID, nil
}

const fieldsQuery = `
query($projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      fields(first: 50) {
        nodes {
          ... on ProjectV2Field { id name dataType }
          ... on ProjectV2SingleSelectField {
            id name dataType
            options { id name }
          }
          ... on ProjectV2IterationField { id name dataType }
        }
      }
    }
  }
}`

// GetFields fetches (and caches) the custom fields of the project, keyed by name.
func (c *clientImpl) GetFields(ctx context.Context) (map[string]ProjectField, error) {
	c.mu.Lock()
	cached := c.fields
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID       string `json:"id"`
					Name     string `json:"name"`
					DataType string `json:"dataType"`
					Options  []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"options"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := c.graphql(ctx, fieldsQuery, map[string]any{"projectId": projectID}, &resp); err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	fields := make(map[string]ProjectField)
	for _, n := range resp.Node.Fields.Nodes {
		if n.Name == "" {
			continue
		}
		f := ProjectField{ID: n.ID, Name: n.Name, DataType: n.DataType}
		if len(n.Options) > 0 {
			f.Options = make(map[string]string, len(n.Options))
			for _, opt := range n.Options {
				f.Options[opt.Name] = opt.ID
			}
		}
		fields[n.Name] = f
	}

	c.mu.Lock()
	c.fields = fields
	c.mu.Unlock()
	return fields, nil
}

// resolveRepositoryID fetches (and caches) the node ID for a repository.
func (c *clientImpl) resolveRepositoryID(ctx context.Context, owner, name string) (string, error) {
	key := owner + "/" + name

	c.mu.Lock()
	cached := c.repoIDs[key]
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	var resp struct {
		Repository struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	query := `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) { id }
}`
	if err := c.graphql(ctx, query, map[string]any{"owner": owner, "name": name}, &resp); err != nil {
		return "", fmt.Errorf("resolve repository %s: %w", key, err)
	}
	if resp.Repository.ID == "" {
		return "", fmt.Errorf("repository %s not found", key)
	}

	c.mu.Lock()
	c.repoIDs[key] = resp.Repository.ID
	c.mu.Unlock()
	return resp.Repository.ID, nil
}

// ---------------------------------------------------------------------------
// Read items
// ---------------------------------------------------------------------------

const listItemsQuery = `
query($projectId: ID!, $cursor: String) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: 100, after: $cursor) {
        pageInfo { hasNextPage endCursor }
        nodes {
          id
          fieldValues(first: 20) {
            nodes {
              ... on ProjectV2ItemFieldTextValue {
                field { ... on ProjectV2Field { name } }
                text
              }
              ... on ProjectV2ItemFieldDateValue {
                field { ... on ProjectV2Field { name } }
                date
              }
              ... on ProjectV2ItemFieldSingleSelectValue {
                field { ... on ProjectV2SingleSelectField { name } }
                name
              }
            }
          }
          content {
            __typename
            ... on Issue {
              id title body
              assignees(first: 5) { nodes { login } }
              labels(first: 20) { nodes { name } }
              repository { name owner { login } }
            }
            ... on DraftIssue { id title body }
            ... on PullRequest { id title body }
          }
        }
      }
    }
  }
}`

// itemNode mirrors one item in the listing (and unarchive) responses.
type itemNode struct {
	ID          string `json:"id"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
	Content contentNode `json:"content"`
}

type fieldValueNode struct {
	Field struct {
		Name string `json:"name"`
	} `json:"field"`
	Text string `json:"text"`
	Date string `json:"date"`
	Name string `json:"name"` // single-select option name
}

type contentNode struct {
	Typename  string `json:"__typename"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Assignees struct {
		Nodes []struct {
			Login string `json:"login"`
		} `json:"nodes"`
	} `json:"assignees"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// ListItems lists all items on the project board, following pagination.
func (c *clientImpl) ListItems(ctx context.Context) ([]*ProjectItem, error) {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return nil, err
	}

	var items []*ProjectItem
	var cursor *string

	for {
		var resp struct {
			Node struct {
				Items struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []itemNode `json:"nodes"`
				} `json:"items"`
			} `json:"node"`
		}
		vars := map[string]any{"projectId": projectID}
		if cursor != nil {
			vars["cursor"] = *cursor
		}
		if err := c.graphql(ctx, listItemsQuery, vars, &resp); err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}

		for i := range resp.Node.Items.Nodes {
			items = append(items, parseItemNode(&resp.Node.Items.Nodes[i]))
		}

		if !resp.Node.Items.PageInfo.HasNextPage {
			break
		}
		end := resp.Node.Items.PageInfo.EndCursor
		cursor = &end
	}

	return items, nil
}

// parseItemNode converts a raw item node into a ProjectItem.
func parseItemNode(n *itemNode) *ProjectItem {
	item := &ProjectItem{
		ItemID:      n.ID,
		ContentID:   n.Content.ID,
		ContentKind: ContentKind(n.Content.Typename),
		Title:       n.Content.Title,
		Description: n.Content.Body,
	}

	// Assignee and label truth only exists for Issue content. Repository
	// ownership likewise; drafts have no backing repo.
	if item.ContentKind == ContentIssue {
		if len(n.Content.Assignees.Nodes) > 0 {
			item.Assignee = n.Content.Assignees.Nodes[0].Login
		}
		for _, l := range n.Content.Labels.Nodes {
			if l.Name != "" {
				item.Labels = append(item.Labels, l.Name)
			}
		}
		item.RepoOwner = n.Content.Repository.Owner.Login
		item.RepoName = n.Content.Repository.Name
	}

	for _, fv := range n.FieldValues.Nodes {
		switch {
		case fv.Field.Name == "Status" && fv.Name != "":
			item.Status = fv.Name
		case (fv.Field.Name == "End date" || fv.Field.Name == "Due") && fv.Date != "":
			item.DueDate = fv.Date
		}
	}

	return item
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// AddDraftItem adds a draft issue to the project. Returns the new item ID.
func (c *clientImpl) AddDraftItem(ctx context.Context, title, body string) (string, error) {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return "", err
	}

	var resp struct {
		AddProjectV2DraftIssue struct {
			ProjectItem struct {
				ID string `json:"id"`
			} `json:"projectItem"`
		} `json:"addProjectV2DraftIssue"`
	}
	mutation := `
mutation($projectId: ID!, $title: String!, $body: String) {
  addProjectV2DraftIssue(input: {projectId: $projectId, title: $title, body: $body}) {
    projectItem { id }
  }
}`
	vars := map[string]any{"projectId": projectID, "title": title, "body": body}
	if err := c.graphql(ctx, mutation, vars, &resp); err != nil {
		return "", fmt.Errorf("add draft item: %w", err)
	}
	return resp.AddProjectV2DraftIssue.ProjectItem.ID, nil
}

// CreateIssue creates a full issue in the given repository. Returns the
// issue's content node ID.
func (c *clientImpl) CreateIssue(ctx context.Context, owner, repo, title, body string) (string, error) {
	repoID, err := c.resolveRepositoryID(ctx, owner, repo)
	if err != nil {
		return "", err
	}

	var resp struct {
		CreateIssue struct {
			Issue struct {
				ID string `json:"id"`
			} `json:"issue"`
		} `json:"createIssue"`
	}
	mutation := `
mutation($repositoryId: ID!, $title: String!, $body: String) {
  createIssue(input: {repositoryId: $repositoryId, title: $title, body: $body}) {
    issue { id }
  }
}`
	vars := map[string]any{"repositoryId": repoID, "title": title, "body": body}
	if err := c.graphql(ctx, mutation, vars, &resp); err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	return resp.CreateIssue.Issue.ID, nil
}

// AddItemToProject attaches existing content (an issue or PR) to the board.
// Returns the new board item ID.
func (c *clientImpl) AddItemToProject(ctx context.Context, contentID string) (string, error) {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return "", err
	}

	var resp struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	mutation := `
mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`
	vars := map[string]any{"projectId": projectID, "contentId": contentID}
	if err := c.graphql(ctx, mutation, vars, &resp); err != nil {
		return "", fmt.Errorf("add item to project: %w", err)
	}
	return resp.AddProjectV2ItemByID.Item.ID, nil
}

// updateItemField issues an updateProjectV2ItemFieldValue mutation with the
// given value object.
func (c *clientImpl) updateItemField(ctx context.Context, itemID, fieldID string, value map[string]any) error {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return err
	}

	mutation := `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: $value
  }) {
    projectV2Item { id }
  }
}`
	vars := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"value":     value,
	}
	return c.graphql(ctx, mutation, vars, nil)
}

// UpdateItemFieldText sets a text field on a board item.
func (c *clientImpl) UpdateItemFieldText(ctx context.Context, itemID, fieldID, value string) error {
	if err := c.updateItemField(ctx, itemID, fieldID, map[string]any{"text": value}); err != nil {
		return fmt.Errorf("update text field: %w", err)
	}
	return nil
}

// UpdateItemFieldSingleSelect sets a single-select field on a board item.
func (c *clientImpl) UpdateItemFieldSingleSelect(ctx context.Context, itemID, fieldID, optionID string) error {
	if err := c.updateItemField(ctx, itemID, fieldID, map[string]any{"singleSelectOptionId": optionID}); err != nil {
		return fmt.Errorf("update single-select field: %w", err)
	}
	return nil
}

// UpdateItemFieldDate sets a date field on a board item. date is ISO formatted.
func (c *clientImpl) UpdateItemFieldDate(ctx context.Context, itemID, fieldID, date string) error {
	if err := c.updateItemField(ctx, itemID, fieldID, map[string]any{"date": date}); err != nil {
		return fmt.Errorf("update date field: %w", err)
	}
	return nil
}

// UpdateDraftItem updates a draft issue's title and body. draftID is the
// DraftIssue content node ID, not the board item ID.
func (c *clientImpl) UpdateDraftItem(ctx context.Context, draftID, title, body string) error {
	mutation := `
mutation($draftIssueId: ID!, $title: String!, $body: String) {
  updateProjectV2DraftIssue(input: {draftIssueId: $draftIssueId, title: $title, body: $body}) {
    draftIssue { id }
  }
}`
	vars := map[string]any{"draftIssueId": draftID, "title": title, "body": body}
	if err := c.graphql(ctx, mutation, vars, nil); err != nil {
		return fmt.Errorf("update draft item: %w", err)
	}
	return nil
}

// UpdateIssue updates a full issue's title and body.
func (c *clientImpl) UpdateIssue(ctx context.Context, issueID, title, body string) error {
	mutation := `
mutation($issueId: ID!, $title: String!, $body: String) {
  updateIssue(input: {id: $issueId, title: $title, body: $body}) {
    issue { id }
  }
}`
	vars := map[string]any{"issueId": issueID, "title": title, "body": body}
	if err := c.graphql(ctx, mutation, vars, nil); err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	return nil
}

// SetIssueAssignees replaces the assignee set of an issue.
func (c *clientImpl) SetIssueAssignees(ctx context.Context, issueID string, userIDs []string) error {
	mutation := `
mutation($issueId: ID!, $assigneeIds: [ID!]) {
  updateIssue(input: {id: $issueId, assigneeIds: $assigneeIds}) {
    issue { id }
  }
}`
	vars := map[string]any{"issueId": issueID, "assigneeIds": userIDs}
	if err := c.graphql(ctx, mutation, vars, nil); err != nil {
		return fmt.Errorf("set issue assignees: %w", err)
	}
	return nil
}

// SetIssueLabels replaces the label set of an issue.
func (c *clientImpl) SetIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	mutation := `
mutation($issueId: ID!, $labelIds: [ID!]) {
  updateIssue(input: {id: $issueId, labelIds: $labelIds}) {
    issue { id }
  }
}`
	vars := map[string]any{"issueId": issueID, "labelIds": labelIDs}
	if err := c.graphql(ctx, mutation, vars, nil); err != nil {
		return fmt.Errorf("set issue labels: %w", err)
	}
	return nil
}

// ResolveUserID resolves a login name to a user node ID. A login that does
// not exist resolves to "" with no error.
func (c *clientImpl) ResolveUserID(ctx context.Context, login string) (string, error) {
	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	query := `
query($login: String!) {
  user(login: $login) { id }
}`
	if err := c.graphqlLenient(ctx, query, map[string]any{"login": login}, &resp); err != nil {
		return "", fmt.Errorf("resolve user %q: %w", login, err)
	}
	return resp.User.ID, nil
}

// ResolveLabelIDs resolves label names to their node IDs within a repository.
// Names that do not exist in the repository are dropped from the result.
func (c *clientImpl) ResolveLabelIDs(ctx context.Context, owner, repo string, names []string) ([]string, error) {
	query := `
query($owner: String!, $name: String!, $label: String!) {
  repository(owner: $owner, name: $name) {
    label(name: $label) { id }
  }
}`

	var ids []string
	for _, label := range names {
		var resp struct {
			Repository struct {
				Label struct {
					ID string `json:"id"`
				} `json:"label"`
			} `json:"repository"`
		}
		vars := map[string]any{"owner": owner, "name": repo, "label": label}
		if err := c.graphqlLenient(ctx, query, vars, &resp); err != nil {
			return nil, fmt.Errorf("resolve label %q: %w", label, err)
		}
		if resp.Repository.Label.ID != "" {
			ids = append(ids, resp.Repository.Label.ID)
		}
	}
	return ids, nil
}

// ArchiveItem archives a board item.
func (c *clientImpl) ArchiveItem(ctx context.Context, itemID string) error {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return err
	}

	mutation := `
mutation($projectId: ID!, $itemId: ID!) {
  archiveProjectV2Item(input: {projectId: $projectId, itemId: $itemId}) {
    item { id }
  }
}`
	vars := map[string]any{"projectId": projectID, "itemId": itemID}
	if err := c.graphql(ctx, mutation, vars, nil); err != nil {
		return fmt.Errorf("archive item: %w", err)
	}
	return nil
}

// UnarchiveItem restores an archived board item and returns its observed
// state, so the caller can decide kind-dependent follow-ups such as
// reopening a closed issue.
func (c *clientImpl) UnarchiveItem(ctx context.Context, itemID string) (*ProjectItem, error) {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return nil, err
	}

	mutation := `
mutation($projectId: ID!, $itemId: ID!) {
  unarchiveProjectV2Item(input: {projectId: $projectId, itemId: $itemId}) {
    item { id }
  }
}`
	vars := map[string]any{"projectId": projectID, "itemId": itemID}
	if err := c.graphql(ctx, mutation, vars, nil); err != nil {
		return nil, fmt.Errorf("unarchive item: %w", err)
	}

	var resp struct {
		Node itemNode `json:"node"`
	}
	query := `
query($itemId: ID!) {
  node(id: $itemId) {
    ... on ProjectV2Item {
      id
      fieldValues(first: 20) {
        nodes {
          ... on ProjectV2ItemFieldSingleSelectValue {
            field { ... on ProjectV2SingleSelectField { name } }
            name
          }
        }
      }
      content {
        __typename
        ... on Issue {
          id title body
          repository { name owner { login } }
        }
        ... on DraftIssue { id title body }
        ... on PullRequest { id title body }
      }
    }
  }
}`
	if err := c.graphql(ctx, query, map[string]any{"itemId": itemID}, &resp); err != nil {
		return nil, fmt.Errorf("fetch unarchived item: %w", err)
	}
	return parseItemNode(&resp.Node), nil
}

// ReopenIssue reopens a closed issue. Board archival and issue state are
// independent, so this is called after unarchiving Issue-backed items.
func (c *clientImpl) ReopenIssue(ctx context.Context, issueID string) error {
	mutation := `
mutation($issueId: ID!) {
  reopenIssue(input: {issueId: $issueId}) {
    issue { id }
  }
}`
	if err := c.graphql(ctx, mutation, map[string]any{"issueId": issueID}, nil); err != nil {
		return fmt.Errorf("reopen issue: %w", err)
	}
	return nil
}
