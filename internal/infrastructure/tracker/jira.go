// Package tracker provides live HistoryRepository implementations backed by
// issue trackers. Each tracker maps its own audit trail onto status
// histories; the metrics engine never sees tracker-specific types.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// jiraTimeLayout is the timestamp format Jira uses in issue fields and
// changelog histories.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

const jiraPageSize = 50

// JiraConfig holds connection settings for a Jira server.
type JiraConfig struct {
	BaseURL string
	JQL     string
	// Token is a personal access token, sent as a bearer header.
	Token string
	// RequestDelay throttles consecutive search pages.
	RequestDelay time.Duration
}

// JiraRepository lists work items from Jira, reconstructing each item's
// status history from its changelog.
type JiraRepository struct {
	cfg         JiraConfig
	httpClient  *http.Client
	lastRequest time.Time
}

// NewJiraRepository creates a repository over the Jira REST API.
func NewJiraRepository(cfg JiraConfig) *JiraRepository {
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = time.Second
	}
	return &JiraRepository{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

type jiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Created string `json:"created"`
		Creator struct {
			DisplayName string `json:"displayName"`
		} `json:"creator"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
	Changelog struct {
		Histories []jiraChangelogGroup `json:"histories"`
	} `json:"changelog"`
}

type jiraChangelogGroup struct {
	Created string `json:"created"`
	Items   []struct {
		Field      string `json:"field"`
		FromString string `json:"fromString"`
		ToString   string `json:"toString"`
	} `json:"items"`
}

// ListItems pages through the configured JQL search with changelogs expanded.
func (r *JiraRepository) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	startAt := 0
	for {
		page, err := r.search(ctx, startAt)
		if err != nil {
			return nil, err
		}
		for _, issue := range page.Issues {
			item, err := mapJiraIssue(issue)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		startAt += len(page.Issues)
		if startAt >= page.Total || len(page.Issues) == 0 {
			break
		}
	}
	log.Debug().Int("items", len(items)).Msg("Fetched Jira work items")
	return items, nil
}

func (r *JiraRepository) search(ctx context.Context, startAt int) (*jiraSearchResponse, error) {
	r.throttle()

	params := url.Values{}
	params.Set("jql", r.cfg.JQL)
	params.Set("startAt", fmt.Sprintf("%d", startAt))
	params.Set("maxResults", fmt.Sprintf("%d", jiraPageSize))
	params.Set("fields", "summary,status,creator,created")
	params.Set("expand", "changelog")

	searchURL := fmt.Sprintf("%s/rest/api/2/search?%s", r.cfg.BaseURL, params.Encode())
	log.Debug().Str("url", searchURL).Str("jql", r.cfg.JQL).Msg("Jira search")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.Token))
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("jira authentication failed (%d): check JIRA_TOKEN", resp.StatusCode)
		case http.StatusTooManyRequests:
			return nil, fmt.Errorf("jira rate limit exceeded (429)")
		default:
			return nil, fmt.Errorf("jira API returned status %d", resp.StatusCode)
		}
	}

	var result jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode jira response: %w", err)
	}
	return &result, nil
}

func (r *JiraRepository) throttle() {
	elapsed := time.Since(r.lastRequest)
	if elapsed < r.cfg.RequestDelay {
		wait := r.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		time.Sleep(wait)
	}
	r.lastRequest = time.Now()
}

func mapJiraIssue(issue jiraIssue) (domain.WorkItem, error) {
	key, err := domain.NewItemKey(issue.Key)
	if err != nil {
		return domain.WorkItem{}, err
	}
	created := parseJiraTime(issue.Fields.Created)
	return domain.WorkItem{
		Key:       key,
		Title:     issue.Fields.Summary,
		Author:    issue.Fields.Creator.DisplayName,
		CreatedAt: created,
		History:   jiraHistory(issue, created),
	}, nil
}

// jiraHistory rebuilds the status timeline from the changelog. The issue's
// life starts at creation in the fromString of the earliest status
// transition; each transition closes the running entry and opens the next.
func jiraHistory(issue jiraIssue, created time.Time) history.History {
	type transition struct {
		at   time.Time
		from string
		to   string
	}
	var transitions []transition
	for _, group := range issue.Changelog.Histories {
		at := parseJiraTime(group.Created)
		for _, item := range group.Items {
			if item.Field != "status" {
				continue
			}
			transitions = append(transitions, transition{at: at, from: item.FromString, to: item.ToString})
		}
	}
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].at.Before(transitions[j].at)
	})

	if len(transitions) == 0 {
		return history.History{{
			Status:        canonicalStatus(issue.Fields.Status.Name),
			DisplayStatus: issue.Fields.Status.Name,
			Start:         created,
		}}
	}

	h := make(history.History, 0, len(transitions)+1)
	h = append(h, history.Entry{
		Status:        canonicalStatus(transitions[0].from),
		DisplayStatus: transitions[0].from,
		Start:         created,
		End:           transitions[0].at,
	})
	for i, tr := range transitions {
		entry := history.Entry{
			Status:        canonicalStatus(tr.to),
			DisplayStatus: tr.to,
			Start:         tr.at,
		}
		if i+1 < len(transitions) {
			entry.End = transitions[i+1].at
		}
		h = append(h, entry)
	}
	return h
}

// canonicalStatus lowers a tracker status name into the identifier form the
// taxonomy config uses.
func canonicalStatus(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func parseJiraTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(jiraTimeLayout, s)
	if err != nil {
		if t, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t
		}
		return time.Time{}
	}
	return t
}
