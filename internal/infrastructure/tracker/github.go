package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v69/github"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// GitHubConfig holds connection settings for a GitHub repository whose
// issues carry status labels.
type GitHubConfig struct {
	Owner string
	Repo  string
	// LabelPrefix marks the labels that represent statuses, e.g. "status:".
	LabelPrefix string
	Token       string
}

// GitHubRepository lists work items from GitHub issues. Status history is
// reconstructed from labeled/unlabeled events on labels carrying the
// configured prefix.
type GitHubRepository struct {
	cfg    GitHubConfig
	client *github.Client
}

// NewGitHubRepository creates a repository over the GitHub API. An empty
// token falls back to unauthenticated requests.
func NewGitHubRepository(cfg GitHubConfig) *GitHubRepository {
	httpClient := oauth2.NewClient(context.Background(), nil)
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return &GitHubRepository{cfg: cfg, client: github.NewClient(httpClient)}
}

// newGitHubRepositoryWithClient is used by tests to point at a fake server.
func newGitHubRepositoryWithClient(cfg GitHubConfig, client *github.Client) *GitHubRepository {
	return &GitHubRepository{cfg: cfg, client: client}
}

// ListItems pages through all issues of the repository and rebuilds each
// issue's status timeline from its label events.
func (r *GitHubRepository) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := r.client.Issues.ListByRepo(ctx, r.cfg.Owner, r.cfg.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list github issues %s/%s: %w", r.cfg.Owner, r.cfg.Repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			item, err := r.mapIssue(ctx, issue)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	log.Debug().Int("items", len(items)).Msg("Fetched GitHub work items")
	return items, nil
}

func (r *GitHubRepository) mapIssue(ctx context.Context, issue *github.Issue) (domain.WorkItem, error) {
	key, err := domain.NewItemKey(fmt.Sprintf("%s/%s#%d", r.cfg.Owner, r.cfg.Repo, issue.GetNumber()))
	if err != nil {
		return domain.WorkItem{}, err
	}
	h, err := r.labelTimeline(ctx, issue.GetNumber())
	if err != nil {
		return domain.WorkItem{}, err
	}
	return domain.WorkItem{
		Key:       key,
		Title:     issue.GetTitle(),
		Author:    issue.GetUser().GetLogin(),
		CreatedAt: issue.GetCreatedAt().Time,
		History:   h,
	}, nil
}

// labelTimeline turns labeled/unlabeled events on status labels into status
// entries. A labeled event closes the running entry and opens the next; an
// unlabeled event only closes, leaving a gap until the next status label.
func (r *GitHubRepository) labelTimeline(ctx context.Context, number int) (history.History, error) {
	var h history.History
	opts := &github.ListOptions{PerPage: 100}
	for {
		events, resp, err := r.client.Issues.ListIssueEvents(ctx, r.cfg.Owner, r.cfg.Repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list events for issue #%d: %w", number, err)
		}
		for _, ev := range events {
			h = r.applyLabelEvent(h, ev)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return h, nil
}

func (r *GitHubRepository) applyLabelEvent(h history.History, ev *github.IssueEvent) history.History {
	name := ev.GetLabel().GetName()
	if !strings.HasPrefix(name, r.cfg.LabelPrefix) {
		return h
	}
	at := ev.GetCreatedAt().Time
	switch ev.GetEvent() {
	case "labeled":
		h = closeOpenEntry(h, at)
		status := strings.TrimPrefix(name, r.cfg.LabelPrefix)
		h = append(h, history.Entry{
			Status:        canonicalStatus(status),
			DisplayStatus: status,
			Start:         at,
		})
	case "unlabeled":
		if n := len(h); n > 0 && h[n-1].Open() && h[n-1].DisplayStatus == strings.TrimPrefix(name, r.cfg.LabelPrefix) {
			h[n-1].End = at
		}
	}
	return h
}

func closeOpenEntry(h history.History, at time.Time) history.History {
	if n := len(h); n > 0 && h[n-1].Open() {
		h[n-1].End = at
	}
	return h
}
