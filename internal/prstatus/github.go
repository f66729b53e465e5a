package prstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIBase = "https://api.github.com"

	apiVersion   = "2022-11-28"
	userAgent    = "cc-statusline"
	maxBodyBytes = 4 << 20
)

// StatusError is a non-2xx GitHub API response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "HTTP " + strconv.Itoa(e.Code)
}

// Payload is the cache body written after a REST fetch. It mirrors the
// fields gh pr view emits, with the comment count stored as a number.
type Payload struct {
	Number            uint64     `json:"number"`
	State             string     `json:"state"`
	URL               string     `json:"url"`
	CommentsCount     uint64     `json:"commentsCount"`
	ChangedFiles      uint64     `json:"changedFiles"`
	StatusCheckRollup []CheckRun `json:"statusCheckRollup"`
}

// Client talks to the GitHub REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultAPIBase
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type pullSummary struct {
	Number  uint64 `json:"number"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
	Head    struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

type pullDetail struct {
	Comments       uint64 `json:"comments"`
	ReviewComments uint64 `json:"review_comments"`
	ChangedFiles   uint64 `json:"changed_files"`
	Merged         bool   `json:"merged"`
}

type checkRunList struct {
	CheckRuns []CheckRun `json:"check_runs"`
}

// FetchPR looks up the pull request whose head is owner:branch, including
// closed and merged ones. It returns nil without error when there is none.
// Only the listing call decides success; detail and check lookups degrade to
// zero values.
func (c *Client) FetchPR(ctx context.Context, owner, repo, branch, token string) (*Payload, error) {
	base := c.BaseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)

	var pulls []pullSummary
	listURL := base + "/pulls?head=" + PercentEncode(owner) + ":" + PercentEncode(branch) + "&state=all"
	if err := c.get(ctx, listURL, token, &pulls); err != nil {
		return nil, err
	}
	if len(pulls) == 0 {
		return nil, nil
	}
	pr := pulls[0]
	payload := &Payload{
		Number:            pr.Number,
		State:             pr.State,
		URL:               pr.HTMLURL,
		StatusCheckRollup: []CheckRun{},
	}

	var detail pullDetail
	if err := c.get(ctx, fmt.Sprintf("%s/pulls/%d", base, pr.Number), token, &detail); err == nil {
		payload.CommentsCount = detail.Comments + detail.ReviewComments
		payload.ChangedFiles = detail.ChangedFiles
		if detail.Merged {
			payload.State = "merged"
		}
	}

	if sha := strings.TrimSpace(pr.Head.SHA); sha != "" {
		var runs checkRunList
		if err := c.get(ctx, base+"/commits/"+url.PathEscape(sha)+"/check-runs", token, &runs); err == nil && runs.CheckRuns != nil {
			payload.StatusCheckRollup = runs.CheckRuns
		}
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, rawURL, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
