package edgar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/qs3c/insider_go_server/config"
)

// ErrMissingUserAgent SEC 要求每个请求带可联系到的 User-Agent，
// 缺失会被封禁，直接拒绝启动。
var ErrMissingUserAgent = errors.New("edgar user agent is required")

// Client EDGAR 抓取客户端。同一 Client 内的请求强制间隔 delay，
// 遵守 SEC 每秒请求数上限。
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	delay      time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

func NewClient(cfg *config.EdgarConfig) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, ErrMissingUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		delay:     time.Duration(cfg.RequestDelayMs) * time.Millisecond,
	}, nil
}

// Fetch 抓取一个 URL，自动限速
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	c.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edgar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("edgar returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read edgar response: %w", err)
	}

	return body, nil
}

// throttle 距上次请求不足 delay 时等待补齐。lastCall 记录的是
// 本次请求实际放行的时间点，后续调用以它为基准排队。
func (c *Client) throttle() {
	c.mu.Lock()
	now := time.Now()
	wait := c.delay - now.Sub(c.lastCall)
	if wait > 0 {
		c.lastCall = now.Add(wait)
	} else {
		c.lastCall = now
	}
	c.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

// FeedURL 全量 Form 4 动态 feed 的分页地址
func (c *Client) FeedURL(start, count int) string {
	q := url.Values{}
	q.Set("action", "getcurrent")
	q.Set("type", "4")
	q.Set("company", "")
	q.Set("dateb", "")
	q.Set("owner", "include")
	q.Set("start", fmt.Sprintf("%d", start))
	q.Set("count", fmt.Sprintf("%d", count))
	q.Set("output", "atom")
	return c.baseURL + "/cgi-bin/browse-edgar?" + q.Encode()
}

// IssuerFeedURL 单家公司申报索引的地址
func (c *Client) IssuerFeedURL(cik string, count int) string {
	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", cik)
	q.Set("type", "4")
	q.Set("dateb", "")
	q.Set("owner", "include")
	q.Set("count", fmt.Sprintf("%d", count))
	q.Set("output", "atom")
	return c.baseURL + "/cgi-bin/browse-edgar?" + q.Encode()
}
