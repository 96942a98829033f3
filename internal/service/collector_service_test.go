package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/pkg/edgar"
	"github.com/qs3c/insider_go_server/internal/pkg/pubsub"
	"github.com/qs3c/insider_go_server/internal/repository"
	"github.com/qs3c/insider_go_server/internal/testutil"
)

// feedXML 构造一页 atom feed，每个 accession 一条 Form 4 entry
func feedXML(accessions ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="ISO-8859-1" ?><feed xmlns="http://www.w3.org/2005/Atom"><title>Latest Filings</title>`)
	for _, acc := range accessions {
		fmt.Fprintf(&b, `<entry>
<title>4 - Apple Inc (0000320193) (Issuer)</title>
<link rel="alternate" type="text/html" href="https://www.sec.gov/x?accession-number=%s"/>
<summary type="html">Apple Inc (0000320193)</summary>
<updated>2024-11-04T16:30:09-05:00</updated>
</entry>`, acc)
	}
	b.WriteString(`</feed>`)
	return b.String()
}

const emptyFeedXML = `<?xml version="1.0" encoding="ISO-8859-1" ?><feed xmlns="http://www.w3.org/2005/Atom"><title>Latest Filings</title></feed>`

func newTestCollector(t *testing.T, db *gorm.DB, baseURL string, edgarOverrides func(*config.EdgarConfig)) *CollectorService {
	t.Helper()

	cfg := &config.Config{
		Edgar: config.EdgarConfig{
			BaseURL:        baseURL,
			UserAgent:      "collector test contact@example.com",
			TimeoutSeconds: 5,
			PageSize:       100,
			MaxPages:       10,
			TargetCount:    200,
			MaxPerIssuer:   10,
		},
	}
	if edgarOverrides != nil {
		edgarOverrides(&cfg.Edgar)
	}

	client, err := edgar.NewClient(&cfg.Edgar)
	require.NoError(t, err)

	return NewCollectorService(client,
		repository.NewTradeRepository(db),
		repository.NewRunRepository(db),
		nil, nil, cfg)
}

func TestExecuteRun_FeedIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	page := feedXML("0000320193-24-000001", "0000320193-24-000002", "0000320193-24-000003")
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.Write([]byte(emptyFeedXML))
			return
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	collector := newTestCollector(t, db, server.URL, nil)

	run, err := collector.StartFeedRun()
	require.NoError(t, err)

	result, err := collector.ExecuteRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Saved)
	assert.Equal(t, 0, result.Duplicate)
	assert.Equal(t, 0, result.Errors)

	// 同样的 feed 再采一次：全部判重，一条不多存
	calls = 0
	run2, err := collector.StartFeedRun()
	require.NoError(t, err)

	result, err = collector.ExecuteRun(context.Background(), run2.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Saved)
	assert.Equal(t, 3, result.Duplicate)

	count, err := repository.NewTradeRepository(db).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestExecuteRun_StopsAtTargetCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	page := feedXML(
		"0000000001-24-000001", "0000000001-24-000002", "0000000001-24-000003",
		"0000000001-24-000004", "0000000001-24-000005",
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	collector := newTestCollector(t, db, server.URL, func(e *config.EdgarConfig) {
		e.TargetCount = 2
	})

	run, err := collector.StartFeedRun()
	require.NoError(t, err)

	result, err := collector.ExecuteRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 1, result.Pages)
}

func TestExecuteRun_MaxPagesBound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	// feed 永远返回同一页。没有安全上限的话循环不会结束。
	page := feedXML("0000000002-24-000001", "0000000002-24-000002")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	collector := newTestCollector(t, db, server.URL, func(e *config.EdgarConfig) {
		e.MaxPages = 3
		e.TargetCount = 1000
	})

	run, err := collector.StartFeedRun()
	require.NoError(t, err)

	result, err := collector.ExecuteRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 4, result.Duplicate)
}

func TestExecuteRun_FetchFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	collector := newTestCollector(t, db, server.URL, nil)

	run, err := collector.StartFeedRun()
	require.NoError(t, err)

	_, err = collector.ExecuteRun(context.Background(), run.ID)
	assert.Error(t, err)

	// 失败状态和错误信息落库
	got, err := repository.NewRunRepository(db).GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.NotEmpty(t, got.ErrorMessage)
}

func TestExecuteRun_IssuerMode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("CIK") {
		case "0000320193":
			w.Write([]byte(feedXML("0000320193-24-000101", "0000320193-24-000102", "0000320193-24-000103")))
		case "0001318605":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte(emptyFeedXML))
		}
	}))
	defer server.Close()

	collector := newTestCollector(t, db, server.URL, nil)

	// 每家最多 2 条；第二家 404 只计一个 error，不中断整个任务
	run, err := collector.StartIssuerRun([]string{"0000320193", "0001318605"}, 2)
	require.NoError(t, err)

	result, err := collector.ExecuteRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 1, result.Errors)

	got, err := repository.NewRunRepository(db).GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 2, got.Saved)
}

func TestExecuteRun_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	collector := newTestCollector(t, db, "http://127.0.0.1:0", nil)

	// run 行加载失败时没有结果可言，调用方必须按 nil 处理
	result, err := collector.ExecuteRun(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.Nil(t, result)
}

func TestExecuteRun_PublishesProgressSteps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.Write([]byte(emptyFeedXML))
			return
		}
		w.Write([]byte(feedXML("0000000003-24-000001")))
	}))
	defer server.Close()

	cfg := &config.Config{
		Edgar: config.EdgarConfig{
			BaseURL:        server.URL,
			UserAgent:      "collector test contact@example.com",
			TimeoutSeconds: 5,
			PageSize:       100,
			MaxPages:       10,
			TargetCount:    200,
			MaxPerIssuer:   10,
		},
	}
	client, err := edgar.NewClient(&cfg.Edgar)
	require.NoError(t, err)

	collector := NewCollectorService(client,
		repository.NewTradeRepository(db),
		repository.NewRunRepository(db),
		nil, pubsub.NewPublisher(rdb), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	steps := make(chan string, 16)
	go pubsub.NewSubscriber(rdb).Subscribe(ctx, func(msg *pubsub.ProgressMessage) {
		steps <- msg.Step
	})
	// 等订阅建立
	time.Sleep(100 * time.Millisecond)

	run, err := collector.StartFeedRun()
	require.NoError(t, err)
	_, err = collector.ExecuteRun(ctx, run.ID)
	require.NoError(t, err)

	// 四个阶段都要推送到
	seen := make(map[string]bool)
	for !seen[pubsub.StepDone] {
		select {
		case step := <-steps:
			seen[step] = true
		case <-ctx.Done():
			t.Fatalf("timed out, steps seen: %v", seen)
		}
	}
	assert.True(t, seen[pubsub.StepFetching])
	assert.True(t, seen[pubsub.StepExtracting])
	assert.True(t, seen[pubsub.StepSaving])
}

func TestCollectorStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	testutil.TestRun(t, db, "feed", 10, 3, 1)
	testutil.TestRun(t, db, "issuers", 5, 0, 0)

	collector := newTestCollector(t, db, "http://127.0.0.1:0", nil)

	stats, err := collector.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(15), stats.TotalSaved)
	assert.Equal(t, int64(3), stats.TotalDuplicate)
	assert.Equal(t, int64(1), stats.TotalErrors)
	assert.Len(t, stats.RecentRuns, 2)
}
