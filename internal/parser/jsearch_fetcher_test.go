package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-match-go/internal/config"
	"job-match-go/internal/types"
)

// TestBuildQuery 验证搜索词构造：技能取前5个，级别词附加在后
func TestBuildQuery(t *testing.T) {
	skills := []string{"python", "sql", "docker", "kafka", "redis", "go", "rust"}

	query := BuildQuery(skills, types.LevelMid)
	assert.Equal(t, "python OR sql OR docker OR kafka OR redis", query)

	query = BuildQuery([]string{"python"}, types.LevelStudent)
	assert.Equal(t, "python intern OR internship OR student", query)

	query = BuildQuery(nil, types.LevelEntry)
	assert.Equal(t, "software engineer junior OR entry level OR graduate", query, "无技能时使用兜底搜索词")
}

// newTestJSearchClient 指向测试服务器的客户端
func newTestJSearchClient(t *testing.T, serverURL string, pages int) *JSearchClient {
	t.Helper()
	client, err := NewJSearchClient(&config.JSearchConfig{
		APIKey:        "test-key",
		APIHost:       "test-host",
		BaseURL:       serverURL,
		PagesPerFetch: pages,
	}, WithJSearchLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	return client
}

// TestFetchJobsNormalizesRecords 验证正常抓取、去重和记录归一化
func TestFetchJobsNormalizesRecords(t *testing.T) {
	payload := `{"status":"OK","data":[
		{"job_id":"j1","job_title":"Backend Engineer","employer_name":"Acme","job_city":"Pune","job_country":"IN","job_description":"<p>Build services</p>","job_employment_type":"FULLTIME"},
		{"job_id":"j1","job_title":"Backend Engineer","employer_name":"Acme"},
		{"job_id":"","job_title":"No ID"},
		{"job_id":"j2","job_title":"Data Intern","employer_name":"Beta"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "India", r.URL.Query().Get("location"), "地区作为独立请求参数")
		assert.Equal(t, "python", r.URL.Query().Get("query"), "搜索词不含地区")
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	jobs, err := newTestJSearchClient(t, server.URL, 1).FetchJobs(context.Background(), "python", "India")
	require.NoError(t, err)
	require.Len(t, jobs, 2, "重复ID和无效记录应被剔除")

	assert.Equal(t, "j1", jobs[0].ID)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "Pune, IN", jobs[0].Location)
	assert.NotContains(t, jobs[0].Description, "<p>", "描述应剥离HTML")
	assert.Equal(t, types.LevelMid, jobs[0].ExperienceLevel)

	assert.Equal(t, "j2", jobs[1].ID)
	assert.Equal(t, types.LevelStudent, jobs[1].ExperienceLevel, "标题含实习词的岗位归学生档")
}

// TestFetchJobsSkipsFailedPages 验证单页服务端错误跳过后继续抓取
func TestFetchJobsSkipsFailedPages(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"status":"OK","data":[{"job_id":"j9","job_title":"Engineer"}]}`)
	}))
	defer server.Close()

	jobs, err := newTestJSearchClient(t, server.URL, 2).FetchJobs(context.Background(), "python", "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "失败页之后应继续抓取")
	require.Len(t, jobs, 1)
	assert.Equal(t, "j9", jobs[0].ID)
}

// TestFetchJobsSkipsTransportErrors 验证连接层错误按页跳过而不中断抓取
func TestFetchJobsSkipsTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestJSearchClient(t, server.URL, 2)
	server.Close()

	jobs, err := client.FetchJobs(context.Background(), "python", "")
	require.NoError(t, err, "页级失败不应上抛")
	assert.Empty(t, jobs)
}

// TestFetchJobsStopsOnRateLimit 验证收到429后立即停止翻页并返回已得结果
func TestFetchJobsStopsOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"status":"OK","data":[{"job_id":"j1","job_title":"Engineer"}]}`)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	jobs, err := newTestJSearchClient(t, server.URL, 5).FetchJobs(context.Background(), "python", "")
	require.NoError(t, err, "限流不是错误，返回部分结果")
	assert.Equal(t, 2, calls, "限流后不应继续翻页")
	require.Len(t, jobs, 1)
}

// TestNewJSearchClientRequiresAPIKey 验证缺少API密钥时构造失败
func TestNewJSearchClientRequiresAPIKey(t *testing.T) {
	_, err := NewJSearchClient(&config.JSearchConfig{})
	assert.Error(t, err)
}
