package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempConfig 把YAML内容写入临时配置文件并返回路径
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

// TestLoadConfigFromYAML 验证YAML配置能被正确加载
func TestLoadConfigFromYAML(t *testing.T) {
	yamlContent := `
jsearch:
  api_key: "file-key"
  pages_per_fetch: 2
  default_location: "Remote"
job_cache:
  enable: true
  ttl_days: 7
  reference_year: 2026
server:
  address: ":9090"
`
	config, err := LoadConfig(writeTempConfig(t, yamlContent))
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "file-key", config.JSearch.APIKey)
	assert.Equal(t, 2, config.JSearch.PagesPerFetch)
	assert.Equal(t, "Remote", config.JSearch.DefaultLocation)
	assert.True(t, config.JobCache.Enable)
	assert.Equal(t, 7, config.JobCache.TTLDays)
	assert.Equal(t, 2026, config.JobCache.ReferenceYear)
	assert.Equal(t, ":9090", config.Server.Address)
}

// TestLoadConfigAppliesDefaults 验证缺省值填充
func TestLoadConfigAppliesDefaults(t *testing.T) {
	config, err := LoadConfig(writeTempConfig(t, "jsearch:\n  api_key: \"k\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, "jsearch.p.rapidapi.com", config.JSearch.APIHost)
	assert.Equal(t, 30, config.JSearch.TimeoutSeconds)
	assert.Equal(t, 3, config.JSearch.PagesPerFetch)
	assert.Equal(t, 3, config.JobCache.TTLDays)
	assert.Equal(t, 24, config.JobCache.CleanupIntervalHours)
	assert.Equal(t, 1024, config.Qdrant.Dimension)
}

// TestLoadConfigEnvOverrides 验证环境变量覆盖敏感配置
func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", "env-key")
	t.Setenv("EMBEDDING_API_KEY", "env-embedding-key")

	yamlContent := `
jsearch:
  api_key: "file-key"
embedding:
  api_key: "file-embedding-key"
`
	config, err := LoadConfig(writeTempConfig(t, yamlContent))
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.JSearch.APIKey, "环境变量应覆盖文件中的密钥")
	assert.Equal(t, "env-embedding-key", config.Embedding.APIKey)
}

// TestLoadConfigMissingFile 验证指定的配置文件不存在时返回错误
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	assert.Error(t, err)
}
