package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, 3, cfg.MaxFixRounds)
	assert.Equal(t, 60, cfg.CompileTimeout)
	assert.Equal(t, []string{".png", ".pdf", ".jpg", ".jpeg", ".eps"}, cfg.ImageExtensions)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_fix_rounds: 5\ndebug: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxFixRounds)
	assert.True(t, cfg.Debug)
	// 未指定的字段保持默认值
	assert.Equal(t, 60, cfg.CompileTimeout)
}

func TestLoadTables(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tables, err := LoadTables("")
		require.NoError(t, err)
		assert.NotEmpty(t, tables.Special)
	})

	t.Run("Overlay", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tables.toml")
		content := "[special]\n\"~\" = \"\\\\textasciitilde{}\"\n\"&\" = \"\\\\And{}\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tables, err := LoadTables(path)
		require.NoError(t, err)

		got := make(map[string]string, len(tables.Special))
		for _, r := range tables.Special {
			got[r.From] = r.To
		}
		// 已有键被覆盖，新键追加
		assert.Equal(t, `\And{}`, got["&"])
		assert.Equal(t, `\textasciitilde{}`, got["~"])
		// 内置规则仍在
		assert.Equal(t, `\%`, got["%"])
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadTables(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}
