package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/nerdneilsfield/go-latex-fixer/internal/sanitize"
)

// tableOverlay 用户提供的替换表叠加文件（TOML）。
// 键是被替换的字符，值是替换成的 LaTeX 写法；
// 已有的键覆盖内置规则，新的键追加到表尾。
type tableOverlay struct {
	Special   map[string]string `toml:"special"`
	NonASCII  map[string]string `toml:"non_ascii"`
	TableCell map[string]string `toml:"table_cell"`
}

// LoadTables 加载替换表。path 为空返回内置表，
// 否则在内置表上叠加文件里的规则。
func LoadTables(path string) (*sanitize.Tables, error) {
	tables := sanitize.DefaultTables()
	if path == "" {
		return tables, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("custom tables file not found: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom tables file: %w", err)
	}

	var overlay tableOverlay
	if err := toml.Unmarshal(content, &overlay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal custom tables: %w", err)
	}

	return &sanitize.Tables{
		Special:   mergeTable(tables.Special, overlay.Special),
		NonASCII:  mergeTable(tables.NonASCII, overlay.NonASCII),
		TableCell: mergeTable(tables.TableCell, overlay.TableCell),
	}, nil
}

// mergeTable 把叠加规则合入内置表。保持内置表原有顺序，
// 新增的键按字典序追加，保证组合模式的构造是确定的。
func mergeTable(base []sanitize.Replacement, overlay map[string]string) []sanitize.Replacement {
	if len(overlay) == 0 {
		return base
	}

	merged := make([]sanitize.Replacement, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(base))
	for _, r := range base {
		if to, ok := overlay[r.From]; ok {
			r.To = to
		}
		seen[r.From] = true
		merged = append(merged, r)
	}

	extra := make([]string, 0, len(overlay))
	for from := range overlay {
		if !seen[from] {
			extra = append(extra, from)
		}
	}
	sort.Strings(extra)
	for _, from := range extra {
		merged = append(merged, sanitize.Replacement{From: from, To: overlay[from]})
	}
	return merged
}
