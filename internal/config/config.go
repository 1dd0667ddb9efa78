package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config 保存修复流水线的所有配置
type Config struct {
	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"` // 详细模式，显示每一遍的修复详情

	ImageExtensions []string `mapstructure:"image_extensions"` // 图片路径解析时尝试的扩展名
	MaxFixRounds    int      `mapstructure:"max_fix_rounds"`   // 编译-修复的最大轮数
	CompileTimeout  int      `mapstructure:"compile_timeout"`  // 单条编译命令的超时（秒）

	CustomTablesPath string `mapstructure:"custom_tables_path"` // 替换表叠加文件（TOML）
}

// LoadConfig 加载配置。configPath 为空时在家目录和当前目录找 .latexfixer.yaml，
// 找不到配置文件就用默认值。
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".latexfixer")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("LATEXFIXER")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("image_extensions", []string{".png", ".pdf", ".jpg", ".jpeg", ".eps"})
	v.SetDefault("max_fix_rounds", 3)
	v.SetDefault("compile_timeout", 60)
	v.SetDefault("custom_tables_path", "")
}
