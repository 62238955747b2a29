package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/kinotop/internal/app/enrich"
	"github.com/John-Robertt/kinotop/internal/fetch"
	"github.com/John-Robertt/kinotop/internal/infra/httpx"
	"github.com/John-Robertt/kinotop/internal/provider/afisha"
	"github.com/John-Robertt/kinotop/internal/provider/kinopoisk"
	"github.com/John-Robertt/kinotop/internal/report"
)

const (
	// ErrCodeNotFound 表示显式指定的 --config 文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultFileName 是 cwd 下自动发现的配置文件名（可选）。
	DefaultFileName = "kinotop.yaml"
	// DefaultLogLevel 保证致命路径只有一行诊断输出。
	DefaultLogLevel = "warn"
)

// CLIArgs 是 CLI 暴露的入口，并保留“是否显式指定”的信息。
type CLIArgs struct {
	ConfigPath string

	Top    int
	TopSet bool

	MinVenues    int
	MinVenuesSet bool
}

// FileConfig 对应 kinotop.yaml 的解析结构。
type FileConfig struct {
	ListingURL     string        `yaml:"listing_url"`
	SearchURL      string        `yaml:"search_url"`
	Concurrency    int           `yaml:"concurrency"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	Encoding       string        `yaml:"encoding"`
	Proxy          *ProxyConfig  `yaml:"proxy"`
	LogLevel       string        `yaml:"log_level"`
	Top            *int          `yaml:"top"`
	Cinemas        *int          `yaml:"cinemas"`
}

type ProxyConfig struct {
	URL string `yaml:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置（下游直接消费，不再做默认值判断）。
type EffectiveConfig struct {
	ListingURL string
	SearchURL  string

	Concurrency    int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Encoding       string
	ProxyURL       string
	LogLevel       string

	Top          int
	MinVenues    int
	MinVenuesSet bool
}

// Default 返回内置默认配置。
func Default() EffectiveConfig {
	return EffectiveConfig{
		ListingURL:     afisha.DefaultURL,
		SearchURL:      kinopoisk.DefaultSearchURL,
		Concurrency:    enrich.DefaultWorkers,
		ConnectTimeout: httpx.DefaultConnectTimeout,
		ReadTimeout:    httpx.DefaultReadTimeout,
		Encoding:       fetch.DefaultEncoding,
		LogLevel:       DefaultLogLevel,
		Top:            report.DefaultTop,
	}
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: файл настроек %q не найден", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s: файл настроек %q некорректен: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: файл настроек %q некорректен", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取配置文件并与 CLI 参数合并。
//
// 发现规则：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/kinotop.yaml（可选）
//
// 覆盖优先级：CLI > 配置文件 > 默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	var (
		cfgPath string
		fc      FileConfig
	)

	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = p
		if !filepath.IsAbs(cfgPath) {
			cfgPath = filepath.Join(cwd, cfgPath)
		}
		var exists bool
		var err error
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		return merge(cli, fc, cfgPath)
	}

	cfgPath = filepath.Join(cwd, DefaultFileName)
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return merge(cli, fc, cfgPath)
}

func merge(cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	eff := Default()
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	if s := strings.TrimSpace(fc.ListingURL); s != "" {
		eff.ListingURL = s
	}
	if s := strings.TrimSpace(fc.SearchURL); s != "" {
		eff.SearchURL = s
	}
	if err := validateHTTPURL("listing_url", eff.ListingURL); err != nil {
		return invalid(err)
	}
	if err := validateHTTPURL("search_url", eff.SearchURL); err != nil {
		return invalid(err)
	}

	if fc.Concurrency != 0 {
		eff.Concurrency = fc.Concurrency
	}
	if eff.Concurrency < 1 {
		eff.Concurrency = 1
	}
	if eff.Concurrency > enrich.MaxWorkers {
		eff.Concurrency = enrich.MaxWorkers
	}

	if fc.ConnectTimeout < 0 || fc.ReadTimeout < 0 {
		return invalid(errors.New("connect_timeout/read_timeout не могут быть отрицательными"))
	}
	if fc.ConnectTimeout > 0 {
		eff.ConnectTimeout = fc.ConnectTimeout
	}
	if fc.ReadTimeout > 0 {
		eff.ReadTimeout = fc.ReadTimeout
	}

	if s := strings.TrimSpace(fc.Encoding); s != "" {
		if e, _ := charset.Lookup(s); e == nil {
			return invalid(fmt.Errorf("неизвестная кодировка: %q", s))
		}
		eff.Encoding = s
	}

	if fc.Proxy != nil {
		eff.ProxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if eff.ProxyURL != "" {
		if _, err := url.Parse(eff.ProxyURL); err != nil {
			return invalid(fmt.Errorf("некорректный proxy.url: %w", err))
		}
	}

	if s := strings.ToLower(strings.TrimSpace(fc.LogLevel)); s != "" {
		switch s {
		case "debug", "info", "warn", "warning", "error":
			eff.LogLevel = s
		default:
			return invalid(fmt.Errorf("log_level должен быть debug/info/warn/error, получено %q", fc.LogLevel))
		}
	}

	// top/cinemas：CLI > config > 默认
	if fc.Top != nil {
		if *fc.Top < 0 {
			return invalid(fmt.Errorf("top не может быть отрицательным: %d", *fc.Top))
		}
		eff.Top = *fc.Top
	}
	if fc.Cinemas != nil {
		if *fc.Cinemas < 0 {
			return invalid(fmt.Errorf("cinemas не может быть отрицательным: %d", *fc.Cinemas))
		}
		eff.MinVenues = *fc.Cinemas
		eff.MinVenuesSet = true
	}
	if cli.TopSet {
		eff.Top = cli.Top
	}
	if cli.MinVenuesSet {
		eff.MinVenues = cli.MinVenues
		eff.MinVenuesSet = true
	}

	return eff, nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("некорректный %s: %q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s должен быть http/https: %q", field, raw)
	}
	return nil
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
