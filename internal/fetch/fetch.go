package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"
)

// DefaultEncoding 是页面正文的默认编码（两个站点都返回 UTF-8）。
const DefaultEncoding = "utf-8"

// Error 表示页面不可用：网络错误、DNS 失败、超时或非 2xx 状态码。
// 上层只需把它当作“不可用”信号，具体原因用于日志。
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// Fetcher 执行单次 GET 并返回解码后的页面文本。
//
// 约束：
// - 不缓存、不重试、不限速
// - 任何失败都以 *Error 返回，绝不 panic
type Fetcher struct {
	client   *http.Client
	encoding string
	log      *slog.Logger
}

// New 构造 Fetcher。encoding 为空时使用 DefaultEncoding；log 为空时丢弃日志。
func New(c *http.Client, encoding string, log *slog.Logger) *Fetcher {
	if strings.TrimSpace(encoding) == "" {
		encoding = DefaultEncoding
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fetcher{client: c, encoding: encoding, log: log}
}

// Fetch 请求 rawURL（params 会合并进已有 query 并做 URL 编码）。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (string, error) {
	text, err := f.fetch(ctx, rawURL, params)
	if err != nil {
		f.log.Debug("fetch failed", "url", rawURL, "err", err)
		return "", &Error{URL: rawURL, Err: err}
	}
	return text, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, params url.Values) (string, error) {
	if f == nil || f.client == nil {
		return "", errors.New("http client не задан")
	}

	u, err := BuildURL(rawURL, params)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPStatusError{StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}

	r, err := charset.NewReaderLabel(f.encoding, resp.Body)
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BuildURL 把 params 合并进 rawURL 的 query。
func BuildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("некорректный URL: %q", rawURL)
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
