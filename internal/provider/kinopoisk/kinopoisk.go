package kinopoisk

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/kinotop/internal/domain"
)

// DefaultSearchURL 是 Кинопоиск 的检索入口（query 参数为 kp_query）。
const DefaultSearchURL = "https://www.kinopoisk.ru/index.php"

const queryParam = "kp_query"

var (
	ratingClassRE = regexp.MustCompile(`rating .*`)
	votesRE       = regexp.MustCompile(` \((.*)\)`)
	leadingDigits = regexp.MustCompile(`^[0-9]+`)
)

// ParseRating 从检索结果页提取“最相关结果”的评分与票数。
//
// 结构约定：
// - 容器：div.element.most_wanted
// - 评分元素：容器内 class 匹配 "rating .*" 的 div；文本为评分
// - title 属性形如 "7.5 (1 000)" 或 "7.5 (1 000 голосов)"，括号内为票数
//
// 任何一环缺失都返回 (UnknownRating, false)：这是“未找到/暂无评分”，不是错误。
func ParseRating(html []byte) (domain.RatingInfo, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.UnknownRating(), false
	}

	box := doc.Find("div.element.most_wanted").First()
	if box.Length() == 0 {
		return domain.UnknownRating(), false
	}

	el := box.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && ratingClassRE.MatchString(class)
	}).First()
	if el.Length() == 0 {
		return domain.UnknownRating(), false
	}

	rating := strings.TrimSpace(el.Text())
	if rating == "" {
		return domain.UnknownRating(), false
	}

	title, ok := el.Attr("title")
	if !ok {
		return domain.UnknownRating(), false
	}
	m := votesRE.FindStringSubmatch(title)
	if m == nil {
		return domain.UnknownRating(), false
	}

	return domain.RatingInfo{
		Rating: rating,
		Votes:  parseVotes(m[1]),
		Found:  true,
	}, true
}

// parseVotes 去掉空白（含 NBSP）与千分位分隔符后取开头的数字。
func parseVotes(s string) int {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' || r == '\'' {
			return -1
		}
		return r
	}, s)
	d := leadingDigits.FindString(s)
	if d == "" {
		return 0
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0
	}
	return n
}

// PageFetcher 是 Resolver 依赖的最小抓取接口（*fetch.Fetcher 实现了它）。
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (string, error)
}

// Resolver 为单个片名查询评分。
//
// 约束：Resolve 永不失败；抓取失败或未找到都降级为 UnknownRating。
type Resolver struct {
	fetcher   PageFetcher
	searchURL string
	log       *slog.Logger
}

// NewResolver 构造 Resolver。searchURL 为空时使用 DefaultSearchURL。
func NewResolver(f PageFetcher, searchURL string, log *slog.Logger) *Resolver {
	if strings.TrimSpace(searchURL) == "" {
		searchURL = DefaultSearchURL
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{fetcher: f, searchURL: searchURL, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, title string) domain.RatingInfo {
	if r.fetcher == nil {
		return domain.UnknownRating()
	}
	text, err := r.fetcher.Fetch(ctx, r.searchURL, url.Values{queryParam: {title}})
	if err != nil {
		r.log.Debug("rating lookup unavailable", "title", title, "err", err)
		return domain.UnknownRating()
	}
	info, ok := ParseRating([]byte(text))
	if !ok {
		r.log.Debug("rating not found", "title", title)
		return domain.UnknownRating()
	}
	return info
}
