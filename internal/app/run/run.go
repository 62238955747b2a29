package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/John-Robertt/kinotop/internal/app/enrich"
	"github.com/John-Robertt/kinotop/internal/config"
	"github.com/John-Robertt/kinotop/internal/domain"
	"github.com/John-Robertt/kinotop/internal/fetch"
	"github.com/John-Robertt/kinotop/internal/infra/httpx"
	"github.com/John-Robertt/kinotop/internal/logging"
	"github.com/John-Robertt/kinotop/internal/provider/afisha"
	"github.com/John-Robertt/kinotop/internal/provider/kinopoisk"
)

// UnavailableError 表示排片页无法抓取：整次运行必须终止。
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("страница недоступна: %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Execute 执行一次完整流程：抓取排片页 -> 解析 -> 并发查询评分。
//
// 错误分级：
// - 排片页抓取失败：*UnavailableError（不会再发出任何检索请求）
// - 排片页结构异常：*afisha.StructureError（包装后返回）
// - 单条评分查询失败：在 Resolver 内降级为 0/0，不影响其他条目
//
// 返回的条目与排片一一对应，尚未排序/过滤（由 report 负责）。
func Execute(ctx context.Context, eff config.EffectiveConfig, log *slog.Logger, obs Observer) ([]domain.EnrichedMovie, error) {
	if log == nil {
		log = logging.Discard()
	}
	if obs != nil {
		obs.OnConfig(eff)
	}

	client, err := httpx.NewClient(httpx.Options{
		ConnectTimeout: eff.ConnectTimeout,
		ReadTimeout:    eff.ReadTimeout,
		ProxyURL:       eff.ProxyURL,
	})
	if err != nil {
		return nil, fmt.Errorf("некорректный proxy.url: %w", err)
	}
	f := fetch.New(client, eff.Encoding, log)

	started := time.Now()
	text, err := f.Fetch(ctx, eff.ListingURL, nil)
	if err != nil {
		return nil, &UnavailableError{URL: eff.ListingURL, Err: err}
	}

	items, err := afisha.ParseListing([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать афишу: %w", err)
	}
	log.Info("listing parsed", "url", eff.ListingURL, "movies", len(items))
	if obs != nil {
		obs.OnListing(eff.ListingURL, len(items), time.Since(started))
	}

	var eobs enrich.Observer
	if obs != nil {
		eobs = obs
	}
	resolver := kinopoisk.NewResolver(f, eff.SearchURL, log)
	movies := enrich.NewPool(resolver, eff.Concurrency, eobs).EnrichAll(ctx, items)

	unknown := 0
	for _, m := range movies {
		if !m.Found {
			unknown++
		}
	}
	log.Info("ratings resolved", "movies", len(movies), "unknown", unknown)
	return movies, nil
}
