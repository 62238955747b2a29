package main

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/John-Robertt/kinotop/internal/app/run"
	"github.com/John-Robertt/kinotop/internal/config"
	"github.com/John-Robertt/kinotop/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的简洁进度输出。
//
// 所有过程信息写到 stderr，stdout 只留给最终表格。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	banner    bytes.Buffer
	startedAt time.Time
	workers   int
	unknown   int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

// OnConfig 只缓存启动信息：排片页不可用时 stderr 必须只有一行诊断，
// 所以要等 OnListing 才真正输出。
func (p *progressUI) OnConfig(eff config.EffectiveConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.banner.Reset()
	fmt.Fprintf(&p.banner, "[%s] kinotop\n", p.startedAt.Format("15:04:05"))
	fmt.Fprintf(&p.banner, "  афиша: %s\n", eff.ListingURL)
	fmt.Fprintf(&p.banner, "  поиск: %s\n", eff.SearchURL)
	fmt.Fprintf(&p.banner, "  потоков: %d, таймаут: %s/%s\n", eff.Concurrency, eff.ConnectTimeout, eff.ReadTimeout)
	if eff.ProxyURL != "" {
		fmt.Fprintf(&p.banner, "  прокси: %s\n", redactProxy(eff.ProxyURL))
	}
}

func (p *progressUI) OnListing(listingURL string, movies int, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.banner.WriteTo(p.w)
	fmt.Fprintf(p.w, "афиша: фильмов=%d (%s)\n", movies, formatShortDuration(dur))
}

func (p *progressUI) OnStart(total, workers int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.workers = workers
	fmt.Fprintf(p.w, "рейтинги: фильмов=%d потоков=%d\n", total, workers)
}

func (p *progressUI) OnItemDone(done, total int, m domain.EnrichedMovie, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := fmt.Sprintf("%s (%d)", m.Rating, m.Votes)
	if !m.Found {
		p.unknown++
		status = "нет рейтинга"
	}
	fmt.Fprintf(p.w, "[%d/%d] %s: %s (%s)\n", done, total, truncate(m.Title, 60), status, formatShortDuration(dur))
	if done == total {
		fmt.Fprintf(p.w, "готово: без рейтинга=%d, всего %s\n\n", p.unknown, formatShortDuration(time.Since(p.startedAt)))
	}
}

func formatShortDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// redactProxy 不回显代理凭据。
func redactProxy(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return truncate(raw, 120)
	}
	auth := "нет"
	if u.User != nil {
		auth = "да"
	}
	return fmt.Sprintf("%s://%s (авторизация: %s)", u.Scheme, u.Host, auth)
}
