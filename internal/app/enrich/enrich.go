package enrich

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/kinotop/internal/domain"
)

const (
	// DefaultWorkers 是并发查询评分的默认 worker 数。
	DefaultWorkers = 4
	// MaxWorkers 是 worker 数上限（超出截断）。
	MaxWorkers = 32
)

// Resolver 为单个片名查询评分；实现必须永不失败（失败时返回 UnknownRating）。
type Resolver interface {
	Resolve(ctx context.Context, title string) domain.RatingInfo
}

// Observer 用于把进度事件从并发流程中解耦出来（由 CLI 决定如何展示）。
//
// 实现必须并发安全：事件来自多个 goroutine。
type Observer interface {
	OnStart(total, workers int)
	OnItemDone(done, total int, m domain.EnrichedMovie, dur time.Duration)
}

// Pool 以固定 worker 数并发查询每部影片的评分。
type Pool struct {
	resolver Resolver
	workers  int
	obs      Observer
}

// NewPool 构造 Pool。workers 越界时截断到 [1, MaxWorkers]；obs 可为 nil。
func NewPool(r Resolver, workers int, obs Observer) *Pool {
	if workers < 1 {
		workers = 1
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &Pool{resolver: r, workers: workers, obs: obs}
}

func (p *Pool) Workers() int { return p.workers }

// EnrichAll 为每个 item 查询评分，全部完成后才返回。
//
// 保证：
// - 输出条数 == 输入条数，且与输入一一对应（out[i] 对应 items[i]）
// - 单条失败只会降级为 UnknownRating，不会丢弃条目
// - 每个任务只写自己的槽位，无需加锁
func (p *Pool) EnrichAll(ctx context.Context, items []domain.ListingItem) []domain.EnrichedMovie {
	out := make([]domain.EnrichedMovie, len(items))
	if len(items) == 0 {
		return out
	}
	if p.obs != nil {
		p.obs.OnStart(len(items), p.workers)
	}

	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range items {
		i := i
		g.Go(func() error {
			started := time.Now()
			info := domain.UnknownRating()
			if p.resolver != nil {
				info = p.resolver.Resolve(ctx, items[i].Title)
			}
			out[i] = domain.Enrich(items[i], info)

			if p.obs != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				p.obs.OnItemDone(n, len(items), out[i], time.Since(started))
			}
			// worker 从不返回错误：单条失败已在 Resolver 内降级。
			return nil
		})
	}
	_ = g.Wait()
	return out
}
