package run

import (
	"time"

	"github.com/John-Robertt/kinotop/internal/app/enrich"
	"github.com/John-Robertt/kinotop/internal/config"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（stdout 只留给最终表格）。
// - Observer 的实现必须并发安全：条目事件来自多个 goroutine。
type Observer interface {
	enrich.Observer

	// OnConfig 在 Execute 开始时调用。
	OnConfig(eff config.EffectiveConfig)
	// OnListing 在排片页抓取并解析完成后调用；排片页失败时不会调用。
	OnListing(listingURL string, movies int, dur time.Duration)
}
