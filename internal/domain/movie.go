package domain

import (
	"strconv"
	"strings"
)

// ListingItem 是排片页中的一条“影片 + 影院列表”。
//
// 不变量：VenueCount >= 0；一次运行内只读。
type ListingItem struct {
	Title      string
	VenueCount int
}

// RatingInfo 是检索页解析得到的评分与票数。
//
// Rating 保留页面上的原始文本，数值解析推迟到排序阶段。
// Found=false 表示“未知”（抓取失败/未找到/尚无评分），此时 Rating="0"、Votes=0，
// 输出时与真实的 0 分无法区分；Found 只用于日志与进度展示。
type RatingInfo struct {
	Rating string
	Votes  int
	Found  bool
}

// UnknownRating 返回“未知评分”的哨兵值。
func UnknownRating() RatingInfo {
	return RatingInfo{Rating: "0", Votes: 0, Found: false}
}

// EnrichedMovie 是 ListingItem 与其 RatingInfo 的合并结果，也是报表的输入单元。
type EnrichedMovie struct {
	Title      string
	VenueCount int
	Rating     string
	Votes      int
	Found      bool
}

// Enrich 合并一条排片与其评分。
func Enrich(item ListingItem, info RatingInfo) EnrichedMovie {
	rating := strings.TrimSpace(info.Rating)
	if rating == "" {
		rating = "0"
	}
	return EnrichedMovie{
		Title:      item.Title,
		VenueCount: item.VenueCount,
		Rating:     rating,
		Votes:      info.Votes,
		Found:      info.Found,
	}
}

// RatingValue 把评分文本解析为浮点数（排序用）。
// 允许逗号作为小数点；无法解析时视为 0。
func (m EnrichedMovie) RatingValue() float64 {
	s := strings.TrimSpace(m.Rating)
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
