package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/John-Robertt/kinotop/internal/domain"
)

// DefaultTop 是默认输出的行数。
const DefaultTop = 10

const (
	rankWidth  = 3
	titleWidth = 40
	numWidth   = 10
)

// Options 控制排序后的过滤与截断。
type Options struct {
	Top int

	// MinVenues 仅在 MinVenuesSet=true 时生效：只保留影院数 >= MinVenues 的影片。
	MinVenues    int
	MinVenuesSet bool
}

// Select 按固定顺序处理：评分降序稳定排序 -> 影院数过滤 -> 截断到 Top。
// 不修改入参切片。
func Select(movies []domain.EnrichedMovie, opts Options) []domain.EnrichedMovie {
	sorted := append([]domain.EnrichedMovie(nil), movies...)
	// 评分相同保持输入顺序。
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RatingValue() > sorted[j].RatingValue()
	})

	// 过滤必须在排序之后、截断之前。
	if opts.MinVenuesSet {
		kept := sorted[:0]
		for _, m := range sorted {
			if m.VenueCount >= opts.MinVenues {
				kept = append(kept, m)
			}
		}
		sorted = kept
	}

	top := opts.Top
	if top < 0 {
		top = 0
	}
	if top < len(sorted) {
		sorted = sorted[:top]
	}
	return sorted
}

// Format 返回完整的表格文本（纯函数：相同输入 => 相同输出）。
func Format(movies []domain.EnrichedMovie, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %-*s %*s %*s %*s \n",
		center("№", rankWidth),
		titleWidth, "ФИЛЬМ",
		numWidth, "РЕЙТИНГ",
		numWidth, "ГОЛОСА",
		numWidth, "КИНОТЕАТРЫ",
	)
	b.WriteString("\n")

	for i, m := range Select(movies, opts) {
		fmt.Fprintf(&b, "%s %-*s %*s %*d %*d \n",
			zeroPad(strconv.Itoa(i+1)+".", rankWidth),
			titleWidth, m.Title,
			numWidth, m.Rating,
			numWidth, m.Votes,
			numWidth, m.VenueCount,
		)
	}
	return b.String()
}

// Render 把表格写入 w。
func Render(w io.Writer, movies []domain.EnrichedMovie, opts Options) error {
	_, err := io.WriteString(w, Format(movies, opts))
	return err
}

// zeroPad 左侧补 '0' 到 width 个字符（"1." -> "01."）。
func zeroPad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat("0", width-n) + s
}

// center 居中；无法均分时多出的空格放右侧。
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
