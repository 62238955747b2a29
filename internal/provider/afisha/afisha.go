package afisha

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/kinotop/internal/domain"
)

// DefaultURL 是莫斯科影院排片页。
const DefaultURL = "http://www.afisha.ru/msk/schedule_cinema/"

const (
	blockSelector = "div.object.s-votes-hover-area.collapsed"
	titleSelector = "h3.usetags"
	venueSelector = "td.b-td-item"
)

// StructureError 表示排片块存在但缺少标题节点。
// 这通常意味着站点改版，需要人工更新选择器，因此不做静默跳过。
type StructureError struct {
	Block    int // 0-based
	Selector string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("afisha: в блоке №%d нет заголовка %q (структура страницы изменилась?)", e.Block+1, e.Selector)
}

// ParseListing 从排片页提取“影片 + 影院数”。
//
// 规则：
// - 没有任何排片块：返回空切片（“今天没有放映”是合法状态）
// - 排片块缺少标题：返回 *StructureError
// - Parse 是纯函数：相同输入 => 相同输出
func ParseListing(html []byte) ([]domain.ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	items := make([]domain.ListingItem, 0, 64)
	var perr error
	doc.Find(blockSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		h := s.Find(titleSelector).First()
		if h.Length() == 0 {
			perr = &StructureError{Block: i, Selector: titleSelector}
			return false
		}
		items = append(items, domain.ListingItem{
			Title:      normSpace(h.Text()),
			VenueCount: s.Find(venueSelector).Length(),
		})
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return items, nil
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
