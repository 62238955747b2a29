package afisha

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/John-Robertt/kinotop/internal/domain"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("读取 fixture 失败：%v", err)
	}
	return b
}

func TestParseListing_Schedule(t *testing.T) {
	items, err := ParseListing(readFixture(t, "schedule.html"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	want := []domain.ListingItem{
		{Title: "Дюна: Часть вторая", VenueCount: 3},
		{Title: "Мастер и Маргарита", VenueCount: 1},
		{Title: "Ограниченный показ", VenueCount: 0},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("解析结果不符合预期：\ngot=%+v\nwant=%+v", items, want)
	}
}

func TestParseListing_EmptyPageIsNotAnError(t *testing.T) {
	items, err := ParseListing(readFixture(t, "empty.html"))
	if err != nil {
		t.Fatalf("空排片页不应报错：%v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("期望空切片，实际 %+v", items)
	}
}

func TestParseListing_EmptyInput(t *testing.T) {
	items, err := ParseListing(nil)
	if err != nil {
		t.Fatalf("空输入不应报错：%v", err)
	}
	if len(items) != 0 {
		t.Fatalf("期望空切片，实际 %+v", items)
	}
}

func TestParseListing_MissingTitleIsStructureError(t *testing.T) {
	_, err := ParseListing(readFixture(t, "broken.html"))
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("期望 *StructureError，实际 %v", err)
	}
	if se.Block != 1 {
		t.Fatalf("期望定位到第 2 个块（Block=1），实际 %d", se.Block)
	}
}
