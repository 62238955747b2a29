package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/John-Robertt/kinotop/internal/domain"
)

func movie(title, rating string, votes, venues int) domain.EnrichedMovie {
	return domain.EnrichedMovie{Title: title, Rating: rating, Votes: votes, VenueCount: venues, Found: rating != "0"}
}

func titles(ms []domain.EnrichedMovie) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Title)
	}
	return out
}

func TestSelect_FilterAfterSort(t *testing.T) {
	in := []domain.EnrichedMovie{
		movie("r7", "7.0", 1, 10),
		movie("r9", "9.0", 1, 2),
		movie("r8", "8.0", 1, 5),
	}
	got := Select(in, Options{Top: 10, MinVenues: 5, MinVenuesSet: true})
	if want := []string{"r8", "r7"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("过滤结果不符合预期：got=%v want=%v", titles(got), want)
	}
}

func TestSelect_FilterBeforeTruncate(t *testing.T) {
	in := []domain.EnrichedMovie{
		movie("a", "9.0", 1, 1),
		movie("b", "8.0", 1, 1),
		movie("c", "7.0", 1, 6),
		movie("d", "6.0", 1, 6),
	}
	got := Select(in, Options{Top: 1, MinVenues: 5, MinVenuesSet: true})
	if want := []string{"c"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("应先过滤再截断：got=%v want=%v", titles(got), want)
	}
}

func TestSelect_StableAndNonIncreasing(t *testing.T) {
	in := []domain.EnrichedMovie{
		movie("z1", "0", 0, 1),
		movie("a", "7.5", 10, 1),
		movie("b", "7.50", 20, 1),
		movie("z2", "0", 0, 1),
		movie("c", "8", 5, 1),
		movie("d", "7.5", 30, 1),
		movie("z3", "n/a", 0, 1),
	}
	got := Select(in, Options{Top: 100})

	want := []string{"c", "a", "b", "d", "z1", "z2", "z3"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("排序不稳定或不正确：got=%v want=%v", titles(got), want)
	}
	for i := 1; i < len(got); i++ {
		if got[i].RatingValue() > got[i-1].RatingValue() {
			t.Fatalf("评分应非递增：%v", titles(got))
		}
	}
}

func TestSelect_TopAndNoMutation(t *testing.T) {
	in := []domain.EnrichedMovie{
		movie("low", "1.0", 1, 1),
		movie("high", "9.0", 1, 1),
		movie("mid", "5.0", 1, 1),
	}
	orig := append([]domain.EnrichedMovie(nil), in...)

	got := Select(in, Options{Top: 2})
	if want := []string{"high", "mid"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("截断结果不符合预期：got=%v want=%v", titles(got), want)
	}
	if !reflect.DeepEqual(in, orig) {
		t.Fatalf("Select 不应修改入参：%v", titles(in))
	}
	if got := Select(in, Options{Top: 0}); len(got) != 0 {
		t.Fatalf("Top=0 应输出 0 行，实际 %v", titles(got))
	}
	if got := Select(in, Options{Top: -3}); len(got) != 0 {
		t.Fatalf("Top<0 应输出 0 行，实际 %v", titles(got))
	}
}

func TestFormat_Layout(t *testing.T) {
	in := []domain.EnrichedMovie{
		movie("Movie B", "0", 0, 1),
		movie("Movie A", "7.5", 1000, 3),
	}
	got := Format(in, Options{Top: DefaultTop})

	header := " №  " + "ФИЛЬМ" + strings.Repeat(" ", 35) + " " +
		"   РЕЙТИНГ" + " " + "    ГОЛОСА" + " " + "КИНОТЕАТРЫ" + " \n"
	rowA := "01. " + "Movie A" + strings.Repeat(" ", 33) + " " +
		strings.Repeat(" ", 7) + "7.5" + " " + strings.Repeat(" ", 6) + "1000" + " " + strings.Repeat(" ", 9) + "3" + " \n"
	rowB := "02. " + "Movie B" + strings.Repeat(" ", 33) + " " +
		strings.Repeat(" ", 9) + "0" + " " + strings.Repeat(" ", 9) + "0" + " " + strings.Repeat(" ", 9) + "1" + " \n"
	want := header + "\n" + rowA + rowB

	if got != want {
		t.Fatalf("表格不符合预期：\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormat_PadsByRunes(t *testing.T) {
	got := Format([]domain.EnrichedMovie{movie("Дюна", "8.3", 5, 2)}, Options{Top: 1})
	lines := strings.Split(got, "\n")
	if len(lines) < 3 {
		t.Fatalf("输出行数不足：%q", got)
	}
	row := lines[2]
	if n := utf8.RuneCountInString(row); n != 3+1+40+1+10+1+10+1+10+1 {
		t.Fatalf("行宽（按字符）不符合预期：%d %q", n, row)
	}
	if !strings.HasPrefix(row, "01. Дюна"+strings.Repeat(" ", 36)+" ") {
		t.Fatalf("片名应按字符数左对齐补齐到 40：%q", row)
	}
}

func TestFormat_RankWidths(t *testing.T) {
	in := make([]domain.EnrichedMovie, 0, 100)
	for i := 0; i < 100; i++ {
		in = append(in, movie("m", "1", 0, 0))
	}
	lines := strings.Split(Format(in, Options{Top: 100}), "\n")
	if !strings.HasPrefix(lines[2], "01. ") {
		t.Fatalf("第 1 行序号不符合预期：%q", lines[2])
	}
	if !strings.HasPrefix(lines[11], "10. ") {
		t.Fatalf("第 10 行序号不符合预期：%q", lines[11])
	}
	if !strings.HasPrefix(lines[101], "100. ") {
		t.Fatalf("第 100 行序号不符合预期：%q", lines[101])
	}
}

func TestFormat_Idempotent(t *testing.T) {
	in := []domain.EnrichedMovie{
		movie("a", "7.0", 10, 3),
		movie("b", "7.0", 20, 4),
		movie("c", "9.1", 30, 1),
	}
	opts := Options{Top: 2, MinVenues: 1, MinVenuesSet: true}
	first := Format(in, opts)
	for i := 0; i < 5; i++ {
		if again := Format(in, opts); again != first {
			t.Fatalf("Format 应是纯函数：\n%q\n%q", first, again)
		}
	}
}

func TestRender_WritesFormat(t *testing.T) {
	in := []domain.EnrichedMovie{movie("a", "7.0", 10, 3)}
	var buf bytes.Buffer
	if err := Render(&buf, in, Options{Top: 10}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if buf.String() != Format(in, Options{Top: 10}) {
		t.Fatalf("Render 输出应与 Format 一致")
	}
}
