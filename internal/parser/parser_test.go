package parser_test

import (
	"testing"

	"github.com/schedulellm/schedulellm-go/internal/parser"
)

func TestParseCellCanonical(t *testing.T) {
	t.Parallel()

	records := parser.ParseCell("软件工程/1-16周(单)/N608/软件2101班")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.DisplayName != "软件工程" {
		t.Errorf("DisplayName = %q, want 软件工程", rec.DisplayName)
	}
	wantWeeks := []int{1, 3, 5, 7, 9, 11, 13, 15}
	if len(rec.Weeks) != len(wantWeeks) {
		t.Fatalf("Weeks = %v, want %v", rec.Weeks, wantWeeks)
	}
	for i, w := range wantWeeks {
		if rec.Weeks[i] != w {
			t.Fatalf("Weeks = %v, want %v", rec.Weeks, wantWeeks)
		}
	}
	if rec.WeeksRaw != "1-16周(单)" {
		t.Errorf("WeeksRaw = %q, want 1-16周(单)", rec.WeeksRaw)
	}
	if rec.Location != "N608" || rec.Room != "N608" {
		t.Errorf("Location/Room = %q/%q, want N608/N608", rec.Location, rec.Room)
	}
	if rec.ClassName != "软件2101班" {
		t.Errorf("ClassName = %q, want 软件2101班", rec.ClassName)
	}
	if rec.Confidence < 0.89 || rec.Confidence > 0.91 {
		t.Errorf("Confidence = %v, want 0.9", rec.Confidence)
	}
}

func TestSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "two anchored entries",
			input: "软件工程/1-8周/N608\n高等数学/9-16周/S103",
			want:  []string{"软件工程/1-8周/N608", "高等数学/9-16周/S103"},
		},
		{
			name:  "single entry stays whole",
			input: "软件工程/1-8周/N608",
			want:  []string{"软件工程/1-8周/N608"},
		},
		{
			name:  "line buffer fallback without slashes",
			input: "软件工程 1-8周 N608\n高等数学 9-16周 S103",
			want:  []string{"软件工程 1-8周 N608", "高等数学 9-16周 S103"},
		},
		{
			name:  "continuation lines glued to buffer",
			input: "软件工程\n1-8周 N608",
			want:  []string{"软件工程 1-8周 N608"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parser.Segment(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Segment() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("week inside first part yields unknown name", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("1-16周/N608")
		if rec.DisplayName != "未知课程" {
			t.Errorf("DisplayName = %q, want 未知课程", rec.DisplayName)
		}
		if len(rec.Weeks) != 16 {
			t.Errorf("got %d weeks, want 16", len(rec.Weeks))
		}
	})

	t.Run("pure digit tokens are not rooms", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("军训/1-2周/426/0")
		if rec.Location != "待通知" {
			t.Errorf("Location = %q, want 待通知", rec.Location)
		}
	})

	t.Run("standalone room accepted after building token", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("电影赏析/5-12周/北苑电影大楼/414")
		if rec.Building != "北苑电影大楼" || rec.Room != "414" {
			t.Errorf("Building/Room = %q/%q, want 北苑电影大楼/414", rec.Building, rec.Room)
		}
	})

	t.Run("period range from week part", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("软件工程/(1-2节)3-16周/N608")
		if rec.PeriodRange != "1-2" {
			t.Errorf("PeriodRange = %q, want 1-2", rec.PeriodRange)
		}
		if len(rec.Weeks) != 14 || rec.Weeks[0] != 3 || rec.Weeks[13] != 16 {
			t.Errorf("Weeks = %v, want 3..16", rec.Weeks)
		}
	})

	t.Run("head count is not a class name", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("体育/1-16周/人数:30")
		if rec.ClassName != "" {
			t.Errorf("ClassName = %q, want empty", rec.ClassName)
		}
	})

	t.Run("missing week expression falls back to positional fields", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("素描基础/美术馆画室/美术2102班")
		if rec.DisplayName != "素描基础" {
			t.Errorf("DisplayName = %q, want 素描基础", rec.DisplayName)
		}
		if len(rec.Weeks) != 0 {
			t.Errorf("Weeks = %v, want empty", rec.Weeks)
		}
		if rec.ClassName != "美术2102班" {
			t.Errorf("ClassName = %q, want 美术2102班", rec.ClassName)
		}
	})

	t.Run("multiple class names joined with comma", func(t *testing.T) {
		t.Parallel()

		rec := parser.Extract("大学英语/1-16周/软件2101班/软件2102班")
		if rec.ClassName != "软件2101班,软件2102班" {
			t.Errorf("ClassName = %q, want 软件2101班,软件2102班", rec.ClassName)
		}
	})
}
