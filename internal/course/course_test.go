package course_test

import (
	"math"
	"testing"

	"github.com/schedulellm/schedulellm-go/internal/course"
)

func TestSimplifyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "软件工程", "软件工程"},
		{"empty", "", ""},
		{"keeps first bracket pair", "大学英语(三)补充说明", "大学英语(三)"},
		{"full width brackets", "高等数学（二）第二部分", "高等数学（二）"},
		{"trailing slash", "软件工程/", "软件工程"},
		{"trailing dash and spaces", "数据结构 - ", "数据结构"},
		{"interior whitespace removed", "软件 工程 导论", "软件工程导论"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := course.SimplifyName(tt.input); got != tt.want {
				t.Errorf("SimplifyName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStandardize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   course.Record
		want course.Record
	}{
		{
			name: "full record",
			in: course.Record{
				DisplayName: "软件 工程",
				ClassName:   "(软件2101n班)",
				Location:    "桂林洋一教203",
				Teacher:     "张 三",
			},
			want: course.Record{
				DisplayName: "软件工程",
				ClassName:   "软件2101N班",
				Location:    "一教203",
				Building:    "一教",
				Room:        "203",
				Teacher:     "张三",
			},
		},
		{
			name: "empty location becomes placeholder",
			in:   course.Record{DisplayName: "高等数学"},
			want: course.Record{DisplayName: "高等数学", Location: "待通知"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.in
			course.Standardize(&got)
			if got.DisplayName != tt.want.DisplayName {
				t.Errorf("DisplayName = %q, want %q", got.DisplayName, tt.want.DisplayName)
			}
			if got.ClassName != tt.want.ClassName {
				t.Errorf("ClassName = %q, want %q", got.ClassName, tt.want.ClassName)
			}
			if got.Location != tt.want.Location {
				t.Errorf("Location = %q, want %q", got.Location, tt.want.Location)
			}
			if got.Building != tt.want.Building {
				t.Errorf("Building = %q, want %q", got.Building, tt.want.Building)
			}
			if got.Room != tt.want.Room {
				t.Errorf("Room = %q, want %q", got.Room, tt.want.Room)
			}
			if got.Teacher != tt.want.Teacher {
				t.Errorf("Teacher = %q, want %q", got.Teacher, tt.want.Teacher)
			}
		})
	}
}

func TestComputeConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  course.Record
		want float64
	}{
		{
			name: "all fields",
			rec: course.Record{
				DisplayName: "软件工程",
				Weeks:       []int{1, 2, 3},
				Location:    "N608",
				ClassName:   "软件2101班",
				PeriodRange: "1-2",
			},
			want: 1.0,
		},
		{
			name: "unknown name scores zero for name",
			rec: course.Record{
				DisplayName: course.UnknownName,
				Weeks:       []int{1},
			},
			want: 0.3,
		},
		{
			name: "placeholder location scores zero for location",
			rec: course.Record{
				DisplayName: "软件工程",
				Location:    "待通知",
			},
			want: 0.3,
		},
		{
			name: "empty record",
			rec:  course.Record{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := course.ComputeConfidence(tt.rec)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}
