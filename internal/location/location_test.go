package location

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		input        string
		wantLocation string
		wantBuilding string
		wantRoom     string
	}{
		{"empty input", "", "待通知", "", ""},
		{"whitespace only", "   ", "待通知", "", ""},
		{"campus noise stripped", "桂林洋一教203", "一教203", "一教", "203"},
		{"letter room", "N608", "N608", "", "N608"},
		{"building with letter room", "工程S308", "工程S308", "工程", "S308"},
		{"building only", "图书馆", "图书馆", "图书馆", ""},
		{"campus label prefix", "校区:一教101", "一教101", "一教", "101"},
		{"synonym substitution", "实验实训中心305", "实训楼305", "实训楼", "305"},
		{"room stuck to cohort label", "N60821软件1班", "N608", "", "N608"},
		{"digit letter suffix room", "电影大楼41A", "电影大楼41A", "电影大楼", "41A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.input)
			if got.Location != tt.wantLocation || got.Building != tt.wantBuilding || got.Room != tt.wantRoom {
				t.Errorf("Resolve(%q) = %+v, want {%s %s %s}",
					tt.input, got, tt.wantLocation, tt.wantBuilding, tt.wantRoom)
			}
		})
	}
}

func TestResolveRoomHasDigit(t *testing.T) {
	t.Parallel()
	got := Resolve("桂林洋一教203")
	if got.Room == "" || !strings.ContainsAny(got.Room, "0123456789") {
		t.Fatalf("room %q should contain a digit", got.Room)
	}
	if got.Building != "" && got.Room != "" && got.Location != got.Building &&
		got.Location != got.Building+got.Room {
		t.Errorf("location %q duplicates building/room %q %q", got.Location, got.Building, got.Room)
	}
}

func TestRepairPair(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		building     string
		room         string
		wantBuilding string
		wantRoom     string
	}{
		{"doubled leading letter", "教", "SS103", "教", "S103"},
		{"trailing letter duplication", "教S", "S103", "教", "S103"},
		{"both repairs", "教S", "SS103", "教", "S103"},
		{"no repair needed", "一教", "203", "一教", "203"},
		{"empty room untouched", "图书馆", "", "图书馆", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, r := RepairPair(tt.building, tt.room)
			if b != tt.wantBuilding || r != tt.wantRoom {
				t.Errorf("RepairPair(%q, %q) = %q, %q; want %q, %q",
					tt.building, tt.room, b, r, tt.wantBuilding, tt.wantRoom)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		building string
		room     string
		want     string
	}{
		{"plain concatenation", "一教", "203", "一教203"},
		{"single leading letter kept", "教S", "S103", "教S103"},
		{"building already ends with room", "一教203", "203", "一教203"},
		{"empty building", "", "N608", "N608"},
		{"empty room", "图书馆", "", "图书馆"},
		{"whitespace stripped", "一 教", "2 03", "一教203"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Merge(tt.building, tt.room); got != tt.want {
				t.Errorf("Merge(%q, %q) = %q, want %q", tt.building, tt.room, got, tt.want)
			}
		})
	}
}
