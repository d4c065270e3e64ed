package render

import (
	"testing"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/truncate"
)

func TestRepairTags(t *testing.T) {
	marker := "\n" + truncate.Marker + "\n"
	tests := []struct {
		name, in, want string
	}{
		{"Untouched lines", "[white]a[-]\n[red]b[-]", "[white]a[-]\n[red]b[-]"},
		{"Leading fragment", "low]12:00 x[-]\n[red]b[-]", "12:00 x[-]\n[red]b[-]"},
		{"Open color before marker", "[yellow]12:00 xx" + marker + "yy[-]", "[yellow]12:00 xx[-]" + marker + "yy[-]"},
		{"Fragment after marker", "[white]a[-]" + marker + "d]12:00 b[-]", "[white]a[-]" + marker + "12:00 b[-]"},
		{"Indented trace after marker", "[white]a" + marker + "    a.go:1[-]", "[white]a[-]" + marker + "    a.go:1[-]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repairTags(tt.in); got != tt.want {
				t.Errorf("repairTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
