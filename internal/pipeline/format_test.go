package pipeline

import "testing"

func TestTranslateColorCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"&cRuby Sword", "§cRuby Sword"},
		{"&LBold", "§lBold"},
		{"Fish & Chips", "Fish & Chips"},
		{"&zNope", "&zNope"},
		{"trailing&", "trailing&"},
		{"&a&lGreen", "§a§lGreen"},
	}
	for _, tt := range tests {
		if got := TranslateColorCodes(tt.in); got != tt.want {
			t.Errorf("TranslateColorCodes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripColorCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"§cRuby Sword", "Ruby Sword"},
		{"§a§lGreen", "Green"},
		{"no codes", "no codes"},
		{"§", "§"},
	}
	for _, tt := range tests {
		if got := StripColorCodes(tt.in); got != tt.want {
			t.Errorf("StripColorCodes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
