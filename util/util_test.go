package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"10MB":    10 << 20,
		" 512kb ": 512 << 10,
		"2GB":     2 << 30,
		"2048":    2048,
		"64B":     64,
		"":        7,
		"lots":    7,
		"-1MB":    7,
		"1.5MB":   7,
	}
	for in, want := range tests {
		if got := ParseSize(in, 7); got != want {
			t.Errorf("ParseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("sk-abcdef", 4); got != "sk-a***" {
		t.Errorf("got %q", got)
	}
	if got := MaskSecret("abc", 4); got != "***" {
		t.Errorf("short secret leaked: %q", got)
	}
}

func TestSanitizeEnvValue(t *testing.T) {
	tests := map[string]string{
		"  key\n":      "key",
		`"quoted"`:     "quoted",
		`'single'`:     "single",
		`"mismatched'`: `"mismatched'`,
		`" padded "`:   "padded",
		`"`:            `"`,
	}
	for in, want := range tests {
		if got := SanitizeEnvValue(in); got != want {
			t.Errorf("SanitizeEnvValue(%q) = %q, want %q", in, got, want)
		}
	}
}
