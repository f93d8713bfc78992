package gateway

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		50000:    "50.000",
		1500000:  "1.500.000",
		9000000:  "9.000.000",
		-1500000: "-1.500.000",
		1234.99:  "1.234",
	}
	for amount, want := range cases {
		if got := FormatNumber(amount); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", amount, got, want)
		}
	}
}

func TestMaskTail(t *testing.T) {
	cases := map[string]string{
		"nguyenvan": "nguyen***",
		"abc":       "***",
		"ab":        "***",
		"":          "***",
		"ngườibán":  "người***",
	}
	for in, want := range cases {
		if got := MaskTail(in); got != want {
			t.Errorf("MaskTail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	cases := map[string]string{
		"0123456789": "0123.456.789",
		"shortnum":   "shortnum",
		"":           "",
	}
	for in, want := range cases {
		if got := FormatPhone(in); got != want {
			t.Errorf("FormatPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
