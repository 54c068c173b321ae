package domain

import "testing"

func TestDualizeInputPairs(t *testing.T) {
	tests := []struct {
		name string
		in   byte
		want byte
	}{
		{"right to left", BtnRight, BtnLeft},
		{"left to right", BtnLeft, BtnRight},
		{"up to down", BtnUp, BtnDown},
		{"start to select", BtnStart, BtnSel},
		{"a to b", BtnA, BtnB},
		{"combined", BtnRight | BtnA, BtnLeft | BtnB},
		{"empty", 0, 0},
		{"all", 0xFF, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DualizeInput(tt.in); got != tt.want {
				t.Errorf("DualizeInput(%#02x) = %#02x, want %#02x", tt.in, got, tt.want)
			}
		})
	}
}

func TestDualizeInvolution(t *testing.T) {
	for in := 0; in < 256; in++ {
		if got := DualizeInput(DualizeInput(byte(in))); got != byte(in) {
			t.Fatalf("DualizeInput not an involution at %#02x: got %#02x", in, got)
		}
	}

	inputs := []byte{BtnRight, BtnA | BtnUp, 0, 0xFF, BtnSel}
	want := append([]byte(nil), inputs...)
	Dualize(inputs, 1, 3)
	Dualize(inputs, 1, 3)
	for i := range inputs {
		if inputs[i] != want[i] {
			t.Errorf("double Dualize changed inputs[%d]: %#02x != %#02x", i, inputs[i], want[i])
		}
	}
}

func TestReverseInvolution(t *testing.T) {
	inputs := []byte{1, 2, 3, 4, 5, 6}
	want := append([]byte(nil), inputs...)
	Reverse(inputs, 1, 4)
	Reverse(inputs, 1, 4)
	for i := range inputs {
		if inputs[i] != want[i] {
			t.Errorf("double Reverse changed inputs[%d]: %d != %d", i, inputs[i], want[i])
		}
	}

	single := []byte{7, 8, 9}
	Reverse(single, 0, 3)
	if single[0] != 9 || single[1] != 8 || single[2] != 7 {
		t.Errorf("Reverse = %v, want [9 8 7]", single)
	}
}

func TestFormatParseInput(t *testing.T) {
	tests := []struct {
		in   byte
		want string
	}{
		{0, "........"},
		{BtnRight, "R......."},
		{BtnA, ".......A"},
		{BtnRight | BtnA, "R......A"},
		{BtnStart | BtnSel, "....TS.."},
		{0xFF, "RLDUTSBA"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatInput(tt.in); got != tt.want {
				t.Errorf("FormatInput(%#02x) = %q, want %q", tt.in, got, tt.want)
			}
			if got := ParseInput(tt.want); got != tt.in {
				t.Errorf("ParseInput(%q) = %#02x, want %#02x", tt.want, got, tt.in)
			}
		})
	}
}
