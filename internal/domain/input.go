// Package domain contains the core value types of the search engine:
// controller inputs, RAM images, movies, and checkpoints. It is the
// innermost ring — no infrastructure imports.
package domain

import "strings"

// RAMSize is the size of the console work RAM in bytes.
const RAMSize = 2048

// MotifLength is the fixed length of an input motif.
const MotifLength = 10

// Controller button bits. The byte layout follows the FM2 column order
// RLDUTSBA, bit 7 down to bit 0.
const (
	BtnA     byte = 1 << 0
	BtnB     byte = 1 << 1
	BtnSel   byte = 1 << 2 // S
	BtnStart byte = 1 << 3 // T
	BtnUp    byte = 1 << 4
	BtnDown  byte = 1 << 5
	BtnLeft  byte = 1 << 6
	BtnRight byte = 1 << 7
)

// buttonGlyphs is the FM2 column order, highest bit first.
var buttonGlyphs = [8]byte{'R', 'L', 'D', 'U', 'T', 'S', 'B', 'A'}

// FormatInput renders an input byte as an FM2 button column string,
// e.g. "R....S.A".
func FormatInput(in byte) string {
	var b strings.Builder
	for i := 7; i >= 0; i-- {
		if in&(1<<uint(i)) != 0 {
			b.WriteByte(buttonGlyphs[7-i])
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParseInput parses an FM2 button column string back into an input
// byte. Any character other than '.' and ' ' counts as pressed.
func ParseInput(s string) byte {
	var in byte
	for i := 0; i < len(s) && i < 8; i++ {
		if s[i] != '.' && s[i] != ' ' {
			in |= 1 << uint(7-i)
		}
	}
	return in
}

// DualizeInput swaps each button with its opposite: Right↔Left,
// Up↔Down, Start↔Select, B↔A. It is an involution.
func DualizeInput(in byte) byte {
	var out byte
	if in&BtnRight != 0 {
		out |= BtnLeft
	}
	if in&BtnLeft != 0 {
		out |= BtnRight
	}
	if in&BtnUp != 0 {
		out |= BtnDown
	}
	if in&BtnDown != 0 {
		out |= BtnUp
	}
	if in&BtnStart != 0 {
		out |= BtnSel
	}
	if in&BtnSel != 0 {
		out |= BtnStart
	}
	if in&BtnB != 0 {
		out |= BtnA
	}
	if in&BtnA != 0 {
		out |= BtnB
	}
	return out
}

// Dualize applies DualizeInput to inputs[start:start+length] in place.
func Dualize(inputs []byte, start, length int) {
	for i := start; i < start+length && i < len(inputs); i++ {
		inputs[i] = DualizeInput(inputs[i])
	}
}

// Reverse reverses inputs[start:start+length] in place.
func Reverse(inputs []byte, start, length int) {
	i, j := start, start+length-1
	for i < j {
		inputs[i], inputs[j] = inputs[j], inputs[i]
		i++
		j--
	}
}
