package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

// bomUTF8 is the UTF-8 Byte Order Mark.
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize performs input normalization at the lexer boundary:
//  1. strips a leading UTF-8 BOM, if present;
//  2. applies Unicode NFC normalization;
//  3. ensures the source ends with a trailing newline.
//
// This ensures that lexically equivalent source code produces identical
// token streams regardless of encoding variations (e.g. "café" in NFC vs
// NFD form), which matters because SPy identifiers may contain non-ASCII
// code points. The trailing newline guarantee keeps the last logical
// line's NEWLINE token from being swallowed by end-of-file DEDENT/EOF
// synthesis, so every statement (including the last one in a file) ends
// the same way regardless of its position.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	if len(src) > 0 && src[len(src)-1] != '\n' {
		src = append(src, '\n')
	}
	return src
}
