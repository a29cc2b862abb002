// Package codec implements a lexicographically-sortable text encoding for
// entity identity hashes, so that identity byte order and identity text
// order always agree (needed by every ordered index in storage).
package codec

import (
	"errors"
	"fmt"
)

// Alphabet is ordered so that byte-wise hash comparison and string
// comparison of the encoded form produce the same ordering.
const Alphabet = "!$%&()+,-./" +
	"0123456789:;<=>@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ[]_`" +
	"abcdefghijklmnopqrstuvwxyz{}"

var (
	decodeTable [256]byte

	// ErrInvalidCharacter indicates an invalid character in encoded input.
	ErrInvalidCharacter = errors.New("codec: invalid L85 character")
)

func init() {
	for i, c := range Alphabet {
		decodeTable[byte(c)] = byte(i + 1) // 0 marks "invalid"
	}
}

// Encode converts raw bytes into their L85 text form, 4 input bytes to
// 5 output characters, big-endian within each group.
func Encode(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	out := make([]byte, 0, len(src)*5/4+5)

	for i := 0; i+4 <= len(src); i += 4 {
		v := uint32(src[i])<<24 | uint32(src[i+1])<<16 |
			uint32(src[i+2])<<8 | uint32(src[i+3])
		var chars [5]byte
		for j := 4; j >= 0; j-- {
			chars[j] = Alphabet[v%85]
			v /= 85
		}
		out = append(out, chars[:]...)
	}

	if rem := len(src) % 4; rem > 0 {
		var buf [4]byte
		copy(buf[:], src[len(src)-rem:])
		v := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
		var chars [5]byte
		for j := 4; j >= 0; j-- {
			chars[j] = Alphabet[v%85]
			v /= 85
		}
		// A partial group of `rem` bytes encodes to rem+1 characters.
		out = append(out, chars[:rem+1]...)
	}

	return string(out)
}

// Decode reverses Encode. It rejects input containing characters outside
// the alphabet.
func Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}

	out := make([]byte, 0, len(s)*4/5+4)

	decodeGroup := func(chars []byte, nBytes int) ([4]byte, error) {
		var v uint32
		for _, c := range chars {
			d := decodeTable[c]
			if d == 0 {
				return [4]byte{}, fmt.Errorf("%w: %q", ErrInvalidCharacter, c)
			}
			v = v*85 + uint32(d-1)
		}
		var buf [4]byte
		buf[0] = byte(v >> 24)
		buf[1] = byte(v >> 16)
		buf[2] = byte(v >> 8)
		buf[3] = byte(v)
		return buf, nil
	}

	full := len(s) / 5
	for i := 0; i < full; i++ {
		buf, err := decodeGroup([]byte(s[i*5:i*5+5]), 4)
		if err != nil {
			return nil, err
		}
		out = append(out, buf[:]...)
	}

	if rem := len(s) % 5; rem > 0 {
		nBytes := rem - 1
		// Pad with the highest digit so the truncated value rounds back up
		// to the original bytes, which Encode padded with zeros.
		chars := make([]byte, 5)
		for i := range chars {
			chars[i] = Alphabet[len(Alphabet)-1]
		}
		copy(chars, s[full*5:])
		buf, err := decodeGroup(chars, nBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, buf[:nBytes]...)
	}

	return out, nil
}
