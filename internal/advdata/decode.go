package advdata

import (
	"encoding/hex"
	"fmt"
)

// Element is a single AD structure: a type tag and its value bytes.
// The length byte is implied by len(Value)+1.
type Element struct {
	Type  byte   `json:"type"`
	Value []byte `json:"value"`
}

// DecodeError reports an AD structure whose declared length runs past the end
// of the payload. Raw holds a copy of the complete input.
type DecodeError struct {
	Raw    []byte
	Offset int // offset of the offending length byte
	Want   int // bytes the structure claims, length byte included
	Have   int // bytes left from Offset
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed advertisement at offset %d: structure needs %d bytes, %d available (raw=%s)",
		e.Offset, e.Want, e.Have, hex.EncodeToString(e.Raw))
}

// Decode splits raw advertisement bytes into AD structures.
//
// A zero length byte is padding: it is skipped and produces no element.
// Decoding stops exactly at the end of raw; a structure that would read past
// it fails with *DecodeError. Element values are copies and do not alias raw.
func Decode(raw []byte) ([]Element, error) {
	var elements []Element

	for i := 0; i < len(raw); {
		length := int(raw[i])
		if length == 0 {
			i++
			continue
		}

		// length covers the type byte plus the value
		if i+1+length > len(raw) {
			return elements, &DecodeError{
				Raw:    append([]byte(nil), raw...),
				Offset: i,
				Want:   1 + length,
				Have:   len(raw) - i,
			}
		}

		value := make([]byte, length-1)
		copy(value, raw[i+2:i+1+length])
		elements = append(elements, Element{Type: raw[i+1], Value: value})

		i += 1 + length
	}

	return elements, nil
}

// Span returns the number of payload bytes the elements occupy when encoded.
func Span(elements []Element) int {
	n := 0
	for _, e := range elements {
		n += 2 + len(e.Value)
	}
	return n
}
