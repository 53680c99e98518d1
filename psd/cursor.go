package psd

import (
	"encoding/binary"
	"fmt"
)

// cursor is a big-endian reader over an in-memory PSD file. All multi-byte
// integers in the format are big-endian.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("unexpected end of file: need %d bytes at offset %d, have %d", n, c.pos, c.remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	_, err := c.bytes(n)
	return err
}

func (c *cursor) uint8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cursor) int16() (int16, error) {
	v, err := c.uint16()
	return int16(v), err
}

func (c *cursor) int32() (int32, error) {
	v, err := c.uint32()
	return int32(v), err
}

// pascalString reads a length-prefixed string padded so that the total
// length (prefix byte included) is a multiple of pad.
func (c *cursor) pascalString(pad int) (string, error) {
	n, err := c.uint8()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	if pad > 1 {
		total := 1 + int(n)
		if rem := total % pad; rem != 0 {
			if err := c.skip(pad - rem); err != nil {
				return "", err
			}
		}
	}
	return string(b), nil
}
