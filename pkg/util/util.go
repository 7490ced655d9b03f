package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is matches both the error code and the wrapped error, so errors.Is(err, ErrMalformedGraph) works.
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrMalformedGraph     = errors.New("malformed graph")
	ErrNoBalancedCut      = errors.New("no balanced cut found")
	ErrInvalidSeparator   = errors.New("invalid separator")
	ErrSerialization      = errors.New("serialization error")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrBadParamInput      = errors.New("given Param is not valid")
	ErrNotFound           = errors.New("your requested Item is not found")
)

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// BitsFor returns ceil(log2(maxValue+1)), the number of bits needed to store every value in [0, maxValue].
func BitsFor[T constraints.Unsigned](maxValue T) uint8 {
	var bits uint8
	for maxValue > 0 {
		bits++
		maxValue >>= 1
	}
	return bits
}

func ReadLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || len(line) == 0 {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func Fields(s string) []string {
	return strings.Fields(s)
}
