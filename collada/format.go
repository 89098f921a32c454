package collada

import (
	"bufio"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ZeroThreshold is the magnitude below which values are written as zero.
const ZeroThreshold = 1e-10

// Formatter writes floats in fixed-point notation with a stable digit count.
type Formatter struct {
	Digits int
}

// Float formats v with Digits fractional digits. Values that round to zero
// are written without a sign.
func (f Formatter) Float(v float64) string {
	if math.Abs(v) < ZeroThreshold {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', f.Digits, 64)
	if s[0] == '-' && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}

func (f Formatter) Vec3(v mgl64.Vec3) string {
	return f.Float(v[0]) + " " + f.Float(v[1]) + " " + f.Float(v[2])
}

// Vec3s joins triples in order, as used by float_array.
func (f Formatter) Vec3s(vs []mgl64.Vec3) string {
	var sb strings.Builder
	for i, v := range vs {
		if i != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Vec3(v))
	}
	return sb.String()
}

// Color writes an opaque RGB colour, alpha lives in transparency.
func (f Formatter) Color(r, g, b float64) string {
	return f.Float(r) + " " + f.Float(g) + " " + f.Float(b) + " 1"
}

// Matrix writes m row-major, as the matrix element expects.
func (f Formatter) Matrix(m mgl64.Mat4) string {
	parts := make([]string, 0, 16)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			parts = append(parts, f.Float(m.At(row, col)))
		}
	}
	return strings.Join(parts, " ")
}

func Ints(values []int) string {
	var sb strings.Builder
	for i, v := range values {
		if i != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// IntPairs interleaves a and b: a0 b0 a1 b1 ...
func IntPairs(a, b []int) (string, error) {
	if len(a) != len(b) {
		return "", errors.Errorf("pair lists differ in length: %d vs %d", len(a), len(b))
	}
	var sb strings.Builder
	for i := range a {
		if i != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(a[i]))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(b[i]))
	}
	return sb.String(), nil
}

func Write(w io.Writer, c *Collada) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return errors.Wrapf(err, "Failed to write header")
	}
	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")
	if err := enc.Encode(c); err != nil {
		return errors.Wrapf(err, "Failed to encode document")
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}
