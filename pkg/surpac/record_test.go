package surpac

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestHeaderLines(t *testing.T) {
	got := HeaderLines("haul roads", time.Date(2009, time.March, 5, 0, 0, 0, 0, time.UTC))
	want := "haul roads, 05-Mar-09, Earthworks Surpac Driver,\n"
	if got[0] != want {
		t.Errorf("HeaderLines()[0] = %q, want %q", got[0], want)
	}
	if len(got) != 2 {
		t.Errorf("len(HeaderLines()) = %d, want 2", len(got))
	}
}

func TestDataLine(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		attr    string
		want    string
	}{
		{
			name: "northing first",
			x:    1, y: 2, z: 3, attr: "A",
			want: "1,     2.000000,     1.000000,     3.000000, A\n",
		},
		{
			name: "rounds to six decimals",
			x:    0.1234567, y: -0.0000004, z: 100.5, attr: "None",
			want: "1,    -0.000000,     0.123457,   100.500000, None\n",
		},
		{
			name: "wide values overflow the column",
			x:    123456789.5, y: 0, z: 0, attr: "x",
			want: "1,     0.000000, 123456789.500000,     0.000000, x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DataLine(tt.x, tt.y, tt.z, tt.attr); got != tt.want {
				t.Errorf("DataLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAttribute(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "nil", in: nil, want: "None"},
		{name: "string", in: "R1", want: "R1"},
		{name: "empty string", in: "", want: ""},
		{name: "integral float", in: 12.0, want: "12"},
		{name: "fractional float", in: 412.5, want: "412.5"},
		{name: "int", in: 7, want: "7"},
		{name: "json number", in: json.Number("1e3"), want: "1e3"},
		{name: "true", in: true, want: "True"},
		{name: "false", in: false, want: "False"},
		{name: "object", in: map[string]interface{}{"a": 1.0}, want: `{"a":1}`},
		{name: "array", in: []interface{}{"a", 2.0}, want: `["a",2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAttribute(tt.in); got != tt.want {
				t.Errorf("FormatAttribute(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDefaultZ(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "0", want: 0},
		{in: "12.5", want: 12.5},
		{in: " -3 ", want: -3},
		{in: "1e2", want: 100},
		{in: "abc", want: 0},
		{in: "", want: 0},
		{in: "NaN", want: 0},
		{in: "inf", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDefaultZ(tt.in); got != tt.want {
				t.Errorf("ParseDefaultZ(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if ParseDefaultZ("abc") != ParseDefaultZ("0") {
		t.Error("unparseable default must behave like 0")
	}
}

func TestChainResolve(t *testing.T) {
	chain := Chain{FieldZ{Index: -1}, ConstantZ(math.NaN())}
	z, src := chain.Resolve(VertexRef{}, 4)
	if z != 4 || src != SourceDefault {
		t.Errorf("Resolve() = (%v, %q), want (4, %q)", z, src, SourceDefault)
	}
}
