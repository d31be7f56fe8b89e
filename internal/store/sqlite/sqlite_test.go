package sqlite

import (
	"database/sql/driver"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("", 0))

	tests := []struct {
		name     string
		declared string
		in       any
		want     any
	}{
		{"date", "DATE", time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), "1990-01-02"},
		{"timestamp", "TIMESTAMP", ts, ts.UTC()},
		{"boolean true", "BOOLEAN", int64(1), true},
		{"boolean false", "BOOLEAN", int64(0), false},
		{"numeric whole", "NUMERIC", int64(1000), float64(1000)},
		{"integer", "INTEGER", int64(7), int64(7)},
		{"blob text", "TEXT", []byte("abc"), "abc"},
		{"null", "BOOLEAN", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.declared, tt.in); got != tt.want {
				t.Errorf("normalize(%q, %v) = %#v, want %#v", tt.declared, tt.in, got, tt.want)
			}
		})
	}
}

func TestUnicodeLower(t *testing.T) {
	tests := []struct {
		in   driver.Value
		want driver.Value
	}{
		{"JESÚS ÁLVAREZ", "jesús álvarez"},
		{[]byte("ÑANDÚ"), "ñandú"},
		{nil, nil},
		{int64(3), int64(3)},
	}
	for _, tt := range tests {
		got, err := unicodeLower(nil, []driver.Value{tt.in})
		if err != nil {
			t.Fatalf("unicodeLower(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("unicodeLower(%v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestDialectLower(t *testing.T) {
	if got := (Dialect{}).Lower(`"correo"`); got != `unicode_lower("correo")` {
		t.Errorf("Lower = %q", got)
	}
}
