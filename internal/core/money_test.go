package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := (Money{Cents: 123}).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "1.23" {
		t.Fatalf("got %s", b)
	}

	neg, err := (Money{Cents: -2000}).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal negative: %v", err)
	}
	if string(neg) != "-20.00" {
		t.Fatalf("got %s", neg)
	}

	var m Money
	if err := m.UnmarshalJSON([]byte(`"99.99"`)); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 9999 {
		t.Fatalf("got %d", m.Cents)
	}
	if err := m.UnmarshalJSON([]byte(`100`)); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 10000 {
		t.Fatalf("got %d", m.Cents)
	}
}
