package simode

import "testing"

func TestModeString(t *testing.T) {
	cases := map[Mode]string{
		Original: "ORIGINAL",
		Suffix:   "SUFFIX",
		Sparse:   "SPARSE",
		Mode(99): "UNKNOWN",
	}

	for m, want := range cases {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, got, want)
		}
	}
}
