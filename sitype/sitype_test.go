package sitype

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		c    Comparator
		want Discipline
	}{
		{ComparatorInt32, Int},
		{ComparatorFloat32, Int},
		{ComparatorInt64, Long},
		{ComparatorDouble, Long},
		{ComparatorTimestamp, Long},
		{ComparatorDate, Long},
		{ComparatorUUIDTimeOrdered, UUID},
		{ComparatorUUIDRandom, UUID},
		{ComparatorUTF8, Variable},
		{ComparatorASCII, Variable},
		{ComparatorBytes, Variable},
	}

	for _, c := range cases {
		if got := Classify(c.c); got != c.want {
			t.Errorf("Classify(%v) = %v, want %v", c.c, got, c.want)
		}
	}
}

func TestIsText(t *testing.T) {
	text := []Comparator{ComparatorUTF8, ComparatorASCII}
	for _, c := range text {
		if !c.IsText() {
			t.Errorf("%v.IsText() = false, want true", c)
		}
	}

	notText := []Comparator{ComparatorInt32, ComparatorBytes, ComparatorUUIDRandom}
	for _, c := range notText {
		if c.IsText() {
			t.Errorf("%v.IsText() = true, want false", c)
		}
	}
}

func TestDisciplineString(t *testing.T) {
	cases := map[Discipline]string{
		Variable:          "VARIABLE",
		Int:               "INT",
		Long:              "LONG",
		UUID:              "UUID",
		Discipline(99):    "UNKNOWN",
	}

	for d, want := range cases {
		if got := d.String(); got != want {
			t.Errorf("Discipline(%d).String() = %q, want %q", d, got, want)
		}
	}
}
