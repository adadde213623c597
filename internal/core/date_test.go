package core

import "testing"

func TestFormatDate(t *testing.T) {
	cases := []struct {
		iso  string
		want string
	}{
		{"2004-04-04", "04 Avr. 04"},
		{"2002-02-02", "02 Fév. 02"},
		{"2001-01-01", "01 Jan. 01"},
		{"2021-12-31", "31 Déc. 21"},
		{"garbage", "garbage"}, // unparseable dates pass through
	}
	for i, tc := range cases {
		if got := FormatDate(tc.iso); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestSortAntiChronological(t *testing.T) {
	bills := []Bill{
		{Name: "a", Date: "2004-04-04"},
		{Name: "b", Date: "2001-01-01"},
		{Name: "c", Date: "2002-02-02"},
	}
	SortAntiChronological(bills)

	want := []string{"2004-04-04", "2002-02-02", "2001-01-01"}
	for i, w := range want {
		if bills[i].Date != w {
			t.Fatalf("pos %d: got %s, want %s", i, bills[i].Date, w)
		}
	}
	for i := 0; i < len(bills)-1; i++ {
		if bills[i].Date < bills[i+1].Date {
			t.Fatalf("dates not non-increasing at %d", i)
		}
	}
}

func TestSortAntiChronologicalStable(t *testing.T) {
	bills := []Bill{
		{Name: "first", Date: "2003-03-03"},
		{Name: "second", Date: "2003-03-03"},
		{Name: "third", Date: "2003-03-03"},
	}
	SortAntiChronological(bills)
	for i, want := range []string{"first", "second", "third"} {
		if bills[i].Name != want {
			t.Fatalf("equal dates reordered: pos %d got %s", i, bills[i].Name)
		}
	}
}
