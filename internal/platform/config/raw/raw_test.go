package raw

import "testing"

func TestConfGet(t *testing.T) {
	t.Setenv("LOG_FILE", " /var/log/contactgate.log ")
	log := New().Prefix("LOG_")

	if got := log.Get("FILE", "x"); got != "/var/log/contactgate.log" {
		t.Fatalf("Get = %q", got)
	}
	if got := log.Get("MISSING", "defv"); got != "defv" {
		t.Fatalf("Get default = %q", got)
	}
}

func TestConfGetBool(t *testing.T) {
	c := New().Prefix("RAWB_")
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"no", true, false},
		{"garbage", true, false},
	}
	for _, tc := range cases {
		t.Setenv("RAWB_V", tc.val)
		if got := c.GetBool("V", tc.def); got != tc.want {
			t.Fatalf("GetBool(%q, %v) = %v, want %v", tc.val, tc.def, got, tc.want)
		}
	}
}

func TestConfGetInt(t *testing.T) {
	c := New().Prefix("RAWI_")
	cases := []struct {
		val  string
		want int
	}{
		{"", 7},
		{"42", 42},
		{" 3 ", 3},
		{"-1", 7},
		{"4x", 7},
	}
	for _, tc := range cases {
		t.Setenv("RAWI_V", tc.val)
		if got := c.GetInt("V", 7); got != tc.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tc.val, got, tc.want)
		}
	}
}

func TestPrefixComposition(t *testing.T) {
	t.Setenv("A_B_C", "deep")
	if got := New().Prefix("A_").Prefix("B_").Get("C", ""); got != "deep" {
		t.Fatalf("nested prefix Get = %q", got)
	}
}
