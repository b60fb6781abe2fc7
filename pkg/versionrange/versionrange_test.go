package versionrange

import "testing"

func TestToRange(t *testing.T) {
	tests := []struct {
		version string
		digits  int
		want    string
	}{
		{"1.2.3", Micro, "[1.2.3,1.2.4)"},
		{"1.2.3", Minor, "[1.2.3,1.3.0)"},
		{"1.2.3", Major, "[1.2.3,2.0.0)"},
		{"1.2.3", Unbounded, "[1.2.3,)"},
		{"1.2.3", Exact, "[1.2.3,1.2.3]"},
		{"1.2.3", -1, "[1.2.3,1.2.3]"},
		{"1.2.3", 7, "[1.2.3,1.2.3]"},
		{"[1.0,2.0)", Micro, "[1.0,2.0)"},
		{"(1.0,2.0]", Major, "(1.0,2.0]"},
		{"2", Minor, "[2,2.1.0)"},
		{"1.0.0.Final", Micro, "[1.0.0.Final,1.0.1)"},
		{"2.5-SNAPSHOT", Minor, "[2.5-SNAPSHOT,2.6.0)"},
		{"1.2.3.4", Major, "[1.2.3.4,2.0.0)"},
		{"garbage", Micro, "[garbage,0.0.1)"},
		{"", Minor, "[,0.1.0)"},
	}
	for _, tt := range tests {
		if got := ToRange(tt.version, tt.digits); got != tt.want {
			t.Errorf("ToRange(%q, %d) = %q, want %q", tt.version, tt.digits, got, tt.want)
		}
	}
}

func TestToRange_Idempotent(t *testing.T) {
	versions := []string{"1.2.3", "0.9", "4.1.2.Final", "x", "[1,2)"}
	for _, v := range versions {
		for d := Exact; d <= Unbounded+1; d++ {
			once := ToRange(v, d)
			for d2 := Exact; d2 <= Unbounded+1; d2++ {
				if twice := ToRange(once, d2); twice != once {
					t.Errorf("ToRange(ToRange(%q, %d), %d) = %q, want %q", v, d, d2, twice, once)
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		version             string
		major, minor, micro int
	}{
		{"1.2.3", 1, 2, 3},
		{"v1.2.3", 1, 2, 3},
		{"1.2", 1, 2, 0},
		{"1", 1, 0, 0},
		{"1.2.3-SNAPSHOT", 1, 2, 3},
		{"3.0.0.RELEASE", 3, 0, 0},
		{"1.2.3.4", 1, 2, 3},
		{"1.2b3.4", 1, 2, 0},
		{"abc", 0, 0, 0},
		{"", 0, 0, 0},
		{"99999999999999999999.1", 0, 1, 0},
	}
	for _, tt := range tests {
		major, minor, micro := Parse(tt.version)
		if major != tt.major || minor != tt.minor || micro != tt.micro {
			t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d", tt.version,
				major, minor, micro, tt.major, tt.minor, tt.micro)
		}
	}
}

func TestIsRange(t *testing.T) {
	for s, want := range map[string]bool{
		"1.0":       false,
		"[1.0,2.0)": true,
		"(1.0,)":    true,
		"":          false,
	} {
		if got := IsRange(s); got != want {
			t.Errorf("IsRange(%q) = %v, want %v", s, got, want)
		}
	}
}
