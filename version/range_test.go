package version

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		canonical string
		float     FloatBehavior
		wantErr   bool
	}{
		{"simple version", "1.0.0", ">= 1.0.0", FloatNone, false},
		{"canonical minimum", ">= 1.0.0", ">= 1.0.0", FloatNone, false},
		{"inclusive both", "[1.0, 2.0]", "[1.0, 2.0]", FloatNone, false},
		{"exclusive both", "(1.0, 2.0)", "(1.0, 2.0)", FloatNone, false},
		{"mixed", "[1.0.0, 2.0.0)", "[1.0.0, 2.0.0)", FloatNone, false},
		{"open upper", "[1.0, )", ">= 1.0", FloatNone, false},
		{"open lower", "(, 2.0]", "(, 2.0]", FloatNone, false},
		{"exact", "[1.0.0]", "[1.0.0]", FloatNone, false},
		{"float prerelease", "1.0.0-*", ">= 1.0.0-*", FloatPrerelease, false},
		{"float prerelease prefix", "1.0.0-beta*", ">= 1.0.0-beta*", FloatPrerelease, false},
		{"float revision", "1.0.0.*", ">= 1.0.0.*", FloatRevision, false},
		{"float build", "1.0.*", ">= 1.0.*", FloatBuild, false},
		{"float minor", "1.*", ">= 1.*", FloatMinor, false},
		{"float major", "*", ">= *", FloatMajor, false},
		{"empty", "", "", FloatNone, true},
		{"missing bracket", "[1.0, 2.0", "", FloatNone, true},
		{"exclusive exact", "(1.0.0)", "", FloatNone, true},
		{"inverted", "[2.0, 1.0]", "", FloatNone, true},
		{"no bounds", "[,]", "", FloatNone, true},
		{"wildcard in middle", "1.*.0", "", FloatNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := r.String(); got != tt.canonical {
				t.Errorf("String() = %q, want %q", got, tt.canonical)
			}
			if r.Float != tt.float {
				t.Errorf("Float = %v, want %v", r.Float, tt.float)
			}

			again, err := ParseRange(r.String())
			if err != nil {
				t.Fatalf("ParseRange(%q) of canonical form error = %v", r.String(), err)
			}
			if !again.Equals(r) {
				t.Errorf("canonical form %q does not round trip, got %q", r.String(), again.String())
			}
		})
	}
}

func TestVersionRange_Satisfies(t *testing.T) {
	tests := []struct {
		rangeStr string
		version  string
		want     bool
	}{
		{"[1.0, 2.0]", "1.5.0", true},
		{"[1.0, 2.0]", "2.0.0", true},
		{"[1.0, 2.0)", "2.0.0", false},
		{"(1.0, 2.0)", "1.0.0", false},
		{"1.0.0", "0.9.0", false},
		{"1.0.0", "5.0.0", true},
		{"[1.0.0]", "1.0.0", true},
		{"[1.0.0]", "1.0.1", false},
		{"1.0.0-*", "1.0.0-beta", true},
		{"1.0.0-beta*", "1.0.0-beta2", true},
		{"1.0.0-beta*", "1.0.0-alpha", false},
		{"1.0.*", "1.0.7", true},
		{"1.0.*", "1.1.0", true},
		{"1.0.*", "0.9.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.rangeStr+"_"+tt.version, func(t *testing.T) {
			r := MustParseRange(tt.rangeStr)
			if got := r.Satisfies(MustParse(tt.version)); got != tt.want {
				t.Errorf("%s.Satisfies(%s) = %v, want %v", tt.rangeStr, tt.version, got, tt.want)
			}
		})
	}
}

func TestVersionRange_EqualsFloating(t *testing.T) {
	tests := []struct {
		rangeStr string
		version  string
		want     bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.0.0", "1.0.1", false},
		{"1.0.0-*", "1.0.0", true},
		{"1.0.0-*", "1.0.0-rc.1", true},
		{"1.0.0-rc*", "1.0.0-RC2", true},
		{"1.0.0-rc*", "1.0.1-rc", false},
		{"1.0.0.*", "1.0.0.9", true},
		{"1.0.0.*", "1.0.1", false},
		{"1.2.*", "1.2.9", true},
		{"1.2.*", "1.3.0", false},
		{"1.*", "1.9.9", true},
		{"1.*", "2.0.0", false},
		{"*", "42.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.rangeStr+"_"+tt.version, func(t *testing.T) {
			if got := MustParseRange(tt.rangeStr).EqualsFloating(MustParse(tt.version)); got != tt.want {
				t.Errorf("EqualsFloating = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersionRange_FindBestMatch(t *testing.T) {
	versions := []*NuGetVersion{
		MustParse("2.10.0"),
		MustParse("2.11.0"),
		MustParse("3.0.0"),
		MustParse("4.0.0-beta"),
	}

	tests := []struct {
		rangeStr string
		want     string
	}{
		// Exact candidates favor the lowest satisfying version.
		{"[2.10.0, )", "2.10.0"},
		{"2.9.0", "2.10.0"},
		{"(2.10.0, 3.0.0]", "2.11.0"},
		// Floating candidates favor the highest match.
		{"2.*", "2.11.0"},
		{"*", "4.0.0-beta"},
		{"5.0.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.rangeStr, func(t *testing.T) {
			best := MustParseRange(tt.rangeStr).FindBestMatch(versions)
			got := ""
			if best != nil {
				got = best.String()
			}
			if got != tt.want {
				t.Errorf("FindBestMatch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionRange_IsExact(t *testing.T) {
	if !MustParseRange("[1.0.0]").IsExact() {
		t.Error("[1.0.0] should be exact")
	}
	if MustParseRange("1.0.0").IsExact() {
		t.Error("1.0.0 should not be exact")
	}
	if !NewExactRange(MustParse("2.0.0")).IsExact() {
		t.Error("NewExactRange should be exact")
	}
}
