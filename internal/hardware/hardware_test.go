package hardware

import "testing"

func TestFromCodeFamilies(t *testing.T) {
	cases := []struct {
		code   string
		family Family
		fp8    bool
	}{
		{"8.0", FamilyAmpere, false},
		{"8.6", FamilyAmpere, false},
		{"8.9", FamilyAda, true},
		{"9.0", FamilyHopper, true},
		{"10.0", FamilyBlackwell, true},
		{"12.0", FamilyBlackwell, true},
	}
	for _, c := range cases {
		a := FromCode(c.code, "dev")
		if a.Family != c.family {
			t.Fatalf("%s: family %v, want %v", c.code, a.Family, c.family)
		}
		if a.FP8Native != c.fp8 {
			t.Fatalf("%s: fp8 %v, want %v", c.code, a.FP8Native, c.fp8)
		}
		if !a.Detected() {
			t.Fatalf("%s: should be detected", c.code)
		}
	}
}

func TestFromCodeUnparseable(t *testing.T) {
	for _, code := range []string{"", "N/A", "-1", "sm90"} {
		a := FromCode(code, "dev")
		if a.Detected() || a.Family != FamilyUnknown || a.FP8Native {
			t.Fatalf("%q: expected undetected unknown arch, got %+v", code, a)
		}
	}
}

func TestParseSmiOutput(t *testing.T) {
	a := parseSmiOutput("8.9, NVIDIA L40S\n8.9, NVIDIA L40S\n")
	if a.Code != "8.9" || a.Family != FamilyAda || a.DeviceName != "NVIDIA L40S" {
		t.Fatalf("unexpected arch: %+v", a)
	}
}

func TestParseSmiOutputEmpty(t *testing.T) {
	if a := parseSmiOutput("\n \n"); a.Detected() {
		t.Fatalf("empty output should not detect an arch: %+v", a)
	}
}
