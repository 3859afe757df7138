package hardware

import (
	"strconv"
	"strings"
)

// Family tags an accelerator compute generation. Policy lookups key on this
// instead of matching device-name substrings.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyAmpere
	FamilyAda
	FamilyHopper
	FamilyBlackwell
)

func (f Family) String() string {
	switch f {
	case FamilyAmpere:
		return "ampere"
	case FamilyAda:
		return "ada"
	case FamilyHopper:
		return "hopper"
	case FamilyBlackwell:
		return "blackwell"
	default:
		return "unknown"
	}
}

// fp8MinCap is the lowest compute capability with native FP8 tensor cores.
const fp8MinCap = 8.9

// Arch describes the accelerator present on the host. Code is the raw
// compute-capability string ("8.9"); empty means undetectable. The
// descriptor is rebuilt every invocation and never persisted.
type Arch struct {
	Code       string
	Family     Family
	DeviceName string
	FP8Native  bool
}

// Detected reports whether the probe identified an accelerator.
func (a Arch) Detected() bool { return a.Code != "" }

// SMLabel renders the code in sm form, e.g. "8.9" -> "sm89". Empty when
// undetected. Used to label engine artifacts in remote stores.
func (a Arch) SMLabel() string {
	if !a.Detected() {
		return ""
	}
	return "sm" + strings.ReplaceAll(a.Code, ".", "")
}

// FromCode builds a descriptor from a compute-capability code. Unparseable
// codes yield FamilyUnknown with FP8Native false, never an error: probing is
// best-effort and the policy table has a conservative row for unknown.
func FromCode(code, deviceName string) Arch {
	a := Arch{Code: strings.TrimSpace(code), DeviceName: strings.TrimSpace(deviceName)}
	cap, ok := parseCap(a.Code)
	if !ok {
		a.Code = ""
		return a
	}
	a.FP8Native = cap >= fp8MinCap
	switch {
	case cap >= 10.0:
		a.Family = FamilyBlackwell
	case cap >= 9.0:
		a.Family = FamilyHopper
	case cap >= 8.9:
		a.Family = FamilyAda
	case cap >= 8.0:
		a.Family = FamilyAmpere
	}
	return a
}

func parseCap(code string) (float64, bool) {
	if code == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(code, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
