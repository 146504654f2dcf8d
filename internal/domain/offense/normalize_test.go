package offense

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_PrefixSuffixCommutativity(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"484 PC", "PC 484"},
		{"11350 HS", "HS 11350"},
		{"23152 VC", "vc 23152"},
		{"pc 187", "187 pc"},
	}

	for _, tt := range tests {
		na := Normalize(tt.a)
		nb := Normalize(tt.b)
		na.RawInput = ""
		nb.RawInput = ""
		assert.Equal(t, na, nb, "%q and %q must normalize identically", tt.a, tt.b)
	}
}

func TestNormalize_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		number  string
		subdiv  string
		statute StatuteType
	}{
		{"suffix form", "484 PC", "484", "", StatutePC},
		{"prefix form", "PC 484", "484", "", StatutePC},
		{"no space", "484PC", "484", "", StatutePC},
		{"health and safety", "11350 HS", "11350", "", StatuteHS},
		{"vehicle code", "23152 VC", "23152", "", StatuteVC},
		{"dotted section", "667.5 PC", "667.5", "", StatutePC},
		{"single subdivision", "667.5(c) PC", "667.5", "(c)", StatutePC},
		{"multiple subdivisions", "667.5(c)(1)", "667.5", "(c)(1)", StatutePC},
		{"uppercase subdivision", "245(A)(1) PC", "245", "(a)(1)", StatutePC},
		{"bare number defaults to PC", "187", "187", "", StatutePC},
		{"bare four digits is NCIC", "5599", "5599", "", StatuteNCIC},
		{"ncic with whitespace", "  1313 ", "1313", "", StatuteNCIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(tt.in)
			assert.Equal(t, tt.number, n.Number)
			assert.Equal(t, tt.subdiv, n.Subdivision)
			assert.Equal(t, tt.statute, n.StatuteType)
			assert.Equal(t, tt.in, n.RawInput)
		})
	}
}

func TestNormalize_UnknownPassthrough(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"free text", "battery on a peace officer", "battery on a peace officer"},
		{"collapsed whitespace", "  some   unknown\tcode ", "some unknown code"},
		{"statute token on both sides", "PC 484 HS", "PC 484 HS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(tt.in)
			assert.Equal(t, StatuteUnknown, n.StatuteType)
			assert.Equal(t, tt.want, n.Number)
		})
	}
}

func TestNormalize_NeverPanics(t *testing.T) {
	for _, in := range []string{"", "   ", "()", "((((", "PC", "PC PC", "1.2.3.4(a)(b)(c) WI"} {
		assert.NotPanics(t, func() { Normalize(in) }, "input %q", in)
	}
}

func TestNormalizedCode_Display(t *testing.T) {
	assert.Equal(t, "484 PC", Normalize("pc 484").Display())
	assert.Equal(t, "667.5(c) PC", Normalize("667.5(c)").Display())
	assert.Equal(t, "23152 VC", Normalize("23152vc").Display())
	assert.Equal(t, "5599", Normalize("5599").Display())
	assert.Equal(t, "no such code", Normalize("no such code").Display())
}

func TestDisqualificationStatus_Normalize(t *testing.T) {
	assert.Equal(t, StatusMandatoryDisqualifier, StatusMandatoryDisqualifier.Normalize())
	assert.Equal(t, StatusHasExemptionPath, StatusHasExemptionPath.Normalize())
	assert.Equal(t, StatusNonDisqualifying, StatusNonDisqualifying.Normalize())
	assert.Equal(t, StatusHasExemptionPath, StatusReviewRequired.Normalize())
	assert.Equal(t, StatusHasExemptionPath, StatusUnknown.Normalize())
	assert.Equal(t, StatusHasExemptionPath, DisqualificationStatus("garbage").Normalize())
}
