package viz

import "testing"

func TestStyleFor_Deterministic(t *testing.T) {
	a := StyleFor(StyleCountryHue, 0, "DEU", "SP.POP.TOTL")
	b := StyleFor(StyleCountryHue, 5, "DEU", "SP.POP.TOTL")
	if a.Color != b.Color || a.Marker != b.Marker || a.Dash != b.Dash {
		t.Errorf("hue mode must ignore index: %+v vs %+v", a, b)
	}
	c := StyleFor(StyleCountryHue, 0, "DEU", "SP.POP.TOTL")
	if a != c {
		t.Errorf("same inputs produced different styles: %+v vs %+v", a, c)
	}
}

func TestStyleFor_DefaultCyclesPalette(t *testing.T) {
	for i := 0; i < len(officePalette); i++ {
		st := StyleFor(StyleDefault, i, "X", "Y")
		if st.Color != officePalette[i] {
			t.Errorf("index %d: got %v, want %v", i, st.Color, officePalette[i])
		}
	}
	wrapped := StyleFor(StyleDefault, len(officePalette), "X", "Y")
	if wrapped.Color != officePalette[0] {
		t.Errorf("palette did not wrap: %v", wrapped.Color)
	}
}

func TestStyleFor_CountryHueWithinBounds(t *testing.T) {
	for _, country := range []string{"DEU", "USA", "FRA", "JPN", "BRA"} {
		st := StyleFor(StyleCountryHue, 0, country, "NY.GDP.MKTP.CD")
		if st.Hue < 0 || st.Hue >= 360 {
			t.Errorf("%s: hue %v out of [0,360)", country, st.Hue)
		}
		if st.Color.A != 255 {
			t.Errorf("%s: alpha %d, want opaque", country, st.Color.A)
		}
	}
}

func TestStyleFor_PaletteModeSharesCountrySlot(t *testing.T) {
	a := StyleFor(StyleCountryPalette, 0, "DEU", "SP.POP.TOTL")
	b := StyleFor(StyleCountryPalette, 1, "DEU", "NY.GDP.MKTP.CD")
	if a.Hue != b.Hue {
		t.Errorf("same country must share a palette slot: %v vs %v", a.Hue, b.Hue)
	}
	if a.Color == b.Color {
		t.Errorf("different indicators should vary brightness, both %v", a.Color)
	}
}

func TestStyleFor_IndicatorDrivesMarkerAndDash(t *testing.T) {
	a := StyleFor(StyleCountryHue, 0, "DEU", "SP.POP.TOTL")
	b := StyleFor(StyleCountryHue, 0, "USA", "SP.POP.TOTL")
	if a.Marker != b.Marker || a.Dash != b.Dash {
		t.Errorf("marker/dash must depend on the indicator only: %+v vs %+v", a, b)
	}
}

func TestStrokeDashArray(t *testing.T) {
	if got := DashSolid.strokeDashArray(); got != nil {
		t.Errorf("solid dash array = %v, want nil", got)
	}
	for _, d := range []LineDash{DashDashed, DashDotted, DashDotDash} {
		if got := d.strokeDashArray(); len(got) == 0 {
			t.Errorf("dash %d has empty pattern", d)
		}
	}
}

func TestHSLToColor_Grayscale(t *testing.T) {
	c := hslToColor(123, 0, 0.5)
	if c.R != c.G || c.G != c.B {
		t.Errorf("zero saturation must be gray, got %v", c)
	}
}
