package imgproc

import "testing"

func TestOtsuSeparatesBimodalField(t *testing.T) {
	f := NewField(10, 10)
	for i := range f.Pix {
		if i < 50 {
			f.Pix[i] = 0.1
		} else {
			f.Pix[i] = 0.9
		}
	}

	th := OtsuThreshold(f)
	if th <= 0.1 || th >= 0.9 {
		t.Errorf("Otsu threshold = %v, want between the two modes", th)
	}

	m := Binarize(f, th)
	if m.Count() != 50 {
		t.Errorf("binarized count = %d, want 50 bright pixels", m.Count())
	}
}

func TestOtsuPlateauResolvesToGapMidpoint(t *testing.T) {
	f := NewField(10, 10)
	for i := range f.Pix {
		if i < 50 {
			f.Pix[i] = 0.1
		} else {
			f.Pix[i] = 0.9
		}
	}

	// Every split inside the 0.1..0.9 gap ties for the best variance;
	// the tie must not collapse onto the background mode, or any
	// slightly relaxed threshold falls below it.
	th := OtsuThreshold(f)
	if th < 0.45 || th > 0.55 {
		t.Errorf("Otsu threshold = %v, want the midpoint of the gap", th)
	}
	if 0.9*th <= 0.1 {
		t.Errorf("relaxed threshold %v fell to the background mode", 0.9*th)
	}
}

func TestPercentileThreshold(t *testing.T) {
	f := NewField(10, 10)
	for i := range f.Pix {
		f.Pix[i] = float64(i) / 99.0
	}

	th := PercentileThreshold(f, 90)
	m := Binarize(f, th)
	// Strictly-above semantics keep roughly the top decile.
	if m.Count() < 5 || m.Count() > 15 {
		t.Errorf("top-decile count = %d, want about 10", m.Count())
	}
}

func TestBinarizeIsStrictlyAbove(t *testing.T) {
	f := fieldFrom(3, 1, []float64{0.4, 0.5, 0.6})
	m := Binarize(f, 0.5)
	if m.At(0, 0) || m.At(1, 0) {
		t.Error("values at or below the threshold must stay background")
	}
	if !m.At(2, 0) {
		t.Error("values above the threshold must be foreground")
	}
}
