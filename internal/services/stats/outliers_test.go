package stats

import "testing"

func TestDetectOutliersIQR(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 100}
	r := DetectOutliers(xs, MethodIQR)

	if r.OutlierCount != 1 || r.Outliers[0] != 100 {
		t.Fatalf("expected 100 flagged, got %+v", r)
	}
	if r.OutlierIndices[0] != 5 {
		t.Fatalf("expected index 5, got %v", r.OutlierIndices)
	}
	for i, v := range []float64{1, 2, 3, 4, 5} {
		if r.CleanData[i] != v {
			t.Fatalf("clean data order broken: %v", r.CleanData)
		}
	}
}

func TestDetectOutliersPartitionInvariant(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, 4, 5, 100},
		{5, 5, 5, 5},
		{-10, 0, 10, 500, -500},
		{},
	}
	for _, method := range []OutlierMethod{MethodIQR, MethodZScore, MethodModifiedZScore} {
		for _, xs := range series {
			r := DetectOutliers(xs, method)
			if len(r.Outliers)+len(r.CleanData) != len(xs) {
				t.Errorf("%s: partition not exhaustive for %v: %+v", method, xs, r)
			}
			if r.OutlierCount != len(r.Outliers) || len(r.OutlierIndices) != len(r.Outliers) {
				t.Errorf("%s: inconsistent counts: %+v", method, r)
			}
		}
	}
}

func TestDetectOutliersZScoreConstantSeries(t *testing.T) {
	// zero stddev must not divide by zero; nothing is an outlier
	r := DetectOutliers([]float64{7, 7, 7, 7, 7}, MethodZScore)
	if r.OutlierCount != 0 {
		t.Fatalf("expected no outliers for constant series, got %+v", r)
	}
}

func TestDetectOutliersModifiedZScore(t *testing.T) {
	xs := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 1000}
	r := DetectOutliers(xs, MethodModifiedZScore)
	// MAD is 0 here (majority identical), so the guard applies
	if r.OutlierCount != 0 {
		t.Fatalf("MAD=0 guard failed: %+v", r)
	}

	xs = []float64{9, 10, 11, 10, 9, 11, 10, 9, 11, 1000}
	r = DetectOutliers(xs, MethodModifiedZScore)
	if r.OutlierCount != 1 || r.Outliers[0] != 1000 {
		t.Fatalf("expected 1000 flagged, got %+v", r)
	}
}

func TestDetectOutliersUnknownMethodFallsBackToIQR(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 100}
	got := DetectOutliers(xs, OutlierMethod("GRUBBS"))
	want := DetectOutliers(xs, MethodIQR)
	if got.OutlierCount != want.OutlierCount {
		t.Fatalf("unknown method should behave like IQR: %+v vs %+v", got, want)
	}
}

func TestIsValidOutlierMethod(t *testing.T) {
	if !IsValidOutlierMethod(MethodIQR) || !IsValidOutlierMethod(MethodZScore) || !IsValidOutlierMethod(MethodModifiedZScore) {
		t.Fatal("known methods reported invalid")
	}
	if IsValidOutlierMethod(OutlierMethod("DIXON")) {
		t.Fatal("unknown method reported valid")
	}
}
