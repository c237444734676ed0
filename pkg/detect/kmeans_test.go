package detect

import (
	"math"
	"sort"
	"testing"
)

func TestKMeansSeparatesThreeClusters(t *testing.T) {
	var values []float64
	for i := 0; i < 100; i++ {
		values = append(values, 0.1+0.01*float64(i%5))
		values = append(values, 0.5+0.01*float64(i%5))
		values = append(values, 0.9+0.01*float64(i%5))
	}

	km := kMeans(values, 3, 100)
	if !km.Converged {
		t.Error("well-separated clusters should converge within the budget")
	}
	if len(km.Centroids) != 3 {
		t.Fatalf("got %d centroids, want 3", len(km.Centroids))
	}

	sorted := append([]float64(nil), km.Centroids...)
	sort.Float64s(sorted)
	wants := []float64{0.12, 0.52, 0.92}
	for i, want := range wants {
		if math.Abs(sorted[i]-want) > 0.05 {
			t.Errorf("centroid[%d] = %v, want near %v", i, sorted[i], want)
		}
	}
}

func TestKMeansCentroidsAscending(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5, 0.85, 0.15, 0.55, 0.95, 0.05, 0.45}
	km := kMeans(values, 3, 100)
	for i := 1; i < len(km.Centroids); i++ {
		if km.Centroids[i] < km.Centroids[i-1] {
			t.Fatalf("centroids not ascending: %v", km.Centroids)
		}
	}
}

func TestMergeCloseCentroids(t *testing.T) {
	merged := mergeCloseCentroids([]float64{0.4, 0.97, 1.0}, 0.05)
	if len(merged) != 2 {
		t.Fatalf("merged into %d centroids, want 2: %v", len(merged), merged)
	}
	if math.Abs(merged[1]-0.985) > 1e-9 {
		t.Errorf("merged centroid = %v, want the mean 0.985", merged[1])
	}
}

func TestMergeCloseCentroidsKeepsSeparated(t *testing.T) {
	kept := mergeCloseCentroids([]float64{0.1, 0.5, 0.9}, 0.05)
	if len(kept) != 3 {
		t.Errorf("well-separated centroids merged to %v", kept)
	}
}

func TestNearestCentroid(t *testing.T) {
	centroids := []float64{0.1, 0.5, 0.9}
	cases := []struct {
		v    float64
		want int
	}{
		{0.0, 0},
		{0.31, 1},
		{0.71, 2},
		{1.0, 2},
	}
	for _, c := range cases {
		if got := nearestCentroid(centroids, c.v); got != c.want {
			t.Errorf("nearestCentroid(%v) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestSubsampleBudget(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i)
	}

	sub := subsample(values, 100, 1)
	if len(sub) != 100 {
		t.Fatalf("subsample length = %d, want 100", len(sub))
	}

	// Same seed, same subsample.
	again := subsample(values, 100, 1)
	for i := range sub {
		if sub[i] != again[i] {
			t.Fatal("subsampling must be reproducible for a fixed seed")
		}
	}
}

func TestSubsampleUnderBudgetReturnsAll(t *testing.T) {
	values := []float64{1, 2, 3}
	sub := subsample(values, 100, 1)
	if len(sub) != 3 {
		t.Errorf("subsample length = %d, want all 3", len(sub))
	}
}
