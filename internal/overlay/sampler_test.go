package overlay

import "testing"

func TestSampleDistinctReturnsDistinctElements(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}

	for trial := 0; trial < 20; trial++ {
		got := sampleDistinct(items, 3)
		if len(got) != 3 {
			t.Fatalf("sampleDistinct returned %d elements, want 3", len(got))
		}
		seen := map[string]bool{}
		for _, v := range got {
			if seen[v] {
				t.Fatalf("sampleDistinct returned a duplicate: %v", got)
			}
			seen[v] = true
		}
	}
}

func TestSampleDistinctKEqualsLenReturnsAll(t *testing.T) {
	items := []string{"a", "b", "c"}
	got := sampleDistinct(items, 3)
	if len(got) != 3 {
		t.Fatalf("expected all 3 elements, got %v", got)
	}
	seen := map[string]bool{}
	for _, v := range got {
		seen[v] = true
	}
	for _, v := range items {
		if !seen[v] {
			t.Fatalf("sampleDistinct dropped %q: %v", v, got)
		}
	}
}

func TestSampleDistinctKGreaterThanLenReturnsAll(t *testing.T) {
	items := []string{"a", "b"}
	got := sampleDistinct(items, 5)
	if len(got) != 2 {
		t.Fatalf("expected all 2 elements when k > len(items), got %v", got)
	}
}

func TestSampleDistinctZero(t *testing.T) {
	if got := sampleDistinct([]string{"a", "b"}, 0); len(got) != 0 {
		t.Fatalf("expected no elements for k=0, got %v", got)
	}
}
