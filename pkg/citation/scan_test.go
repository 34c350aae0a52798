package citation

import (
	"reflect"
	"testing"
)

func TestScanMarkers_AllSyntaxes(t *testing.T) {
	text := "As shown [cite:abc] and later {{cite:def}}, with a final note [@ghi]."
	markers := ScanMarkers(text)
	if len(markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(markers))
	}

	refs := []string{markers[0].Ref, markers[1].Ref, markers[2].Ref}
	want := []string{"abc", "def", "ghi"}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("refs = %v, want %v (position order)", refs, want)
	}
}

func TestScanMarkers_PositionOrderAcrossSyntaxes(t *testing.T) {
	text := "[@late] comes first here, then [cite:early] later."
	markers := ScanMarkers(text)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].Ref != "late" || markers[1].Ref != "early" {
		t.Errorf("markers must sort by text position, got %v then %v", markers[0].Ref, markers[1].Ref)
	}
}

func TestUniqueRefs_RepeatMentions(t *testing.T) {
	text := "[cite:a] then [cite:b] then [cite:a] again and {{cite:a}} once more."
	refs, counts := UniqueRefs(ScanMarkers(text))

	if !reflect.DeepEqual(refs, []string{"a", "b"}) {
		t.Errorf("unique refs = %v, want [a b] in first-seen order", refs)
	}
	if counts["a"] != 3 || counts["b"] != 1 {
		t.Errorf("counts = %v, want a:3 b:1", counts)
	}
}

func TestScanMarkers_NoMarkers(t *testing.T) {
	if got := ScanMarkers("plain text without any markers at all"); len(got) != 0 {
		t.Errorf("expected no markers, got %v", got)
	}
}
