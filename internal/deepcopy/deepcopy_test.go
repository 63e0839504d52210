package deepcopy

import (
	"reflect"
	"testing"
)

type overlay struct {
	Enabled *bool
	Limits  map[string]int
	Tags    []string
	Nested  *nested
	Color   [4]float32
	Extra   any
	hidden  int
}

type nested struct {
	Volume *int
	Labels []string
}

func TestCloneDetachesReferences(t *testing.T) {
	enabled := true
	volume := 3
	source := overlay{
		Enabled: &enabled,
		Limits:  map[string]int{"a": 1},
		Tags:    []string{"x"},
		Nested:  &nested{Volume: &volume, Labels: []string{"l"}},
		Color:   [4]float32{0, 0, 1, 1},
		Extra:   map[string]any{"k": []any{1.0}},
	}

	clone := Clone(source)
	if !reflect.DeepEqual(source, clone) {
		t.Fatalf("clone mismatch:\nwant: %#v\n got: %#v", source, clone)
	}

	*clone.Enabled = false
	clone.Limits["a"] = 9
	clone.Tags[0] = "y"
	*clone.Nested.Volume = 7
	clone.Nested.Labels[0] = "m"
	clone.Extra.(map[string]any)["k"].([]any)[0] = 2.0

	if !enabled || source.Limits["a"] != 1 || source.Tags[0] != "x" || volume != 3 || source.Nested.Labels[0] != "l" {
		t.Fatalf("source mutated through clone: %#v", source)
	}
	if source.Extra.(map[string]any)["k"].([]any)[0] != 1.0 {
		t.Fatalf("interface contents shared with clone: %#v", source.Extra)
	}
}

func TestCloneDropsUnexportedFields(t *testing.T) {
	clone := Clone(overlay{hidden: 4, Tags: []string{}})
	if clone.hidden != 0 {
		t.Fatalf("expected unexported field to be zero, got %d", clone.hidden)
	}
	if clone.Tags == nil || len(clone.Tags) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", clone.Tags)
	}
}

func TestCloneNilAndScalars(t *testing.T) {
	var nilMap map[string]any
	if got := Clone(nilMap); got != nil {
		t.Fatalf("expected nil map, got %#v", got)
	}
	if got := Clone(42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	var anyNil any
	if got := Clone(anyNil); got != nil {
		t.Fatalf("expected nil interface, got %#v", got)
	}
	var anyValue any = []int{1, 2}
	got := Clone(anyValue).([]int)
	got[0] = 9
	if anyValue.([]int)[0] != 1 {
		t.Fatalf("slice behind interface shared with clone")
	}
}
