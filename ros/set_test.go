package ros

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetDifference(t *testing.T) {
	result := setDifference([]string{"a", "b", "c", "b"}, []string{"b", "d"})
	sort.Strings(result)
	if diff := cmp.Diff([]string{"a", "c"}, result); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	if result := setDifference(nil, []string{"a"}); len(result) != 0 {
		t.Error(result)
	}
}
