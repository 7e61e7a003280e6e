package ros

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadParamFromString(t *testing.T) {
	cases := []struct {
		in   string
		want interface{}
	}{
		{"42", int32(42)},
		{"-7", int32(-7)},
		{"3.5", 3.5},
		{"1e3", 1000.0},
		{"10000000000", 1e10},
		{"true", true},
		{"false", false},
		{`"quoted"`, "quoted"},
		{"world", "world"},
		{"/path/to/ORBvoc.txt", "/path/to/ORBvoc.txt"},
		{"cam0", "cam0"},
		{"null", "null"},
		{"[1, 2.5, \"a\"]", []interface{}{int32(1), 2.5, "a"}},
		{`{"a": 1, "b": [true]}`, map[string]interface{}{"a": int32(1), "b": []interface{}{true}}},
		{" 42 ", int32(42)},
		{"true,foo", "true,foo"},
		{"[1,2] junk", "[1,2] junk"},
		{`"a" "b"`, `"a" "b"`},
		{`{"a": 1}}`, `{"a": 1}}`},
		{"12abc", "12abc"},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, loadParamFromString(c.in)); diff != "" {
			t.Errorf("loadParamFromString(%q): (-want +got)\n%s", c.in, diff)
		}
	}
}

type mapParams map[string]interface{}

func (m mapParams) HasParam(name string) (bool, error) {
	_, ok := m[name]
	return ok, nil
}

func (m mapParams) GetParam(name string) (interface{}, error) {
	return m[name], nil
}

func TestTypedParamGetters(t *testing.T) {
	params := mapParams{
		"s": "value",
		"b": true,
		"i": int32(3),
		"f": 0.25,
	}

	if s, found, err := GetParamString(params, "s"); err != nil || !found || s != "value" {
		t.Error(s, found, err)
	}
	if _, found, err := GetParamString(params, "missing"); err != nil || found {
		t.Error(found, err)
	}
	if _, found, err := GetParamString(params, "b"); err == nil || !found {
		t.Error("type mismatch not reported", err)
	}
	if b, found, err := GetParamBool(params, "b"); err != nil || !found || !b {
		t.Error(b, found, err)
	}
	if f, _, err := GetParamFloat(params, "i"); err != nil || f != 3 {
		t.Error(f, err)
	}
	if f, _, err := GetParamFloat(params, "f"); err != nil || f != 0.25 {
		t.Error(f, err)
	}
	if i, _, err := GetParamInt(params, "i"); err != nil || i != 3 {
		t.Error(i, err)
	}
	if _, _, err := GetParamInt(params, "f"); err == nil {
		t.Error("fractional value accepted as int")
	}
}
