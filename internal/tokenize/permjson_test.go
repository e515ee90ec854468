package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainedIn(t *testing.T) {
	cases := []struct {
		selector, key string
		want          bool
	}{
		{"animaux", "animaux", true},
		{"animaux.chien", "animaux", true},
		{"animaux.chien.nom", "animaux", true},
		{"animaux.chien.nom", "animaux.chien", true},
		{"animaux.chien", "animaux.chien", true},
		{"animaux.chien", "animaux.", false},
		{"animaux", "animaux.chien", false},
		{"animaux.ch", "animaux.chien", false},
		{"animau", "animaux", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ContainedIn(c.selector, c.key), "ContainedIn(%q, %q)", c.selector, c.key)
	}
}

func TestSeekLeafValues_NestedObject(t *testing.T) {
	value := map[string]any{
		"name": "pesti",
		"age":  float64(23),
	}

	got := map[string]any{}
	SeekLeafValues(value, nil, "catto", func(path string, v any) {
		got[path] = v
	})

	assert.Equal(t, "pesti", got["catto.name"])
	assert.Equal(t, float64(23), got["catto.age"])
}

func TestSeekLeafValues_Array(t *testing.T) {
	value := []any{"doggo", "catto"}

	var got []string
	SeekLeafValues(value, nil, "tags", func(path string, v any) {
		assert.Equal(t, "tags", path)
		got = append(got, v.(string))
	})

	assert.Equal(t, []string{"doggo", "catto"}, got)
}

func TestSeekLeafValues_SelectorRestrictsDescendants(t *testing.T) {
	value := map[string]any{
		"name":  "pesti",
		"breed": "shiba",
	}

	var got []string
	SeekLeafValues(value, []string{"catto.name"}, "catto", func(path string, v any) {
		got = append(got, path)
	})

	assert.Equal(t, []string{"catto.name"}, got)
}

func TestSeekLeafValues_SelectorOnParentWalksAllChildren(t *testing.T) {
	value := map[string]any{
		"name":  "pesti",
		"breed": "shiba",
	}

	var got []string
	SeekLeafValues(value, []string{"catto"}, "catto", func(path string, v any) {
		got = append(got, path)
	})

	assert.ElementsMatch(t, []string{"catto.name", "catto.breed"}, got)
}
