package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSorter_MergesOnDuplicateKey(t *testing.T) {
	s := NewSorter()

	a := &DelAddBitmaps{}
	a.InsertDel(1)
	s.Insert("word:hello", a)

	b := &DelAddBitmaps{}
	b.InsertAdd(2)
	s.Insert("word:hello", b)

	require.Equal(t, 1, s.Len())

	entries := s.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, "word:hello", entries[0].Key)
	assert.True(t, entries[0].Value.Del.Contains(1))
	assert.True(t, entries[0].Value.Add.Contains(2))
}

func TestSorter_DrainAscendingOrder(t *testing.T) {
	s := NewSorter()
	s.Insert("word:zebra", &DelAddBitmaps{})
	s.Insert("word:apple", &DelAddBitmaps{})
	s.Insert("word:mango", &DelAddBitmaps{})

	entries := s.Drain()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"word:apple", "word:mango", "word:zebra"}, []string{
		entries[0].Key, entries[1].Key, entries[2].Key,
	})
}

func TestSorter_DrainResetsState(t *testing.T) {
	s := NewSorter()
	s.Insert("word:a", &DelAddBitmaps{})
	require.Equal(t, 1, s.Len())

	s.Drain()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Drain())
}
