package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAscRankingRule(t *testing.T) {
	field, ok := AscRankingRule("asc(price)")
	assert.True(t, ok)
	assert.Equal(t, "price", field)

	_, ok = AscRankingRule("desc(price)")
	assert.False(t, ok)

	_, ok = AscRankingRule("not a rule")
	assert.False(t, ok)
}

func TestDescRankingRule(t *testing.T) {
	field, ok := DescRankingRule("desc(release_date)")
	assert.True(t, ok)
	assert.Equal(t, "release_date", field)
}

type fakeMigrator struct {
	from  int
	ran   bool
	fails bool
}

func (m *fakeMigrator) FromVersion() int { return m.from }
func (m *fakeMigrator) Migrate(dir string) error {
	m.ran = true
	if m.fails {
		return assert.AnError
	}
	return nil
}

func TestChain_AppliesEachStepInOrder(t *testing.T) {
	v5to6 := &fakeMigrator{from: 5}
	v6to7 := &fakeMigrator{from: 6}

	final, err := Chain(t.TempDir(), 5, 7, []Migrator{v5to6, v6to7})
	assert.NoError(t, err)
	assert.Equal(t, 7, final)
	assert.True(t, v5to6.ran)
	assert.True(t, v6to7.ran)
}

func TestChain_StopsAtTargetVersion(t *testing.T) {
	v5to6 := &fakeMigrator{from: 5}
	v6to7 := &fakeMigrator{from: 6}

	final, err := Chain(t.TempDir(), 5, 6, []Migrator{v5to6, v6to7})
	assert.NoError(t, err)
	assert.Equal(t, 6, final)
	assert.True(t, v5to6.ran)
	assert.False(t, v6to7.ran)
}

func TestChain_PropagatesMigratorError(t *testing.T) {
	bad := &fakeMigrator{from: 5, fails: true}
	final, err := Chain(t.TempDir(), 5, 6, []Migrator{bad})
	assert.Error(t, err)
	assert.Equal(t, 5, final)
}
