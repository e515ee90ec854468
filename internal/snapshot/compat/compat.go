// Package compat holds the dump format's backward-compatibility layer:
// forward-only migrators that translate an older dump layout up to the
// current one, and small parsers for field syntaxes later versions
// dropped. None of this runs on the hot write path — it exists only so
// a dump produced by an older engine build can still be read.
package compat

import "strings"

// Migrator upgrades one dump layout version to the next. Chained
// migrators (v5->v6, v6->v7, ...) let a reader walk an arbitrarily old
// dump up to the version the engine understands natively, one step at
// a time, without every reader needing to understand every past
// layout directly.
type Migrator interface {
	// FromVersion is the dump_version this migrator accepts as input.
	FromVersion() int
	// Migrate rewrites the dump staged at dir in place, advancing it by
	// exactly one version.
	Migrate(dir string) error
}

// Chain walks migrators (assumed sorted by FromVersion ascending) in
// order, running each one whose FromVersion equals the dump's version
// at that point, until the dump reaches targetVersion.
func Chain(dir string, currentVersion, targetVersion int, migrators []Migrator) (int, error) {
	version := currentVersion
	for _, m := range migrators {
		if version >= targetVersion {
			break
		}
		if m.FromVersion() != version {
			continue
		}
		if err := m.Migrate(dir); err != nil {
			return version, err
		}
		version++
	}
	return version, nil
}

// AscRankingRule parses the legacy v1 ranking-rule syntax `asc(field)`
// and returns the field name.
func AscRankingRule(text string) (field string, ok bool) {
	return rankingRuleField(text, "asc(")
}

// DescRankingRule parses the legacy v1 ranking-rule syntax
// `desc(field)` and returns the field name.
func DescRankingRule(text string) (field string, ok bool) {
	return rankingRuleField(text, "desc(")
}

func rankingRuleField(text, prefix string) (string, bool) {
	_, tail, found := strings.Cut(text, prefix)
	if !found {
		return "", false
	}
	// rsplit_once(')'): split on the *last* ')', keep everything before it.
	idx := strings.LastIndex(tail, ")")
	if idx < 0 {
		return "", false
	}
	return tail[:idx], true
}
