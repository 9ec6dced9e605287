package analyze

import (
	"fmt"
	"regexp"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
)

// percent expresses size as a percentage of the graph's total size.
func percent(g *ir.Graph, size uint64) float64 {
	return float64(size) * 100.0 / float64(g.Size())
}

// formatPercent renders a percentage with two fractional digits.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// regexpSet is a compiled group of patterns matching if any member matches.
type regexpSet []*regexp.Regexp

func compileRegexps(patterns []string) (regexpSet, error) {
	set := make(regexpSet, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("bad regexp %q", p), err)
		}
		set = append(set, re)
	}
	return set, nil
}

func (s regexpSet) matches(name string) bool {
	for _, re := range s {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// matchItemsByRegexps returns the ids of all items whose name matches any of
// the patterns, in id order.
func matchItemsByRegexps(g *ir.Graph, patterns []string) ([]ir.Id, error) {
	set, err := compileRegexps(patterns)
	if err != nil {
		return nil, err
	}
	var ids []ir.Id
	for _, it := range g.Iter() {
		if set.matches(it.Name()) {
			ids = append(ids, it.Id())
		}
	}
	return ids, nil
}

// matchItemsByName looks items up by exact display name, preserving the
// order names were listed in. Names with no match are dropped.
func matchItemsByName(g *ir.Graph, names []string) []ir.Id {
	var ids []ir.Id
	for _, name := range names {
		if it, ok := g.GetItemByName(name); ok {
			ids = append(ids, it.Id())
		}
	}
	return ids
}

// reachableSet walks the edges depth first from the meta root and returns
// the set of reachable ids, meta root included.
func reachableSet(g *ir.Graph) map[ir.Id]struct{} {
	seen := make(map[ir.Id]struct{}, g.Len())
	stack := []ir.Id{g.MetaRoot()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		neighbors := g.Neighbors(id)
		for i := len(neighbors) - 1; i >= 0; i-- {
			if _, ok := seen[neighbors[i]]; !ok {
				stack = append(stack, neighbors[i])
			}
		}
	}
	return seen
}
