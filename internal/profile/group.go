package profile

import "sort"

// ValueGroup is one cluster of near-identical column values.
type ValueGroup struct {
	Template string   `json:"template"`
	Count    int      `json:"count"`
	Samples  []string `json:"samples"`
}

const DefaultSimilarityThreshold = 0.85
const maxSamplesPerGroup = 3

// GroupValues clusters values by normalized template, then merges
// templates whose Levenshtein similarity meets the default threshold.
func GroupValues(values []string) []ValueGroup {
	return GroupValuesWithThreshold(values, DefaultSimilarityThreshold)
}

func GroupValuesWithThreshold(values []string, threshold float64) []ValueGroup {
	templateGroups := make(map[string]*ValueGroup)

	for _, v := range values {
		norm := Normalize(v)
		if g, ok := templateGroups[norm]; ok {
			g.Count++
			if len(g.Samples) < maxSamplesPerGroup {
				g.Samples = append(g.Samples, v)
			}
		} else {
			templateGroups[norm] = &ValueGroup{
				Template: norm,
				Count:    1,
				Samples:  []string{v},
			}
		}
	}

	groups := make([]*ValueGroup, 0, len(templateGroups))
	for _, g := range templateGroups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Template < groups[j].Template
	})

	merged := mergeByLevenshtein(groups, threshold)

	result := make([]ValueGroup, 0, len(merged))
	for _, g := range merged {
		if g.Count > 0 {
			result = append(result, *g)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Template < result[j].Template
	})

	return result
}

func mergeByLevenshtein(groups []*ValueGroup, threshold float64) []*ValueGroup {
	if len(groups) <= 1 {
		return groups
	}

	for i := 0; i < len(groups); i++ {
		if groups[i].Count == 0 {
			continue
		}
		for j := i + 1; j < len(groups); j++ {
			if groups[j].Count == 0 {
				continue
			}
			sim := similarity(groups[i].Template, groups[j].Template)
			if sim >= threshold {
				groups[i].Count += groups[j].Count
				for _, s := range groups[j].Samples {
					if len(groups[i].Samples) < maxSamplesPerGroup {
						groups[i].Samples = append(groups[i].Samples, s)
					}
				}
				groups[j].Count = 0
				groups[j].Samples = nil
			}
		}
	}

	return groups
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
