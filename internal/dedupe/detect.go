package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/portal-cli/internal/model"
)

// Default similarity thresholds. Franchisee names carry more noise
// (personal names, trade names) than registered company names, so the
// company threshold is stricter.
const (
	DefaultNameThreshold    = 0.80
	DefaultCompanyThreshold = 0.85
)

// Options tunes the detection thresholds.
type Options struct {
	NameThreshold    float64
	CompanyThreshold float64
}

// Detector finds probable duplicate franchisees by pairwise comparison.
// O(n²) over the input list; intended for portal-scale record counts.
type Detector struct {
	opts Options
}

// NewDetector creates a Detector. Zero thresholds fall back to defaults.
func NewDetector(opts Options) *Detector {
	if opts.NameThreshold <= 0 {
		opts.NameThreshold = DefaultNameThreshold
	}
	if opts.CompanyThreshold <= 0 {
		opts.CompanyThreshold = DefaultCompanyThreshold
	}
	return &Detector{opts: opts}
}

// Detect compares every unordered pair of franchisees across four
// independent signals and returns the duplicate groups found:
//
//   - name similarity above the name threshold
//   - case-insensitive email equality
//   - normalized tax-ID equality
//   - company-name similarity above the company threshold
//
// Any firing signal flags the pair, and every firing reason is recorded.
// Pairs sharing a member are folded into one group (union-find over the
// is-duplicate-of relation), so A~B and B~C yield a single 3-member group
// with the union of reasons.
func (d *Detector) Detect(franchisees []model.Franchisee) []model.DuplicateGroup {
	n := len(franchisees)
	if n < 2 {
		return nil
	}

	// Normalize once per record.
	names := make([]string, n)
	companies := make([]string, n)
	taxIDs := make([]string, n)
	emails := make([]string, n)
	for i, f := range franchisees {
		names[i] = NormalizeName(f.Name)
		companies[i] = NormalizeName(f.CompanyName)
		taxIDs[i] = NormalizeName(f.TaxID)
		emails[i] = strings.ToLower(strings.TrimSpace(f.Email))
	}

	uf := newUnionFind(n)
	reasons := make(map[int][]string) // root index -> reasons, merged on union

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var pairReasons []string

			if names[i] != "" && names[j] != "" {
				if sim := Similarity(names[i], names[j]); sim > d.opts.NameThreshold {
					pairReasons = append(pairReasons, fmt.Sprintf("Nombres similares (%.0f%%)", sim*100))
				}
			}
			if emails[i] != "" && emails[i] == emails[j] {
				pairReasons = append(pairReasons, "Mismo email")
			}
			if taxIDs[i] != "" && taxIDs[i] == taxIDs[j] {
				pairReasons = append(pairReasons, "Mismo CIF/NIF")
			}
			if companies[i] != "" && companies[j] != "" {
				if sim := Similarity(companies[i], companies[j]); sim > d.opts.CompanyThreshold {
					pairReasons = append(pairReasons, fmt.Sprintf("Empresa similar (%.0f%%)", sim*100))
				}
			}

			if len(pairReasons) == 0 {
				continue
			}

			ri, rj := uf.find(i), uf.find(j)
			merged := append(append([]string{}, reasons[ri]...), reasons[rj]...)
			merged = append(merged, pairReasons...)
			root := uf.union(i, j)
			delete(reasons, ri)
			delete(reasons, rj)
			reasons[root] = merged
		}
	}

	// Collect members per root, preserving input order.
	members := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		if uf.size[root] < 2 {
			continue
		}
		members[root] = append(members[root], i)
	}

	roots := make([]int, 0, len(members))
	for root := range members {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(a, b int) bool { return members[roots[a]][0] < members[roots[b]][0] })

	groups := make([]model.DuplicateGroup, 0, len(roots))
	for _, root := range roots {
		idx := members[root]
		g := model.DuplicateGroup{
			Count:   len(idx),
			Reasons: dedupStrings(reasons[root]),
		}
		keys := make([]string, 0, len(idx))
		for _, i := range idx {
			g.Franchisees = append(g.Franchisees, franchisees[i])
			if franchisees[i].ID != "" {
				keys = append(keys, franchisees[i].ID)
			} else {
				keys = append(keys, fmt.Sprintf("#%d", i))
			}
		}
		g.Key = strings.Join(keys, "|")
		groups = append(groups, g)
	}

	return groups
}

// unionFind is a standard disjoint-set with union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) int {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return ra
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return ra
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
