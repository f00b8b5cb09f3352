package allocation

import (
	"sort"

	"github.com/guimove/tablefit/internal/model"
)

// Search finds the combination of available tables that seats the party with
// the fewest empty seats. Among equal-waste combinations it prefers fewer
// tables, then the first one found walking the tables in ascending seat order.
// It returns nil when no combination fits within the policy.
func Search(people int, available []model.Table, policy Policy) *model.Allocation {
	if people <= 0 {
		return nil
	}

	tables := make([]model.Table, 0, len(available))
	for _, t := range available {
		if t.Seats > 0 {
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return nil
	}
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Seats < tables[j].Seats
	})

	maxTables := policy.MaxTables
	if maxTables <= 0 {
		maxTables = len(tables)
	}

	s := newSearcher(tables, maxTables)
	s.walk(0, people)

	if !s.found || s.bestWaste > policy.MaxWaste(people) {
		return nil
	}

	chosen := make([]model.Table, len(s.best))
	for i, idx := range s.best {
		chosen[i] = tables[idx]
	}
	alloc := model.NewAllocation(people, chosen)
	return &alloc
}

// searcher carries the depth-first state over the sorted tables.
type searcher struct {
	tables    []model.Table
	suffix    []int // suffix[i] is the seat total of tables[i:]
	maxTables int

	path      []int
	best      []int
	bestWaste int
	found     bool
	done      bool
}

func newSearcher(tables []model.Table, maxTables int) *searcher {
	suffix := make([]int, len(tables)+1)
	for i := len(tables) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + tables[i].Seats
	}
	return &searcher{
		tables:    tables,
		suffix:    suffix,
		maxTables: maxTables,
		path:      make([]int, 0, maxTables),
	}
}

// walk extends the current path with tables from index start onwards until
// the remaining need is covered.
func (s *searcher) walk(start, remaining int) {
	for i := start; i < len(s.tables); i++ {
		if s.done || len(s.path) >= s.maxTables {
			return
		}
		// Suffix totals only shrink as i grows.
		if s.suffix[i] < remaining {
			return
		}
		// A zero-waste result can only be beaten by using fewer tables.
		if s.found && s.bestWaste == 0 && len(s.path)+1 >= len(s.best) {
			return
		}

		s.path = append(s.path, i)
		left := remaining - s.tables[i].Seats
		if left <= 0 {
			s.consider(-left)
		} else {
			s.walk(i+1, left)
		}
		s.path = s.path[:len(s.path)-1]
	}
}

func (s *searcher) consider(waste int) {
	better := !s.found ||
		waste < s.bestWaste ||
		(waste == s.bestWaste && len(s.path) < len(s.best))
	if !better {
		return
	}
	s.best = append(s.best[:0], s.path...)
	s.bestWaste = waste
	s.found = true
	if waste == 0 && len(s.best) == 1 {
		s.done = true
	}
}
