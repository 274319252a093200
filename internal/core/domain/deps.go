package domain

import (
	"fmt"
	"sort"
)

// DimensionTag names one scoring dimension. Tags are open-ended: scorers
// declare their own, and the dependency table is derived from them.
type DimensionTag string

// String returns the string representation.
func (t DimensionTag) String() string {
	return string(t)
}

// Scope is one (level, role) pair a dimension reads from. RoleAny makes
// the scope match every role at its level.
type Scope struct {
	Level Level
	Role  FragmentRole
}

// Matches returns true if a node at (level, role) falls inside the scope.
func (s Scope) Matches(level Level, role FragmentRole) bool {
	if s.Level != level {
		return false
	}
	return s.Role == RoleAny || s.Role == role
}

// IsValid returns true if both parts are recognised.
func (s Scope) IsValid() bool {
	if !s.Level.IsValid() {
		return false
	}
	return s.Role == RoleAny || s.Role.IsValid()
}

// String returns "level/role".
func (s Scope) String() string {
	return string(s.Level) + "/" + string(s.Role)
}

// ReadSet is the full set of scopes one dimension reads.
type ReadSet []Scope

// Matches returns true if any scope covers the node.
func (r ReadSet) Matches(level Level, role FragmentRole) bool {
	for _, scope := range r {
		if scope.Matches(level, role) {
			return true
		}
	}
	return false
}

// DependencyTable maps change scopes to the dimension tags they
// invalidate. The table is static for the lifetime of a run: it is
// derived once from the registered scorers' read-sets, validated at
// startup, and never consulted speculatively.
type DependencyTable struct {
	rows map[Scope]map[DimensionTag]struct{}
}

// DeriveDependencyTable builds the table from declared read-sets.
// Every scope must be valid and every read-set non-empty; violations
// wrap ErrDependencyTable and are fatal at startup.
func DeriveDependencyTable(readSets map[DimensionTag]ReadSet) (*DependencyTable, error) {
	table := &DependencyTable{rows: make(map[Scope]map[DimensionTag]struct{})}
	for tag, readSet := range readSets {
		if tag == "" {
			return nil, fmt.Errorf("%w: empty dimension tag", ErrDependencyTable)
		}
		if len(readSet) == 0 {
			return nil, fmt.Errorf("%w: dimension %q declares no read scopes", ErrDependencyTable, tag)
		}
		for _, scope := range readSet {
			if !scope.IsValid() {
				return nil, fmt.Errorf("%w: dimension %q reads invalid scope %q", ErrDependencyTable, tag, scope)
			}
			row, ok := table.rows[scope]
			if !ok {
				row = make(map[DimensionTag]struct{})
				table.rows[scope] = row
			}
			row[tag] = struct{}{}
		}
	}
	return table, nil
}

// Validate cross-checks read-sets against the table: every scope a
// dimension declares must map back to that dimension. A missing row means
// the table and the scorers disagree, which would silently skip
// recomputation, so it is fatal.
func (t *DependencyTable) Validate(readSets map[DimensionTag]ReadSet) error {
	for tag, readSet := range readSets {
		for _, scope := range readSet {
			row, ok := t.rows[scope]
			if !ok {
				return fmt.Errorf("%w: no row for scope %q read by dimension %q", ErrDependencyTable, scope, tag)
			}
			if _, ok := row[tag]; !ok {
				return fmt.Errorf("%w: row %q does not list dimension %q", ErrDependencyTable, scope, tag)
			}
		}
	}
	return nil
}

// Affected returns the tags invalidated by a change set, sorted for
// deterministic iteration. An empty change set affects nothing.
func (t *DependencyTable) Affected(cs ChangeSet) []DimensionTag {
	dirty := make(map[DimensionTag]struct{})
	for _, node := range cs.Changed {
		t.collect(Scope{Level: node.Level, Role: node.Role}, dirty)
		t.collect(Scope{Level: node.Level, Role: RoleAny}, dirty)
	}
	return sortedTags(dirty)
}

func (t *DependencyTable) collect(scope Scope, into map[DimensionTag]struct{}) {
	for tag := range t.rows[scope] {
		into[tag] = struct{}{}
	}
}

// Tags returns every dimension tag the table knows, sorted.
func (t *DependencyTable) Tags() []DimensionTag {
	all := make(map[DimensionTag]struct{})
	for _, row := range t.rows {
		for tag := range row {
			all[tag] = struct{}{}
		}
	}
	return sortedTags(all)
}

// Rows returns a copy of the table for display, keyed by scope string.
func (t *DependencyTable) Rows() map[string][]DimensionTag {
	out := make(map[string][]DimensionTag, len(t.rows))
	for scope, row := range t.rows {
		tags := make(map[DimensionTag]struct{}, len(row))
		for tag := range row {
			tags[tag] = struct{}{}
		}
		out[scope.String()] = sortedTags(tags)
	}
	return out
}

func sortedTags(set map[DimensionTag]struct{}) []DimensionTag {
	tags := make([]DimensionTag, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
