package settlement

import (
	"sort"
	"strings"
	"unicode"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxGroupIdentifier bounds generated group identifiers.
const maxGroupIdentifier = 100

// GroupIndex maps bettor names to their group within one championship.
// Lookups go through domain.NormalizeName; members keep their stored spelling.
type GroupIndex struct {
	byName    map[string]string
	byGroup   map[string][]string
	groupKeys []string
}

// NewGroupIndex indexes the group rows of one championship.
func NewGroupIndex(rows []domain.GroupMember) *GroupIndex {
	gi := &GroupIndex{
		byName:  make(map[string]string, len(rows)),
		byGroup: make(map[string][]string),
	}
	for _, r := range rows {
		key := domain.NormalizeName(r.BettorName)
		if key == "" {
			continue
		}
		if _, ok := gi.byGroup[r.GroupIdentifier]; !ok {
			gi.groupKeys = append(gi.groupKeys, r.GroupIdentifier)
		}
		gi.byName[key] = r.GroupIdentifier
		gi.byGroup[r.GroupIdentifier] = append(gi.byGroup[r.GroupIdentifier], CleanName(r.BettorName))
	}
	sort.Strings(gi.groupKeys)
	return gi
}

// GroupOf returns the group identifier holding the bettor name.
func (gi *GroupIndex) GroupOf(name string) (string, bool) {
	id, ok := gi.byName[domain.NormalizeName(name)]
	return id, ok
}

// Members returns the deduplicated member names of a group, sorted
// case-insensitively.
func (gi *GroupIndex) Members(groupIdentifier string) []string {
	return dedupSorted(gi.byGroup[groupIdentifier])
}

// DisplayName returns the members of the group joined by "/".
func (gi *GroupIndex) DisplayName(groupIdentifier string) string {
	return GroupDisplayName(gi.byGroup[groupIdentifier])
}

// List returns every group with sorted members, ordered by identifier.
func (gi *GroupIndex) List() []domain.Group {
	out := make([]domain.Group, 0, len(gi.groupKeys))
	for _, id := range gi.groupKeys {
		out = append(out, domain.Group{GroupIdentifier: id, Members: gi.Members(id)})
	}
	return out
}

// GroupDisplayName deduplicates and sorts the member names and joins them by "/".
func GroupDisplayName(members []string) string {
	return strings.Join(dedupSorted(members), "/")
}

// CleanName trims s and collapses inner whitespace, keeping its case. Group
// members are stored in this form.
func CleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupSorted drops names that normalize alike, keeping the first spelling.
func dedupSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := domain.NormalizeName(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessName(out[i], out[j]) })
	return out
}

// GroupSlug derives a deterministic identifier from member names: each name
// is stripped of diacritics, lowercased, runs of anything outside [a-z0-9]
// become "-", then the names are sorted, joined by "__" and cut to 100
// characters. It returns "" when nothing alphanumeric is left.
func GroupSlug(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if s := slugPart(n); s != "" {
			parts = append(parts, s)
		}
	}
	sort.Strings(parts)
	id := strings.Join(parts, "__")
	if len(id) > maxGroupIdentifier {
		id = id[:maxGroupIdentifier]
	}
	return id
}

func slugPart(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// ──────────────────────────────────────────────────────────────────────────────
// Define / dissolve planning
// ──────────────────────────────────────────────────────────────────────────────

// GroupSpec is one requested group. An empty GroupIdentifier asks for one to
// be derived.
type GroupSpec struct {
	GroupIdentifier string   `json:"groupIdentifier"`
	Names           []string `json:"names"`
}

// DissolveSelector picks group rows to remove: a whole group, a set of names
// wherever they are, or a named subset of one group.
type DissolveSelector struct {
	GroupIdentifier string   `json:"groupIdentifier"`
	Names           []string `json:"names"`
}

// GroupPlan is the membership change a define or dissolve applies atomically:
// first every row whose normalized name is in Remove is deleted, then Insert
// is written. Released lists, in stored spelling, the names a dissolve
// returns to individual settlement.
type GroupPlan struct {
	Remove   []string
	Insert   []domain.GroupMember
	Groups   []domain.Group
	Released []string
}

// PlanDefinition computes the membership change of define(championship, specs)
// against the championship's current rows.
//
// Identifier precedence per group: client-supplied, GroupSlug of the names,
// then newID(). Every group touched by the request is affected: the target
// identifier and any group a listed name currently belongs to. Members of an
// affected group that are not re-listed are detached. A name listed in two
// groups fails the whole request.
func PlanDefinition(existing []domain.GroupMember, specs []GroupSpec, newID func() string) (*GroupPlan, error) {
	if len(specs) == 0 {
		return nil, domain.NewValidationError("groups", "at least one group is required")
	}

	current := NewGroupIndex(existing)
	claimed := make(map[string]int)
	listed := make([][]string, len(specs))

	for i, spec := range specs {
		var names []string
		seen := make(map[string]struct{})
		for _, raw := range spec.Names {
			name := CleanName(raw)
			key := domain.NormalizeName(name)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if prev, ok := claimed[key]; ok && prev != i {
				return nil, domain.NewValidationError("names", "name %q listed in more than one group", name)
			}
			claimed[key] = i
			names = append(names, name)
		}
		if len(names) == 0 {
			return nil, domain.NewValidationError("names", "group %d has no member names", i+1)
		}
		sort.SliceStable(names, func(a, b int) bool { return lessName(names[a], names[b]) })
		listed[i] = names
	}

	plan := &GroupPlan{}
	removed := make(map[string]struct{})
	assigned := make(map[string]int)
	detach := func(groupIdentifier string) {
		for _, member := range current.byGroup[groupIdentifier] {
			removed[domain.NormalizeName(member)] = struct{}{}
		}
	}

	for i, spec := range specs {
		names := listed[i]
		id := strings.TrimSpace(spec.GroupIdentifier)
		if id == "" {
			id = GroupSlug(names)
		}
		if id == "" {
			id = newID()
		}
		if prev, ok := assigned[id]; ok && prev != i {
			return nil, domain.NewValidationError("groupIdentifier", "group identifier %q assigned to more than one group", id)
		}
		assigned[id] = i

		detach(id)
		for _, n := range names {
			if old, ok := current.GroupOf(n); ok && old != id {
				detach(old)
			}
			removed[domain.NormalizeName(n)] = struct{}{}
			plan.Insert = append(plan.Insert, domain.GroupMember{GroupIdentifier: id, BettorName: n})
		}
		plan.Groups = append(plan.Groups, domain.Group{GroupIdentifier: id, Members: names})
	}

	plan.Remove = sortedKeys(removed)
	return plan, nil
}

// PlanDissolve computes the rows removed by dissolve(championship, sel).
func PlanDissolve(existing []domain.GroupMember, sel DissolveSelector) (*GroupPlan, error) {
	id := strings.TrimSpace(sel.GroupIdentifier)
	names := make(map[string]struct{}, len(sel.Names))
	for _, raw := range sel.Names {
		if n := domain.NormalizeName(raw); n != "" {
			names[n] = struct{}{}
		}
	}
	if id == "" && len(names) == 0 {
		return nil, domain.NewValidationError("selector", "groupIdentifier or names is required")
	}

	removed := make(map[string]struct{})
	var released []string
	for _, r := range existing {
		key := domain.NormalizeName(r.BettorName)
		if id != "" && r.GroupIdentifier != id {
			continue
		}
		if len(names) > 0 {
			if _, ok := names[key]; !ok {
				continue
			}
		}
		if _, ok := removed[key]; !ok {
			released = append(released, CleanName(r.BettorName))
		}
		removed[key] = struct{}{}
	}
	if len(removed) == 0 {
		return nil, domain.ErrGroupNotFound
	}
	return &GroupPlan{Remove: sortedKeys(removed), Released: dedupSorted(released)}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
