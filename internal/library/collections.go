package library

import "sort"

// CollectionNode is a collection with its children, used for tree views.
type CollectionNode struct {
	Collection
	Children []*CollectionNode `json:"children,omitempty"`
}

// RepairCollections returns a copy of cols in which every parent pointer that
// cannot form a tree is cleared: self-parents, parents that do not exist, and
// the edge that closes a cycle. The ids of demoted collections are returned in
// the order they were repaired. cols is not modified.
func RepairCollections(cols []Collection) ([]Collection, []string) {
	out := make([]Collection, len(cols))
	copy(out, cols)

	index := make(map[string]int, len(out))
	for i := range out {
		if _, dup := index[out[i].ID]; !dup {
			index[out[i].ID] = i
		}
	}

	var repaired []string
	demote := func(i int) {
		out[i].ParentID = nil
		repaired = append(repaired, out[i].ID)
	}

	for i := range out {
		p := out[i].ParentID
		if p == nil {
			continue
		}
		if *p == out[i].ID {
			demote(i)
			continue
		}
		if _, ok := index[*p]; !ok {
			demote(i)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(out))
	for start := range out {
		if state[start] != unvisited {
			continue
		}
		var path []int
		cur := start
		for state[cur] == unvisited {
			state[cur] = visiting
			path = append(path, cur)
			if out[cur].ParentID == nil {
				break
			}
			cur = index[*out[cur].ParentID]
		}
		// Landing on a node of the current walk means the last step closed a cycle.
		if state[cur] == visiting && out[cur].ParentID != nil {
			demote(path[len(path)-1])
		}
		for _, i := range path {
			state[i] = done
		}
	}

	return out, repaired
}

// BuildTree arranges cols into a forest. Children keep their input order.
// The input is expected to be repaired; orphans are attached as roots.
func BuildTree(cols []Collection) []*CollectionNode {
	nodes := make(map[string]*CollectionNode, len(cols))
	ordered := make([]*CollectionNode, 0, len(cols))
	for _, c := range cols {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &CollectionNode{Collection: c}
		nodes[c.ID] = n
		ordered = append(ordered, n)
	}

	var roots []*CollectionNode
	for _, n := range ordered {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Tags returns the distinct tags used across prompts, sorted.
func Tags(prompts []Prompt) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range prompts {
		for _, t := range p.Tags {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
