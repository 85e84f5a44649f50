package scheduler

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
)

type vertex struct {
	id   string
	rank int
	// children counts the edges to each dependent, since two pins of the same
	// pair of nodes may be connected more than once.
	children map[string]int
	parents  map[string]int
}

// Scheduler holds the dependency graph of pure nodes and its cached order.
type Scheduler struct {
	vertices map[string]*vertex
	nextRank int
	order    []string
	valid    bool
}

// New creates and returns an initialized, empty Scheduler.
func New() *Scheduler {
	return &Scheduler{
		vertices: make(map[string]*vertex),
	}
}

// AddNode adds a node. Nodes added earlier come first among independent
// nodes. Adding a known id does nothing.
func (s *Scheduler) AddNode(id string) {
	if _, ok := s.vertices[id]; ok {
		return
	}
	s.vertices[id] = &vertex{
		id:       id,
		rank:     s.nextRank,
		children: make(map[string]int),
		parents:  make(map[string]int),
	}
	s.nextRank++
	s.valid = false
}

// RemoveNode drops a node and every edge touching it.
func (s *Scheduler) RemoveNode(id string) {
	v, ok := s.vertices[id]
	if !ok {
		return
	}
	for child := range v.children {
		delete(s.vertices[child].parents, id)
	}
	for parent := range v.parents {
		delete(s.vertices[parent].children, id)
	}
	delete(s.vertices, id)
	s.valid = false
}

// Has reports whether id is known.
func (s *Scheduler) Has(id string) bool {
	_, ok := s.vertices[id]
	return ok
}

// AddEdge records that toID depends on fromID. It fails for unknown nodes,
// self references and edges that would close a cycle; the graph is left
// unchanged in every failure case.
func (s *Scheduler) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("%w: %s -> %s", flowerr.ErrSelfConnection, fromID, toID)
	}
	from, ok := s.vertices[fromID]
	if !ok {
		return fmt.Errorf("%w: %s", flowerr.ErrUnknownNode, fromID)
	}
	to, ok := s.vertices[toID]
	if !ok {
		return fmt.Errorf("%w: %s", flowerr.ErrUnknownNode, toID)
	}
	if path := s.PathBetween(toID, fromID); path != nil {
		return fmt.Errorf("%w: %s", flowerr.ErrCycleDetected, strings.Join(append(path, toID), " -> "))
	}

	if from.children[toID] == 0 {
		s.valid = false
	}
	from.children[toID]++
	to.parents[fromID]++
	return nil
}

// RemoveEdge drops one edge between the two nodes.
func (s *Scheduler) RemoveEdge(fromID, toID string) {
	from, ok := s.vertices[fromID]
	if !ok || from.children[toID] == 0 {
		return
	}
	to := s.vertices[toID]
	from.children[toID]--
	to.parents[fromID]--
	if from.children[toID] == 0 {
		delete(from.children, toID)
		delete(to.parents, fromID)
		s.valid = false
	}
}

// Dependencies returns the ids of the nodes id depends on, in rank order.
func (s *Scheduler) Dependencies(id string) []string {
	v, ok := s.vertices[id]
	if !ok {
		return nil
	}
	return s.ranked(v.parents)
}

// Dependents returns the ids of the nodes depending on id, in rank order.
func (s *Scheduler) Dependents(id string) []string {
	v, ok := s.vertices[id]
	if !ok {
		return nil
	}
	return s.ranked(v.children)
}

func (s *Scheduler) ranked(set map[string]int) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int { return s.vertices[a].rank - s.vertices[b].rank })
	return ids
}

// PathBetween returns a chain of ids leading from fromID to toID, both
// included, or nil when toID cannot be reached. Children are explored in
// rank order so the reported path is deterministic.
func (s *Scheduler) PathBetween(fromID, toID string) []string {
	if _, ok := s.vertices[fromID]; !ok {
		return nil
	}
	visited := make(map[string]bool)
	var path []string

	var visit func(id string) bool
	visit = func(id string) bool {
		if visited[id] {
			return false
		}
		visited[id] = true
		path = append(path, id)
		if id == toID {
			return true
		}
		for _, child := range s.Dependents(id) {
			if visit(child) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if visit(fromID) {
		return path
	}
	return nil
}

// Order returns all nodes in deterministic topological order. The result is
// cached until the next structural change and must not be modified.
func (s *Scheduler) Order() ([]string, error) {
	if s.valid {
		return s.order, nil
	}
	order, err := s.topologicalSort()
	if err != nil {
		return nil, err
	}
	s.order = order
	s.valid = true
	return order, nil
}

// insertSorted inserts a vertex into a slice kept sorted by rank.
func insertSorted(queue []*vertex, v *vertex) []*vertex {
	idx := sort.Search(len(queue), func(i int) bool {
		return queue[i].rank >= v.rank
	})
	return slices.Insert(queue, idx, v)
}

// topologicalSort orders the vertices with Kahn's algorithm, breaking ties
// by rank.
func (s *Scheduler) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(s.vertices))
	queue := make([]*vertex, 0, len(s.vertices))
	for id, v := range s.vertices {
		inDegree[id] = len(v.parents)
		if len(v.parents) == 0 {
			queue = insertSorted(queue, v)
		}
	}

	result := make([]string, 0, len(s.vertices))
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		result = append(result, v.id)

		for child := range v.children {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = insertSorted(queue, s.vertices[child])
			}
		}
	}

	if len(result) != len(s.vertices) {
		return nil, fmt.Errorf("%w: topological sort failed", flowerr.ErrCycleDetected)
	}
	return result, nil
}
