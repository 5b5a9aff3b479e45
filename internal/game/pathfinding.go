package game

import "container/heap"

// neighbourOffsets are the four orthogonal steps: up, down, left, right.
var neighbourOffsets = [...]Tile{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

type nodeState uint8

const (
	nodeUnseen nodeState = iota
	nodeOpen
	nodeClosed
)

// pathNode lives in a per-search arena indexed by tile, so parent links are
// arena indices rather than pointers.
type pathNode struct {
	tile      Tile
	g, h, f   int
	parent    int
	state     nodeState
	seq       int // insertion order, keeps equal-f selection stable
	heapIndex int
}

type openSet []*pathNode

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].heapIndex = i
	o[j].heapIndex = j
}

func (o *openSet) Push(x any) {
	n := x.(*pathNode)
	n.heapIndex = len(*o)
	*o = append(*o, n)
}

func (o *openSet) Pop() any {
	old := *o
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.heapIndex = -1
	*o = old[:last]
	return n
}

func manhattan(a, b Tile) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FindPath runs A* from start to goal over grid using 4-directional moves of
// cost 1 and a Manhattan heuristic. The returned path begins with start and
// ends with goal. A nil result means the goal is currently unreachable.
func FindPath(start, goal Tile, grid *TileMap) []Tile {
	if grid == nil || !grid.InBounds(start) || !grid.InBounds(goal) {
		return nil
	}

	height := grid.Height()
	index := func(t Tile) int { return t.X*height + t.Y }
	arena := make([]pathNode, grid.Width()*height)

	first := &arena[index(start)]
	*first = pathNode{tile: start, h: manhattan(start, goal), parent: -1, state: nodeOpen}
	first.f = first.h

	open := &openSet{}
	heap.Push(open, first)
	seq := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.tile == goal {
			return reconstructPath(arena, current)
		}
		current.state = nodeClosed
		currentIdx := index(current.tile)

		for _, off := range neighbourOffsets {
			next := Tile{X: current.tile.X + off.X, Y: current.tile.Y + off.Y}
			if !grid.Walkable(next) {
				continue
			}
			n := &arena[index(next)]
			if n.state == nodeClosed {
				continue
			}
			g := current.g + 1
			if n.state == nodeOpen {
				if g < n.g {
					n.g = g
					n.f = g + n.h
					n.parent = currentIdx
					heap.Fix(open, n.heapIndex)
				}
				continue
			}
			seq++
			*n = pathNode{
				tile:   next,
				g:      g,
				h:      manhattan(next, goal),
				parent: currentIdx,
				state:  nodeOpen,
				seq:    seq,
			}
			n.f = n.g + n.h
			heap.Push(open, n)
		}
	}
	return nil
}

func reconstructPath(arena []pathNode, end *pathNode) []Tile {
	path := []Tile{end.tile}
	for p := end.parent; p >= 0; p = arena[p].parent {
		path = append(path, arena[p].tile)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
