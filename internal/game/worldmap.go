package game

import "math"

// Tile is an integral grid coordinate.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileInfo describes a tile code.
type TileInfo struct {
	Walkable bool `json:"walkable"`
}

// TileMap is the static world grid plus its walkability table. It is built
// once at startup and never mutated, so readers need no locking.
//
// Codes is addressed transposed: tile (x, y) is Codes[x][y].
type TileMap struct {
	Codes [][]int
	Info  map[int]TileInfo
}

// Tile codes used by the default map.
const (
	TileGrass     = 1
	TileWall      = 2
	TileRock      = 3
	TileWater     = 4
	TileTreeTrunk = 5
)

var defaultCodes = [][]int{
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 4, 4, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 4, 4, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 4, 4, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 4, 4, 5, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 4, 4},
}

// DefaultTileInfo is the walkability table for the default map.
func DefaultTileInfo() map[int]TileInfo {
	return map[int]TileInfo{
		TileGrass:     {Walkable: true},
		TileWall:      {Walkable: false},
		TileRock:      {Walkable: false},
		TileWater:     {Walkable: false},
		TileTreeTrunk: {Walkable: false},
	}
}

// DefaultTileMap returns a fresh copy of the 16x16 starting map.
func DefaultTileMap() *TileMap {
	return NewTileMap(defaultCodes, DefaultTileInfo())
}

// NewTileMap copies codes so later edits to the source slice cannot leak in.
func NewTileMap(codes [][]int, info map[int]TileInfo) *TileMap {
	cp := make([][]int, len(codes))
	for i, row := range codes {
		cp[i] = append([]int(nil), row...)
	}
	return &TileMap{Codes: cp, Info: info}
}

// Width is the number of distinct x coordinates.
func (m *TileMap) Width() int {
	return len(m.Codes)
}

// Height is the number of distinct y coordinates.
func (m *TileMap) Height() int {
	if len(m.Codes) == 0 {
		return 0
	}
	return len(m.Codes[0])
}

// InBounds reports whether t lies on the grid.
func (m *TileMap) InBounds(t Tile) bool {
	return t.X >= 0 && t.Y >= 0 && t.X < m.Width() && t.Y < len(m.Codes[t.X])
}

// Code returns the tile code at t, or 0 outside the grid.
func (m *TileMap) Code(t Tile) int {
	if !m.InBounds(t) {
		return 0
	}
	return m.Codes[t.X][t.Y]
}

// Walkable reports whether actors may stand on t.
func (m *TileMap) Walkable(t Tile) bool {
	if !m.InBounds(t) {
		return false
	}
	return m.Info[m.Codes[t.X][t.Y]].Walkable
}

// Rows returns a copy of the raw grid for the wire.
func (m *TileMap) Rows() [][]int {
	out := make([][]int, len(m.Codes))
	for i, row := range m.Codes {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// TileAt rounds a world position to the tile it occupies.
func TileAt(x, y float64) Tile {
	return Tile{X: int(math.Round(x)), Y: int(math.Round(y))}
}
