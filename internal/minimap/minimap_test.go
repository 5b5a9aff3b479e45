package minimap

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/willheto/game-server/internal/game"
)

func pixel(t *testing.T, img interface {
	At(x, y int) color.Color
}, x, y int) color.RGBA {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

// TestRenderTiles checks size and tile colors
func TestRenderTiles(t *testing.T) {
	grid := game.DefaultTileMap()
	img := Render(grid, nil, Options{TileSize: 10})

	bounds := img.Bounds()
	if bounds.Dx() != 160 || bounds.Dy() != 160 {
		t.Fatalf("Expected 160x160, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	tests := []struct {
		name string
		tile game.Tile
		want color.RGBA
	}{
		{"grass", game.Tile{X: 0, Y: 0}, tileColors[game.TileGrass]},
		{"water", game.Tile{X: 3, Y: 4}, tileColors[game.TileWater]},
		{"wall", game.Tile{X: 0, Y: 12}, tileColors[game.TileWall]},
		{"tree", game.Tile{X: 6, Y: 6}, tileColors[game.TileTreeTrunk]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pixel(t, img, tt.tile.X*10+5, tt.tile.Y*10+5)
			if got != tt.want {
				t.Errorf("Expected %v at %v, got %v", tt.want, tt.tile, got)
			}
		})
	}
}

// TestRenderActors draws living actors over the tiles
func TestRenderActors(t *testing.T) {
	grid := game.DefaultTileMap()
	snap := &game.Snapshot{
		Players:  []game.ActorSnapshot{{EntityID: "p", WorldX: 2, WorldY: 2}},
		Entities: []game.ActorSnapshot{{EntityID: "m", WorldX: 8, WorldY: 8}},
	}
	img := Render(grid, snap, Options{TileSize: 20})

	if got := pixel(t, img, 2*20+10, 2*20+10); got != playerColor {
		t.Errorf("Expected player color, got %v", got)
	}
	if got := pixel(t, img, 8*20+10, 8*20+10); got != monsterColor {
		t.Errorf("Expected monster color, got %v", got)
	}
}

// TestEncodePNG produces a decodable image
func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, game.DefaultTileMap(), &game.Snapshot{}, DefaultOptions()); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 16*DefaultTileSize {
		t.Errorf("Expected width %d, got %d", 16*DefaultTileSize, img.Bounds().Dx())
	}
}

// TestRenderNilGrid still returns an image
func TestRenderNilGrid(t *testing.T) {
	img := Render(nil, nil, Options{})
	if img.Bounds().Dx() != DefaultTileSize {
		t.Errorf("Expected a single empty tile, got width %d", img.Bounds().Dx())
	}
}
