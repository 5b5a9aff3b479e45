// Package minimap renders the tile grid and live actors to a PNG for the
// ops view at /api/map.png.
package minimap

import (
	"image"
	"image/color"
	"io"
	"os"

	"github.com/fogleman/gg"

	"github.com/willheto/game-server/internal/game"
)

// DefaultTileSize is the pixel size of one tile.
const DefaultTileSize = 24

// Options controls a render.
type Options struct {
	TileSize  int
	ShowNames bool
	ShowGrid  bool
}

// DefaultOptions draws 24px tiles with grid lines and no labels.
func DefaultOptions() Options {
	return Options{TileSize: DefaultTileSize, ShowGrid: true}
}

var tileColors = map[int]color.RGBA{
	game.TileGrass:     {94, 160, 72, 255},
	game.TileWall:      {90, 90, 96, 255},
	game.TileRock:      {130, 124, 116, 255},
	game.TileWater:     {52, 112, 190, 255},
	game.TileTreeTrunk: {110, 74, 40, 255},
}

var (
	unknownTile  = color.RGBA{255, 0, 255, 255}
	gridColor    = color.RGBA{0, 0, 0, 40}
	playerColor  = color.RGBA{255, 214, 64, 255}
	monsterColor = color.RGBA{210, 48, 48, 255}
	deadColor    = color.RGBA{40, 40, 40, 160}
)

// Render draws grid and, when snap is non-nil, every actor in it. Screen x
// follows tile x and screen y follows tile y.
func Render(grid *game.TileMap, snap *game.Snapshot, opts Options) image.Image {
	return render(grid, snap, opts).Image()
}

// EncodePNG renders and writes a PNG to w.
func EncodePNG(w io.Writer, grid *game.TileMap, snap *game.Snapshot, opts Options) error {
	return render(grid, snap, opts).EncodePNG(w)
}

func render(grid *game.TileMap, snap *game.Snapshot, opts Options) *gg.Context {
	size := opts.TileSize
	if size <= 0 {
		size = DefaultTileSize
	}
	width, height := 1, 1
	if grid != nil && grid.Width() > 0 {
		width, height = grid.Width(), grid.Height()
	}

	dc := gg.NewContext(width*size, height*size)
	ts := float64(size)

	if grid != nil {
		drawTiles(dc, grid, ts)
		if opts.ShowGrid {
			drawGrid(dc, width, height, ts)
		}
	}

	if snap != nil {
		if opts.ShowNames {
			if path := fontPath(); path != "" {
				dc.LoadFontFace(path, ts/2)
			}
		}
		for _, e := range snap.Entities {
			drawActor(dc, e, monsterColor, ts, opts.ShowNames)
		}
		for _, p := range snap.Players {
			drawActor(dc, p, playerColor, ts, opts.ShowNames)
		}
	}
	return dc
}

func drawTiles(dc *gg.Context, grid *game.TileMap, ts float64) {
	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Height(); y++ {
			c, ok := tileColors[grid.Code(game.Tile{X: x, Y: y})]
			if !ok {
				c = unknownTile
			}
			dc.SetColor(c)
			dc.DrawRectangle(float64(x)*ts, float64(y)*ts, ts, ts)
			dc.Fill()
		}
	}
}

func drawGrid(dc *gg.Context, width, height int, ts float64) {
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x++ {
		dc.DrawLine(float64(x)*ts, 0, float64(x)*ts, float64(height)*ts)
		dc.Stroke()
	}
	for y := 0; y <= height; y++ {
		dc.DrawLine(0, float64(y)*ts, float64(width)*ts, float64(y)*ts)
		dc.Stroke()
	}
}

func drawActor(dc *gg.Context, a game.ActorSnapshot, c color.RGBA, ts float64, label bool) {
	cx := a.WorldX*ts + ts/2
	cy := a.WorldY*ts + ts/2
	radius := ts * 0.35

	if a.IsDead {
		dc.SetColor(deadColor)
		dc.DrawCircle(cx, cy, radius*0.6)
		dc.Fill()
		return
	}

	// Body
	dc.SetColor(c)
	dc.DrawCircle(cx, cy, radius)
	dc.Fill()

	// Border
	dc.SetColor(color.Black)
	dc.SetLineWidth(1.5)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()

	if a.IsHpBarShown {
		drawHpBar(dc, a, cx, cy-radius-4, ts)
	}

	if label && dc.FontHeight() > 0 {
		dc.SetColor(color.White)
		dc.DrawStringAnchored(a.Name, cx, cy+radius+ts/4, 0.5, 0.5)
	}
}

func drawHpBar(dc *gg.Context, a game.ActorSnapshot, cx, top, ts float64) {
	maxHP := game.LevelFromExperience(a.HitpointsExperience)
	if maxHP <= 0 {
		return
	}
	pct := float64(a.CurrentHitpoints) / float64(maxHP)
	if pct < 0 {
		pct = 0
	}
	w := ts * 0.8
	h := ts / 8

	dc.SetColor(color.RGBA{200, 30, 30, 255})
	dc.DrawRectangle(cx-w/2, top, w, h)
	dc.Fill()

	dc.SetColor(color.RGBA{40, 220, 60, 255})
	dc.DrawRectangle(cx-w/2, top, w*pct, h)
	dc.Fill()
}

func fontPath() string {
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
