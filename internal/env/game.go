package env

import (
	"math"
	"math/rand"
	"time"

	"dinoevo/internal/config"
)

// Action is a discrete control input for the runner
type Action int

const (
	ActionRun Action = iota
	ActionJump
	ActionDuck
)

// NumActions is the number of distinct actions the game accepts
const NumActions = 3

func (a Action) String() string {
	switch a {
	case ActionRun:
		return "run"
	case ActionJump:
		return "jump"
	case ActionDuck:
		return "duck"
	default:
		return "unknown"
	}
}

// ObstacleKind distinguishes ground and flying obstacles
type ObstacleKind int

const (
	KindCactus ObstacleKind = iota
	KindBird
)

// Obstacle is a box scrolling toward the dino. X is the left edge in
// screen units, Elevation the bottom edge above ground.
type Obstacle struct {
	Kind      ObstacleKind
	X         float64
	Elevation float64
	Width     float64
	Height    float64
}

// Screen geometry and physics, in screen units per step.
const (
	screenWidth  = 600.0
	dinoX        = 50.0
	dinoWidth    = 44.0
	standHeight  = 47.0
	duckWidth    = 59.0
	duckHeight   = 26.0
	gravity      = 0.6
	jumpVelocity = 10.0
	fastFall     = 2.0
	minGapBase   = 120.0
	maxGapScale  = 1.5
	birdChance   = 0.3
	scorePerUnit = 0.025
)

var (
	cactusWidths   = []float64{17, 34, 51}
	cactusHeights  = []float64{35, 50}
	birdElevations = []float64{15, 35, 70}
)

// Game is the side-scrolling runner environment. Use one Game per
// goroutine; its episode state is not synchronized.
type Game struct {
	InitialSpeed float64
	MaxSpeed     float64
	Acceleration float64
	MaxSteps     int // 0 disables the step cap
	BirdsAfter   int

	// State
	DinoY     float64
	DinoVY    float64
	Ducking   bool
	Obstacles []Obstacle
	Speed     float64
	Distance  float64
	Steps     int
	Over      bool
	End       EndReason

	untilSpawn float64
	fps        int
	lastFrame  time.Time
	rng        *rand.Rand
}

// NewGame creates a new game instance
func NewGame(cfg config.EnvConfig, seed int64) *Game {
	g := &Game{
		InitialSpeed: cfg.InitialSpeed,
		MaxSpeed:     cfg.MaxSpeed,
		Acceleration: cfg.Acceleration,
		MaxSteps:     cfg.MaxSteps,
		BirdsAfter:   cfg.BirdsAfter,
		fps:          cfg.FPS,
		rng:          rand.New(rand.NewSource(seed)),
	}
	g.Reset()
	return g
}

// Reset initializes the game to starting state
func (g *Game) Reset() {
	g.DinoY = 0
	g.DinoVY = 0
	g.Ducking = false
	g.Obstacles = g.Obstacles[:0]
	g.Speed = g.InitialSpeed
	g.Distance = 0
	g.Steps = 0
	g.Over = false
	g.End = EndNone
	g.lastFrame = time.Time{}
	g.spawnObstacle()
}

// EpisodeOver reports whether the dino crashed or the step cap was hit
func (g *Game) EpisodeOver() bool {
	return g.Over
}

// Score is the distance run, scaled and floored
func (g *Game) Score() float64 {
	return math.Floor(g.Distance * scorePerUnit)
}

// FPS returns the frame rate Step is throttled to; 0 means unthrottled
func (g *Game) FPS() int {
	return g.fps
}

// SetFPS changes the frame rate
func (g *Game) SetFPS(fps int) {
	g.fps = fps
	g.lastFrame = time.Time{}
}

// Step advances the game by one frame with the given action
func (g *Game) Step(action int) {
	if g.Over {
		return
	}
	g.throttle()

	onGround := g.DinoY <= 0 && g.DinoVY <= 0
	switch Action(action) {
	case ActionJump:
		g.Ducking = false
		if onGround {
			g.DinoVY = jumpVelocity
		}
	case ActionDuck:
		if onGround {
			g.Ducking = true
		} else {
			g.DinoVY -= fastFall
		}
	default:
		g.Ducking = false
	}

	// Vertical motion
	if g.DinoY > 0 || g.DinoVY > 0 {
		g.DinoY += g.DinoVY
		g.DinoVY -= gravity
		if g.DinoY <= 0 {
			g.DinoY = 0
			g.DinoVY = 0
		}
	}

	// Scroll obstacles and drop the ones that left the screen
	kept := g.Obstacles[:0]
	for _, o := range g.Obstacles {
		o.X -= g.Speed
		if o.X+o.Width > 0 {
			kept = append(kept, o)
		}
	}
	g.Obstacles = kept

	g.untilSpawn -= g.Speed
	if g.untilSpawn <= 0 {
		g.spawnObstacle()
	}

	g.Distance += g.Speed
	g.Speed = math.Min(g.Speed+g.Acceleration, g.MaxSpeed)
	g.Steps++

	if g.collides() {
		g.Over = true
		g.End = EndCrash
		return
	}

	if g.MaxSteps > 0 && g.Steps >= g.MaxSteps {
		g.Over = true
		g.End = EndTimeout
	}
}

// throttle sleeps until the next frame is due
func (g *Game) throttle() {
	if g.fps <= 0 {
		return
	}
	frame := time.Second / time.Duration(g.fps)
	if !g.lastFrame.IsZero() {
		if wait := time.Until(g.lastFrame.Add(frame)); wait > 0 {
			time.Sleep(wait)
		}
	}
	g.lastFrame = time.Now()
}

// spawnObstacle places a new obstacle at the right edge and schedules
// the next one
func (g *Game) spawnObstacle() {
	o := Obstacle{Kind: KindCactus, X: screenWidth}
	if g.Score() >= float64(g.BirdsAfter) && g.rng.Float64() < birdChance {
		o.Kind = KindBird
		o.Width = 46
		o.Height = 40
		o.Elevation = birdElevations[g.rng.Intn(len(birdElevations))]
	} else {
		o.Width = cactusWidths[g.rng.Intn(len(cactusWidths))]
		o.Height = cactusHeights[g.rng.Intn(len(cactusHeights))]
	}
	g.Obstacles = append(g.Obstacles, o)

	minGap := o.Width + minGapBase + 12*g.Speed
	maxGap := minGap * maxGapScale
	g.untilSpawn = minGap + g.rng.Float64()*(maxGap-minGap)
}

// DinoBox returns the dino's bounding box as (x, y, width, height)
func (g *Game) DinoBox() (float64, float64, float64, float64) {
	if g.Ducking {
		return dinoX, g.DinoY, duckWidth, duckHeight
	}
	return dinoX, g.DinoY, dinoWidth, standHeight
}

func (g *Game) collides() bool {
	x, y, w, h := g.DinoBox()
	for _, o := range g.Obstacles {
		if x < o.X+o.Width && o.X < x+w && y < o.Elevation+o.Height && o.Elevation < y+h {
			return true
		}
	}
	return false
}

// Stats returns the episode statistics
func (g *Game) Stats() EpisodeStats {
	return EpisodeStats{
		Score:    g.Score(),
		Steps:    g.Steps,
		Distance: g.Distance,
		End:      g.End,
	}
}
