package env

// StateDim is the length of the observation vector returned by State
const StateDim = 10

// heightScale normalizes heights and elevations in the observation vector
const heightScale = 100.0

// State builds the observation vector for the current frame:
//
//	0 distance to the next obstacle    5 elevation of the second obstacle
//	1 elevation of the next obstacle   6 current speed
//	2 height of the next obstacle      7 dino height above ground
//	3 width of the next obstacle       8 dino vertical velocity
//	4 distance to the second obstacle  9 bias, always 1
//
// Distances are 1 when no obstacle is ahead.
func (g *Game) State() []float64 {
	s := make([]float64, StateDim)
	g.extract(s)
	return s
}

func (g *Game) extract(s []float64) {
	next, second := g.obstaclesAhead()

	s[0] = 1
	if next != nil {
		s[0] = distanceNorm(next.X)
		s[1] = next.Elevation / heightScale
		s[2] = next.Height / heightScale
		s[3] = next.Width / heightScale
	}
	s[4] = 1
	if second != nil {
		s[4] = distanceNorm(second.X)
		s[5] = second.Elevation / heightScale
	}

	s[6] = g.Speed / g.MaxSpeed
	s[7] = g.DinoY / heightScale
	s[8] = g.DinoVY / jumpVelocity
	s[9] = 1
}

// obstaclesAhead returns the first two obstacles not yet passed by the dino
func (g *Game) obstaclesAhead() (*Obstacle, *Obstacle) {
	var found []*Obstacle
	for i := range g.Obstacles {
		o := &g.Obstacles[i]
		if o.X+o.Width <= dinoX {
			continue
		}
		found = append(found, o)
		if len(found) == 2 {
			break
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return found[0], found[1]
	}
}

func distanceNorm(x float64) float64 {
	d := (x - dinoX) / screenWidth
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
