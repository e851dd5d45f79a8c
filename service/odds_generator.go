package service

import (
	"math/rand/v2"

	"betting/models"

	"github.com/shopspring/decimal"
)

// RandomSource yields uniform values in [0, 1)
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 {
	return rand.Float64()
}

// OddsGenerator produces synthetic home/draw/away odds
type OddsGenerator struct {
	src RandomSource
}

// NewOddsGenerator creates a generator over src, or over the global
// math/rand source when src is nil
func NewOddsGenerator(src RandomSource) *OddsGenerator {
	if src == nil {
		src = globalSource{}
	}
	return &OddsGenerator{src: src}
}

// Generate draws three uniform values, normalizes them into probabilities and
// inverts each into decimal odds rounded to two places
func (g *OddsGenerator) Generate() models.Odds {
	home, draw, away := g.draw(), g.draw(), g.draw()
	sum := home + draw + away

	return models.Odds{
		Home: invert(home, sum),
		Draw: invert(draw, sum),
		Away: invert(away, sum),
	}
}

// draw rejects exact zeros, which would yield infinite odds
func (g *OddsGenerator) draw() float64 {
	for {
		if v := g.src.Float64(); v > 0 {
			return v
		}
	}
}

// invert returns 1/p for p = value/sum
func invert(value, sum float64) decimal.Decimal {
	return decimal.NewFromFloat(sum / value).Round(2)
}
