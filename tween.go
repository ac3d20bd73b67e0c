package main

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenStep is how far every tween advances per frame, in seconds.
const tweenStep = 1.0 / 60

type Action struct {
	nexts    []func(g *Game)
	onChange func(float32)
	onFinish []func()
}

func (a *Action) addOnFinish(f func()) {
	if a.onFinish == nil {
		a.onFinish = make([]func(), 0)
	}
	a.onFinish = append(a.onFinish, f)
}

func (a *Action) next(t *gween.Tween) *Action {
	action := Action{}
	if a.nexts == nil {
		a.nexts = make([]func(g *Game), 0)
	}
	a.nexts = append(a.nexts,
		func(g *Game) {
			g.Tweens[t] = action
		})
	return &action
}

func (g *Game) updateTweens() {
	for t, a := range g.Tweens {
		curr, finished := t.Update(tweenStep)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if finished {
			for _, onFinish := range a.onFinish {
				onFinish()
			}
			for _, next := range a.nexts {
				next(g)
			}
			delete(g.Tweens, t)
		}
	}
}

// pulse swells the coin halo and shrinks it back, forever.
func (g *Game) pulse() {
	glow := func(v float32) { g.glow = float64(v) }
	up := Action{onChange: glow}
	down := up.next(gween.New(1.25, 1, .9, ease.InOutSine))
	down.onChange = glow
	down.nexts = append(down.nexts, func(g *Game) { g.pulse() })
	g.Tweens[gween.New(1, 1.25, .9, ease.InOutSine)] = up
}

// fadeInBanner drops any running fade and shows the banner from
// transparent to opaque.
func (g *Game) fadeInBanner() {
	if g.bannerFade != nil {
		delete(g.Tweens, g.bannerFade)
	}
	g.bannerFade = gween.New(0, 1, .4, ease.OutQuad)
	fade := Action{onChange: func(v float32) { g.banner.alpha = float64(v) }}
	fade.addOnFinish(func() { g.bannerFade = nil })
	g.Tweens[g.bannerFade] = fade
}
