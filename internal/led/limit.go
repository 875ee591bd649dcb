package led

// Budget caps what a frame may draw before it reaches the strip.
//   - WhiteCap limits R+G+B of one LED, in full-scale channels (3 = no cap)
//   - ChannelMA is the current of one channel at 255 (WS2812 is about 20)
//   - LimitMA is the supply budget for the whole frame; 0 disables it
//   - Knee is the fraction of LimitMA where soft scaling starts
type Budget struct {
	WhiteCap  float64 `yaml:"white_cap"`
	ChannelMA float64 `yaml:"channel_ma"`
	LimitMA   float64 `yaml:"limit_ma"`
	Knee      float64 `yaml:"knee"`
}

var DefaultBudget = Budget{WhiteCap: 3, ChannelMA: 20, Knee: 0.9}

func (b Budget) withDefaults() Budget {
	if b.WhiteCap <= 0 {
		b.WhiteCap = DefaultBudget.WhiteCap
	}
	if b.ChannelMA <= 0 {
		b.ChannelMA = DefaultBudget.ChannelMA
	}
	if b.Knee <= 0 || b.Knee >= 1 {
		b.Knee = DefaultBudget.Knee
	}
	return b
}

// Current estimates the draw of rgb in mA.
func (b Budget) Current(rgb []byte) float64 {
	b = b.withDefaults()
	var sum float64
	for _, v := range rgb {
		sum += float64(v)
	}
	return sum / 255 * b.ChannelMA
}

// Apply scales rgb in place: first each LED against WhiteCap, then the whole
// frame against LimitMA.
func (b Budget) Apply(rgb []byte) {
	b = b.withDefaults()
	if b.WhiteCap < 3 {
		limit := b.WhiteCap * 255
		for i := 0; i+2 < len(rgb); i += 3 {
			s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
			if s > limit {
				scale(rgb[i:i+3], limit/s)
			}
		}
	}

	if b.LimitMA <= 0 {
		return
	}
	total := b.Current(rgb)
	if total <= 0 {
		return
	}
	knee := b.Knee * b.LimitMA
	if total <= knee {
		return
	}
	// past the knee the excess is halved, and never allowed over LimitMA
	target := min(b.LimitMA, knee+(total-knee)/2)
	scale(rgb, target/total)
}

// scale truncates so the result never exceeds the budget.
func scale(rgb []byte, s float64) {
	if s >= 1 {
		return
	}
	for i, v := range rgb {
		rgb[i] = byte(float64(v) * s)
	}
}

type limited struct {
	Driver
	budget Budget
	buf    []byte
}

// Limit wraps drv so every frame is scaled to fit b. Frames passed to Write
// are not modified.
func Limit(drv Driver, b Budget) Driver {
	return &limited{Driver: drv, budget: b}
}

func (l *limited) Write(rgb []byte) error {
	l.buf = append(l.buf[:0], rgb...)
	l.budget.Apply(l.buf)
	return l.Driver.Write(l.buf)
}
