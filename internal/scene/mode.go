package scene

type Mode string

const (
	BumpyLight      Mode = "bumpy-light"
	BumpyTerrain    Mode = "bumpy-terrain"
	BumpyWatercolor Mode = "bumpy-watercolor"
	HazyTerrain     Mode = "hazy-terrain"
	HazyWatercolor  Mode = "hazy-watercolor"
	HazyGouache     Mode = "hazy-gouache"
)

// DefaultMode is the mode shown before the user picks one.
const DefaultMode = BumpyLight

var modeOrder = []Mode{
	BumpyLight,
	BumpyTerrain,
	BumpyWatercolor,
	HazyTerrain,
	HazyWatercolor,
	HazyGouache,
}

var modeLabels = map[Mode]string{
	BumpyLight:      "topography, on a white/blue world",
	BumpyTerrain:    "topography, on a terrain map world",
	BumpyWatercolor: "topography, on a watercolor world",
	HazyTerrain:     "haze, on a terrain map world",
	HazyWatercolor:  "haze, on a watercolor world with labels",
	HazyGouache:     "haze, on a watercolor world",
}

// Modes returns the six modes in selector order.
func Modes() []Mode {
	out := make([]Mode, len(modeOrder))
	copy(out, modeOrder)
	return out
}

func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", &InvalidModeError{Mode: s}
	}
	return m, nil
}

func (m Mode) Valid() bool {
	_, ok := modeLabels[m]
	return ok
}

// Label is the caption shown next to the mode's radio button.
func (m Mode) Label() string {
	return modeLabels[m]
}

// Bumpy reports whether the mode renders light pollution as terrain relief
// rather than as a haze overlay.
func (m Mode) Bumpy() bool {
	switch m {
	case BumpyLight, BumpyTerrain, BumpyWatercolor:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }
