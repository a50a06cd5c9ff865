package scene

// Credits is the colophon shipped alongside every scene.
type Credits struct {
	Attribution []string      `json:"attribution"`
	Legend      []LegendEntry `json:"legend"`
}

// LegendEntry names one band of the haze raster, darkest first.
type LegendEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func DefaultCredits() Credits {
	return Credits{
		Attribution: []string{
			"Map tiles by Stamen Design, CC BY 3.0.",
			"Map data by OpenStreetMap, CC BY SA 3.0.",
			"Light pollution from Falchi et al, World Atlas 2015, CC BY NC 4.0.",
		},
		Legend: []LegendEntry{
			{ID: "no-human-light", Label: "no human light"},
			{ID: "horizon-glow", Label: "horizon glow"},
			{ID: "no-milky-way", Label: "no milky way"},
			{ID: "mesopic", Label: "colors visible"},
		},
	}
}
