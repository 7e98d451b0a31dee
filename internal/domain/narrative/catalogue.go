package narrative

// SectionDef describes one entry of the fixed report catalogue.
type SectionDef struct {
	Number   int
	Key      string
	Title    string
	Keywords []string
	Guidance []string
}

// Catalogue is the ordered list of report sections.
var Catalogue = []SectionDef{
	{
		Number:   1,
		Key:      "life_paths",
		Title:    "Three Life Path Simulations",
		Keywords: []string{"life path"},
		Guidance: []string{
			"Obstacles that will test resolve",
			"Challenges to overcome",
			"Opportunities waiting to be seized",
			"Three distinct possible life paths based on different choices",
		},
	},
	{
		Number:   2,
		Key:      "luck_cycles",
		Title:    "Ten-Year Luck Cycle Analysis",
		Keywords: []string{"luck cycle", "luck pillar", "大运"},
		Guidance: []string{
			"The current ten-year luck cycle and its meaning",
			"The upcoming cycle and what to expect",
			"Peak luck periods in the next 12 months",
			"A markdown table of the luck cycles with columns Pillar, Ages, Years, Theme",
		},
	},
	{
		Number:   3,
		Key:      "five_elements",
		Title:    "Five Elements Analysis",
		Keywords: []string{"five element", "element", "五行"},
		Guidance: []string{
			"Which elements nourish the Day Master",
			"Which elements clash with the chart",
			"Signs of elemental deficiency",
			"Practical balancing through colours, foods and directions",
		},
	},
	{
		Number:   4,
		Key:      "relationships",
		Title:    "Relationship Compatibility",
		Keywords: []string{"relationship", "compatibility"},
		Guidance: []string{
			"Ideal partner elements",
			"Who is meant to stay and who is quietly helping",
			"Warning signs of incompatible people",
		},
	},
	{
		Number:   5,
		Key:      "intelligence",
		Title:    "Natural Intelligence Patterns",
		Keywords: []string{"intelligence"},
		Guidance: []string{
			"Natural thinking style based on the Ten Gods",
			"The best ways to use this intelligence",
			"Career and learning recommendations",
		},
	},
	{
		Number:   6,
		Key:      "communication",
		Title:    "Communication & Energy Adjustments",
		Keywords: []string{"communication"},
		Guidance: []string{
			"Speaking patterns that carry the right energy",
			"Body language adjustments",
			"Daily energy optimisation techniques",
		},
	},
	{
		Number:   7,
		Key:      "life_force",
		Title:    "Life Force (Chi) Analysis",
		Keywords: []string{"life force", "chi analysis"},
		Guidance: []string{
			"Signs of low life force",
			"The way out of stuck patterns",
			"Chi-building exercises for this chart",
		},
	},
	{
		Number:   8,
		Key:      "wealth_ritual",
		Title:    "Wealth Cleansing Ritual",
		Keywords: []string{"wealth"},
		Guidance: []string{
			"Step-by-step ritual tailored to the Day Master",
			"Clearing clashing energies around money",
			"Best timing for the ritual",
		},
	},
	{
		Number:   9,
		Key:      "home_furniture",
		Title:    "Home Furniture Adjustments",
		Keywords: []string{"furniture", "feng shui"},
		Guidance: []string{
			"Furniture placements for this chart",
			"Room-by-room recommendations",
		},
	},
	{
		Number:   10,
		Key:      "death_particle",
		Title:    "Death Particle Detection",
		Keywords: []string{"death particle", "death"},
		Guidance: []string{
			"How to identify the particle in the chart",
			"People and situations to avoid",
		},
	},
	{
		Number:   11,
		Key:      "imperial_treasures",
		Title:    "Four Sacred Imperial Treasures",
		Keywords: []string{"treasure"},
		Guidance: []string{
			"What each of the four treasures does for the Day Master",
			"Activation instructions",
		},
	},
	{
		Number:   12,
		Key:      "celebrities",
		Title:    "Celebrity Comparisons",
		Keywords: []string{"celebrit"},
		Guidance: []string{
			"Two or three well known people with similar charts",
			"Gifts they share with this chart",
		},
	},
	{
		Number:   13,
		Key:      "daily_routine",
		Title:    "Daily Routine Adjustments",
		Keywords: []string{"routine"},
		Guidance: []string{
			"Practices that energise weak elements",
			"Morning, afternoon and evening routines",
		},
	},
}

// LuckCycleKey identifies the section that may carry a table.
const LuckCycleKey = "luck_cycles"
