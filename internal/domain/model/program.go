package model

// Program is a purchasable academy program. The catalog is the only source of
// prices; a client chooses a program id and nothing more.
type Program struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"` // minor units (kobo)
	Description string `json:"description"`
}

var programCatalog = map[string]Program{
	"intro-to-web-development": {
		ID:          "intro-to-web-development",
		Name:        "Intro to Web Development",
		Amount:      5000000, // N50,000
		Description: "8-week comprehensive web development program",
	},
	"ui-ux-design-fundamentals": {
		ID:          "ui-ux-design-fundamentals",
		Name:        "UI/UX Design Fundamentals",
		Amount:      4500000, // N45,000
		Description: "6-week UI/UX design program",
	},
	"vibe-coding-essentials": {
		ID:          "vibe-coding-essentials",
		Name:        "Vibe Coding Essentials",
		Amount:      3500000, // N35,000
		Description: "4-week coding essentials program",
	},
}

// ProgramByID looks up a program in the server-side catalog.
func ProgramByID(id string) (Program, bool) {
	p, ok := programCatalog[id]
	return p, ok
}

// Programs returns the full catalog in stable order.
func Programs() []Program {
	return []Program{
		programCatalog["intro-to-web-development"],
		programCatalog["ui-ux-design-fundamentals"],
		programCatalog["vibe-coding-essentials"],
	}
}
