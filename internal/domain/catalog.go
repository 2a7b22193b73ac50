package domain

// Noise token match modes
const (
	// MatchWord removes the phrase wherever it appears as a whole word or phrase
	MatchWord = "word"
	// MatchSuffix removes the phrase and everything after it
	MatchSuffix = "suffix"
)

// NoiseToken is a descriptive phrase stripped from product names before grouping
type NoiseToken struct {
	Phrase string `mapstructure:"phrase" json:"phrase" validate:"required"`
	Match  string `mapstructure:"match" json:"match" validate:"omitempty,oneof=word suffix"`
}

// NoiseTable is a versioned list of noise tokens.
// Changing the table changes group keys, so the version is bumped with it.
type NoiseTable struct {
	Version int          `json:"version"`
	Tokens  []NoiseToken `json:"tokens"`
}

// VendorTable maps a lowercase domain label (e.g. "meckeys") to a display name
type VendorTable map[string]string

// DefaultNoiseTable returns the built-in noise token table
func DefaultNoiseTable() NoiseTable {
	return NoiseTable{
		Version: 1,
		Tokens: []NoiseToken{
			{Phrase: "Hot-Swappable", Match: MatchWord},
			{Phrase: "Mechanical Keyboard", Match: MatchWord},
			{Phrase: "Keyboard", Match: MatchWord},
			{Phrase: "Tri-Mode", Match: MatchWord},
			{Phrase: "Gasket", Match: MatchSuffix},
			{Phrase: "Wired", Match: MatchSuffix},
			{Phrase: "with Knob", Match: MatchWord},
			{Phrase: "Wireless", Match: MatchWord},
			{Phrase: "75%", Match: MatchWord},
			{Phrase: "80%", Match: MatchWord},
			{Phrase: "96%", Match: MatchWord},
		},
	}
}

// DefaultVendorTable returns the built-in vendor display names
func DefaultVendorTable() VendorTable {
	return VendorTable{
		"meckeys":    "Meckeys",
		"neomacro":   "NeoMacro",
		"ctrlshift":  "CtrlShiftStore",
		"thockshop":  "Thockshop",
		"stacks":     "StacksKB",
		"stackskb":   "StacksKB",
		"loadout":    "Loadout",
		"curiousity": "CuriousityCaps",
		"genesispc":  "GenesisPC",
	}
}
