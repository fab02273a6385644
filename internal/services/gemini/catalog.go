package gemini

// ModelDescriptor describes one model variant and its free-tier quota limits.
// Costs are USD per million tokens.
type ModelDescriptor struct {
	Name           string
	RPMLimit       int
	RPDLimit       int
	CostPerMTokIn  float64
	CostPerMTokOut float64
}

// catalog is the fixed ordered model roster, cheapest and fastest first. The
// orchestrator walks it in order and stops at the first usable result.
var catalog = []ModelDescriptor{
	{Name: "gemini-2.0-flash-lite", RPMLimit: 30, RPDLimit: 1500, CostPerMTokIn: 0.075, CostPerMTokOut: 0.30},
	{Name: "gemini-2.0-flash", RPMLimit: 15, RPDLimit: 1500, CostPerMTokIn: 0.10, CostPerMTokOut: 0.40},
	{Name: "gemini-2.5-flash", RPMLimit: 10, RPDLimit: 500, CostPerMTokIn: 0.30, CostPerMTokOut: 2.50},
	{Name: "gemini-2.5-pro", RPMLimit: 5, RPDLimit: 100, CostPerMTokIn: 1.25, CostPerMTokOut: 10.0},
}

// Catalog returns the ordered model catalog. The returned slice is a copy;
// descriptors themselves are immutable.
func Catalog() []ModelDescriptor {
	out := make([]ModelDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// DescriptorByName looks up a catalog entry by model name.
func DescriptorByName(name string) (ModelDescriptor, bool) {
	for _, desc := range catalog {
		if desc.Name == name {
			return desc, true
		}
	}
	return ModelDescriptor{}, false
}
