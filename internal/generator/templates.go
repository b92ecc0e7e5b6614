package generator

// Claim templates by category. Placeholders in braces are substituted from
// the placeholder table; the mix of sober and sensational phrasing exercises
// the whole range of the scoring rules.
var templates = map[string][]string{
	"Technology": {
		"Apple announces revolutionary {product} with {feature}",
		"Google launches new {product} that changes everything",
		"Microsoft acquires {company} for $50 billion",
		"New AI system {capability} better than humans",
		"Amazon develops {product} that threatens {industry}",
		"Breakthrough in quantum computing: {achievement}",
	},
	"Health": {
		"Scientists discover cure for {disease}",
		"New study shows {food} prevents cancer",
		"WHO warns about {disease} outbreak in {location}",
		"Drinking {beverage} daily extends life by 10 years",
		"Doctors discover {treatment} reverses aging",
		"Study reveals {supplement} boosts immunity by 200%",
	},
	"Politics": {
		"{politician} announces shocking resignation",
		"Government reveals {policy} will be implemented",
		"Election fraud allegations surface in {location}",
		"Leaked documents reveal {scandal}",
		"New law bans {thing} nationwide",
		"Supreme Court overturns {law} in landmark decision",
	},
	"Science": {
		"NASA discovers {discovery} on Mars",
		"Scientists prove {theory} is actually true",
		"Breakthrough in fusion energy: {achievement}",
		"New species discovered: {species} found in {location}",
		"Physicists confirm existence of {particle}",
		"Researchers solve mystery of {phenomenon}",
	},
	"Business": {
		"{company} stock soars 500% after {news}",
		"Bitcoin reaches all-time high of ${price}",
		"{company} files for bankruptcy",
		"Market crash predicted: experts warn {reason}",
		"Economic recession confirmed by {politician}",
		"Housing market collapse: prices drop {percent}%",
	},
	"Entertainment": {
		"{celebrity} announces surprise retirement",
		"New {movie} breaks box office records",
		"{show} cancelled after {number} seasons",
		"{celebrity} wins {award} for {achievement_ent}",
		"{band} announces reunion tour after {years} years",
		"Shocking twist in {show} finale",
	},
}

// Sources per category: a deliberate mix of trusted, suspicious and neutral
// outlets so generated traffic covers every source adjustment.
var categorySources = map[string][]string{
	"Technology":    {"TechCrunch", "The Verge", "Wired", "Twitter", "Reddit", "ClickbaitNews"},
	"Health":        {"WHO", "CDC", "WebMD", "Facebook", "Reuters", "FakeNewsDaily"},
	"Politics":      {"CNN", "BBC", "Reuters", "Twitter", "UnverifiedNews"},
	"Science":       {"Nature", "Scientific American", "NASA", "Reddit", "Reuters", "ViralStories"},
	"Business":      {"Bloomberg", "Forbes", "CNBC", "LinkedIn", "TruthSeeker"},
	"Entertainment": {"Variety", "Hollywood Reporter", "TMZ", "Instagram", "ClickbaitNews"},
}

var placeholders = map[string][]string{
	"product":         {"iPhone 20", "Tesla Bot", "VR headset", "smart glasses", "flying car"},
	"feature":         {"holographic display", "mind control", "infinite battery", "teleportation"},
	"company":         {"TikTok", "OpenAI", "SpaceX", "Nvidia", "ARM"},
	"capability":      {"writes code", "predicts future", "reads minds", "creates art"},
	"industry":        {"taxi industry", "retail", "healthcare", "education"},
	"achievement":     {"stable qubits achieved", "1000x faster processing", "room temperature operation"},
	"disease":         {"Alzheimer's", "diabetes", "cancer", "COVID-25"},
	"food":            {"coffee", "chocolate", "red wine", "avocado", "blueberries"},
	"location":        {"Asia", "Europe", "Africa", "South America"},
	"beverage":        {"green tea", "lemon water", "kombucha", "beetroot juice"},
	"treatment":       {"gene therapy", "stem cells", "nanobots", "light therapy"},
	"supplement":      {"Vitamin D", "Omega-3", "Probiotics", "CoQ10"},
	"politician":      {"President Johnson", "Senator Williams", "PM Anderson", "Governor Smith"},
	"policy":          {"universal basic income", "free healthcare", "4-day workweek"},
	"law":             {"tech regulation", "climate act", "AI ethics bill"},
	"scandal":         {"corruption scandal", "affair", "tax evasion"},
	"thing":           {"social media", "cryptocurrency", "gas cars", "plastic bags"},
	"discovery":       {"ancient ruins", "water source", "alien signals", "new mineral"},
	"theory":          {"multiverse theory", "time travel", "parallel dimensions"},
	"species":         {"giant spider", "transparent fish", "glowing jellyfish"},
	"phenomenon":      {"Bermuda Triangle", "dark matter", "ball lightning"},
	"particle":        {"graviton", "tachyon", "dark photon"},
	"news":            {"breakthrough product", "merger announcement", "patent approval"},
	"price":           {"100,000", "250,000", "500,000", "1,000,000"},
	"reason":          {"inflation fears", "geopolitical tension", "tech bubble"},
	"number":          {"10,000", "50,000", "100,000"},
	"percent":         {"30", "50", "70"},
	"celebrity":       {"Tom Cruise", "Taylor Swift", "Dwayne Johnson", "Beyonce"},
	"movie":           {"Avatar 5", "Marvel Phase 10", "Star Wars Episode 15"},
	"show":            {"Stranger Things", "The Crown", "Game of Thrones"},
	"award":           {"Oscar", "Grammy", "Emmy", "Golden Globe"},
	"achievement_ent": {"Best Actor", "Album of the Year", "Lifetime Achievement"},
	"band":            {"The Beatles", "Led Zeppelin", "Queen", "Nirvana"},
	"years":           {"10", "20", "30"},
}
