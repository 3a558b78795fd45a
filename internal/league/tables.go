package league

import "github.com/oddscope/clvserver/internal/fuzzy"

// Alias maps one known tournament spelling to a canonical league slug.
// Table order is significant: containment checks and country inference take
// the first entry that satisfies their condition.
type Alias struct {
	Name   string // normalized tournament alias
	League string // canonical league slug
}

// Table keys are re-normalized at load time so lookups stay case- and
// punctuation-insensitive even if an entry is added in raw form.
func init() {
	for i := range aliases {
		aliases[i].Name = fuzzy.Normalize(aliases[i].Name)
	}
	normalized := make(map[string]string, len(teamLeagues))
	for k, v := range teamLeagues {
		normalized[fuzzy.Normalize(k)] = v
	}
	teamLeagues = normalized
}

// aliases is the static tournament-alias table.
var aliases = []Alias{
	// Football - England
	{"premier league", "england-premier-league"},
	{"epl", "england-premier-league"},
	{"english premier league", "england-premier-league"},
	{"championship", "england-championship"},
	{"english championship", "england-championship"},
	{"league one", "england-league-one"},
	{"league two", "england-league-two"},
	{"fa cup", "england-fa-cup"},
	{"efl cup", "england-efl-cup"},
	{"league cup", "england-efl-cup"},
	{"carabao cup", "england-efl-cup"},

	// Football - Spain
	{"la liga", "spain-laliga"},
	{"laliga", "spain-laliga"},
	{"spanish la liga", "spain-laliga"},
	{"segunda division", "spain-segunda-division"},
	{"la liga 2", "spain-segunda-division"},
	{"copa del rey", "spain-copa-del-rey"},

	// Football - Italy
	{"serie a", "italy-serie-a"},
	{"italian serie a", "italy-serie-a"},
	{"serie b", "italy-serie-b"},
	{"coppa italia", "italy-coppa-italia"},

	// Football - Germany
	{"bundesliga", "germany-bundesliga"},
	{"german bundesliga", "germany-bundesliga"},
	{"2 bundesliga", "germany-2-bundesliga"},
	{"bundesliga 2", "germany-2-bundesliga"},
	{"dfb pokal", "germany-dfb-pokal"},

	// Football - France
	{"ligue 1", "france-ligue-1"},
	{"french ligue 1", "france-ligue-1"},
	{"ligue 2", "france-ligue-2"},
	{"coupe de france", "france-coupe-de-france"},

	// Football - Other top leagues
	{"eredivisie", "netherlands-eredivisie"},
	{"dutch eredivisie", "netherlands-eredivisie"},
	{"primeira liga", "portugal-primeira-liga"},
	{"liga portugal", "portugal-primeira-liga"},
	{"scottish premiership", "scotland-premiership"},
	{"spfl", "scotland-premiership"},
	{"super lig", "turkey-super-lig"},
	{"turkish super lig", "turkey-super-lig"},
	{"belgian pro league", "belgium-jupiler-pro-league"},
	{"jupiler pro league", "belgium-jupiler-pro-league"},
	{"russian premier league", "russia-premier-league"},
	{"austrian bundesliga", "austria-bundesliga"},
	{"swiss super league", "switzerland-super-league"},
	{"danish superliga", "denmark-superliga"},
	{"norwegian eliteserien", "norway-eliteserien"},
	{"swedish allsvenskan", "sweden-allsvenskan"},

	// Football - South America
	{"brasileirao", "brazil-serie-a"},
	{"brasileiro serie a", "brazil-serie-a"},
	{"brazilian serie a", "brazil-serie-a"},
	{"argentine primera division", "argentina-primera-division"},
	{"liga profesional", "argentina-primera-division"},

	// Football - International
	{"champions league", "europe-champions-league"},
	{"uefa champions league", "europe-champions-league"},
	{"ucl", "europe-champions-league"},
	{"europa league", "europe-europa-league"},
	{"uefa europa league", "europe-europa-league"},
	{"uel", "europe-europa-league"},
	{"conference league", "europe-conference-league"},
	{"europa conference league", "europe-conference-league"},
	{"world cup", "world-world-cup"},
	{"fifa world cup", "world-world-cup"},
	{"euro", "europe-euro"},
	{"european championship", "europe-euro"},
	{"nations league", "europe-nations-league"},
	{"uefa nations league", "europe-nations-league"},
	{"copa america", "south-america-copa-america"},

	// Football - USA
	{"mls", "usa-mls"},
	{"major league soccer", "usa-mls"},

	// Tennis - Grand Slams
	{"australian open", "atp-australian-open"},
	{"french open", "atp-french-open"},
	{"roland garros", "atp-french-open"},
	{"wimbledon", "atp-wimbledon"},
	{"us open", "atp-us-open"},

	// Tennis - Other
	{"atp tour", "atp-tour"},
	{"wta tour", "wta-tour"},
	{"atp 1000", "atp-masters-1000"},
	{"atp 500", "atp-500"},
	{"atp 250", "atp-250"},

	// Basketball
	{"nba", "usa-nba"},
	{"national basketball association", "usa-nba"},
	{"euroleague", "europe-euroleague"},
	{"eurocup", "europe-eurocup"},
	{"acb", "spain-acb"},
	{"spanish acb", "spain-acb"},

	// Ice hockey
	{"nhl", "usa-nhl"},
	{"national hockey league", "usa-nhl"},
	{"khl", "russia-khl"},
	{"shl", "sweden-shl"},
	{"liiga", "finland-liiga"},

	// Baseball
	{"mlb", "usa-mlb"},
	{"major league baseball", "usa-mlb"},
	{"npb", "japan-npb"},
	{"kbo", "korea-kbo"},

	// Rugby
	{"six nations", "europe-six-nations"},
	{"rugby championship", "world-rugby-championship"},
	{"premiership rugby", "england-premiership-rugby"},
	{"top 14", "france-top-14"},
	{"super rugby", "world-super-rugby"},
	{"nrl", "australia-nrl"},
	{"super league", "europe-super-league-rugby"},
}

// teamLeagues maps normalized team names to their primary league slug.
var teamLeagues = map[string]string{
	// Premier League
	"arsenal":           "england-premier-league",
	"aston villa":       "england-premier-league",
	"bournemouth":       "england-premier-league",
	"brentford":         "england-premier-league",
	"brighton":          "england-premier-league",
	"burnley":           "england-premier-league",
	"chelsea":           "england-premier-league",
	"crystal palace":    "england-premier-league",
	"everton":           "england-premier-league",
	"fulham":            "england-premier-league",
	"liverpool":         "england-premier-league",
	"luton":             "england-premier-league",
	"manchester city":   "england-premier-league",
	"manchester united": "england-premier-league",
	"newcastle":         "england-premier-league",
	"nottingham forest": "england-premier-league",
	"sheffield united":  "england-premier-league",
	"tottenham":         "england-premier-league",
	"west ham":          "england-premier-league",
	"wolverhampton":     "england-premier-league",
	"wolves":            "england-premier-league",

	// La Liga
	"barcelona":       "spain-laliga",
	"real madrid":     "spain-laliga",
	"atletico madrid": "spain-laliga",
	"sevilla":         "spain-laliga",
	"real sociedad":   "spain-laliga",
	"villarreal":      "spain-laliga",
	"athletic bilbao": "spain-laliga",
	"real betis":      "spain-laliga",
	"valencia":        "spain-laliga",
	"getafe":          "spain-laliga",
	"osasuna":         "spain-laliga",
	"celta vigo":      "spain-laliga",
	"mallorca":        "spain-laliga",
	"las palmas":      "spain-laliga",
	"girona":          "spain-laliga",
	"rayo vallecano":  "spain-laliga",
	"almeria":         "spain-laliga",
	"cadiz":           "spain-laliga",
	"alaves":          "spain-laliga",
	"granada":         "spain-laliga",

	// Serie A
	"inter milan": "italy-serie-a",
	"inter":       "italy-serie-a",
	"ac milan":    "italy-serie-a",
	"milan":       "italy-serie-a",
	"juventus":    "italy-serie-a",
	"napoli":      "italy-serie-a",
	"roma":        "italy-serie-a",
	"lazio":       "italy-serie-a",
	"atalanta":    "italy-serie-a",
	"fiorentina":  "italy-serie-a",
	"bologna":     "italy-serie-a",
	"torino":      "italy-serie-a",
	"monza":       "italy-serie-a",
	"udinese":     "italy-serie-a",
	"sassuolo":    "italy-serie-a",
	"empoli":      "italy-serie-a",
	"lecce":       "italy-serie-a",
	"genoa":       "italy-serie-a",
	"cagliari":    "italy-serie-a",
	"frosinone":   "italy-serie-a",
	"verona":      "italy-serie-a",
	"salernitana": "italy-serie-a",

	// Bundesliga
	"bayern munich":            "germany-bundesliga",
	"bayern":                   "germany-bundesliga",
	"borussia dortmund":        "germany-bundesliga",
	"dortmund":                 "germany-bundesliga",
	"bayer leverkusen":         "germany-bundesliga",
	"leverkusen":               "germany-bundesliga",
	"rb leipzig":               "germany-bundesliga",
	"leipzig":                  "germany-bundesliga",
	"eintracht frankfurt":      "germany-bundesliga",
	"frankfurt":                "germany-bundesliga",
	"wolfsburg":                "germany-bundesliga",
	"freiburg":                 "germany-bundesliga",
	"hoffenheim":               "germany-bundesliga",
	"borussia monchengladbach": "germany-bundesliga",
	"monchengladbach":          "germany-bundesliga",
	"union berlin":             "germany-bundesliga",
	"koln":                     "germany-bundesliga",
	"cologne":                  "germany-bundesliga",
	"mainz":                    "germany-bundesliga",
	"augsburg":                 "germany-bundesliga",
	"werder bremen":            "germany-bundesliga",
	"bremen":                   "germany-bundesliga",
	"bochum":                   "germany-bundesliga",
	"heidenheim":               "germany-bundesliga",
	"darmstadt":                "germany-bundesliga",

	// Ligue 1
	"paris saint germain": "france-ligue-1",
	"psg":                 "france-ligue-1",
	"marseille":           "france-ligue-1",
	"monaco":              "france-ligue-1",
	"lyon":                "france-ligue-1",
	"lille":               "france-ligue-1",
	"lens":                "france-ligue-1",
	"nice":                "france-ligue-1",
	"rennes":              "france-ligue-1",
	"strasbourg":          "france-ligue-1",
	"nantes":              "france-ligue-1",
	"toulouse":            "france-ligue-1",
	"montpellier":         "france-ligue-1",
	"brest":               "france-ligue-1",
	"reims":               "france-ligue-1",
	"le havre":            "france-ligue-1",
	"lorient":             "france-ligue-1",
	"metz":                "france-ligue-1",
	"clermont":            "france-ligue-1",
}

// countryPattern maps a tournament keyword to the country token expected
// inside a league slug. Scanned in declaration order; first hit wins.
type countryPattern struct {
	Keyword string
	Country string
}

var countryPatterns = []countryPattern{
	{"england", "england"},
	{"english", "england"},
	{"spain", "spain"},
	{"spanish", "spain"},
	{"italy", "italy"},
	{"italian", "italy"},
	{"germany", "germany"},
	{"german", "germany"},
	{"france", "france"},
	{"french", "france"},
}
