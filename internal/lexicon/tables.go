package lexicon

// Table order is significant: fuzzy lookups and subject detection scan
// in declaration order and the first hit wins.

var defaultSynonyms = []SynonymEntry{
	{"animal", []string{"animals", "creature", "creatures", "beast", "wildlife"}},
	{"monkey", []string{"monkeys", "ape", "primate", "chimp"}},
	{"dog", []string{"dogs", "puppy", "puppies", "canine"}},
	{"cat", []string{"cats", "kitten", "kittens", "feline"}},
	{"bird", []string{"birds", "avian", "fowl"}},
	{"fish", []string{"fishes", "aquatic"}},
	{"elephant", []string{"elephants", "pachyderm"}},
	{"lion", []string{"lions", "leo"}},
	{"tiger", []string{"tigers"}},
	{"fruit", []string{"fruits", "fruut", "froot"}},
	{"flower", []string{"flowers", "blossom", "bloom"}},
	{"plant", []string{"plants", "vegetation", "flora"}},
	{"tree", []string{"trees", "woods", "forest"}},
	{"vegetable", []string{"vegetables", "veggies"}},

	{"exam", []string{"exams", "test", "tests", "examination", "quiz", "assessment"}},
	{"study", []string{"studies", "learn", "learning", "education"}},
	{"book", []string{"books", "textbook", "reading"}},
	{"lesson", []string{"lessons", "class", "lecture"}},
	{"homework", []string{"assignment", "work", "task"}},
	{"question", []string{"questions", "query", "queries"}},
	{"answer", []string{"answers", "solution", "solutions"}},

	{"maths", []string{"math", "mathematics", "arithmetic", "calculation"}},
	{"science", []string{"sciences", "scientific", "biology", "physics", "chemistry"}},
	{"english", []string{"language", "grammar", "vocabulary"}},
	{"hindi", []string{"हिंदी"}},
	{"telugu", []string{"తెలుగు"}},

	{"color", []string{"colors", "colour", "colours", "shade", "hue"}},
	{"draw", []string{"drawing", "sketch", "art"}},
	{"paint", []string{"painting", "artwork"}},
	{"picture", []string{"pictures", "image", "images", "photo", "photos"}},

	{"shape", []string{"shapes", "geometry", "geometric"}},
	{"number", []string{"numbers", "numeral", "digit", "digits"}},
	{"circle", []string{"circles", "round"}},
	{"square", []string{"squares"}},
	{"triangle", []string{"triangles"}},

	{"write", []string{"writing", "written", "compose"}},
	{"read", []string{"reading", "comprehension"}},
	{"count", []string{"counting", "enumerate"}},
	{"add", []string{"addition", "plus", "sum"}},
	{"subtract", []string{"subtraction", "minus", "difference"}},

	{"interview", []string{"interviews", "exam tips", "preparation", "tips"}},
}

var defaultTypos = []TypoEntry{
	{"monky", "monkey"},
	{"monkee", "monkey"},
	{"munkee", "monkey"},
	{"fruut", "fruit"},
	{"froot", "fruit"},
	{"anamil", "animal"},
	{"animl", "animal"},
	{"collor", "color"},
	{"colur", "color"},
	{"shap", "shape"},
	{"numbr", "number"},
	{"numbere", "number"},
	{"exm", "exam"},
	{"tets", "test"},
	{"studie", "study"},
	{"scince", "science"},
	{"sceince", "science"},
	{"mtah", "maths"},
	{"maht", "maths"},
	{"englsh", "english"},
	{"engilsh", "english"},
}

var defaultCategories = []CategoryEntry{
	{"animals", "/views/academic/imagebank/animals", 0},
	{"animal", "/views/academic/imagebank/animals", 0},
	{"birds", "/views/academic/imagebank/birds", 1},
	{"bird", "/views/academic/imagebank/birds", 1},
	{"flowers", "/views/academic/imagebank/flowers", 2},
	{"flower", "/views/academic/imagebank/flowers", 2},
	{"fruits", "/views/academic/imagebank/fruits", 3},
	{"fruit", "/views/academic/imagebank/fruits", 3},
	{"vegetables", "/views/academic/imagebank/vegetables", 4},
	{"vegetable", "/views/academic/imagebank/vegetables", 4},
	{"plants", "/views/academic/imagebank/plants", 5},
	{"plant", "/views/academic/imagebank/plants", 5},
	{"insects", "/views/academic/imagebank/insects", 6},
	{"insect", "/views/academic/imagebank/insects", 6},
	{"professions", "/views/academic/imagebank/professions", 7},
	{"comics", "/views/sections/comics", 8},
	{"rhymes", "/views/sections/rhymes", 1},
	{"stories", "/views/sections/pictorial-stories", 2},
	{"festivals", "/views/sections/imagebank/festivals", 0},
	{"vehicles", "/views/sections/imagebank/vehicles", 0},
	{"puzzles", "/views/sections/puzzles-riddles", 0},
}

var defaultSubjects = []SubjectEntry{
	{"english", 0},
	{"eng", 0},
	{"hindi", 1},
	{"telugu", 2},
	{"evs", 3},
	{"science", 3},
	{"sci", 3},
	{"maths", 4},
	{"math", 4},
	{"mathematics", 4},
	{"gk", 5},
	{"general knowledge", 5},
	{"computer", 6},
	{"computers", 6},
	{"it", 6},
	{"art", 7},
	{"drawing", 7},
	{"craft", 8},
	{"crafts", 8},
	{"stories", 9},
	{"story", 9},
	{"charts", 10},
	{"chart", 10},
}

var defaultAges = []AgeEntry{
	{3, "nursery"},
	{4, "lkg"},
	{5, "ukg"},
	{6, "class-1"},
	{7, "class-2"},
	{8, "class-3"},
	{9, "class-4"},
	{10, "class-5"},
	{11, "class-6"},
	{12, "class-7"},
	{13, "class-8"},
	{14, "class-9"},
	{15, "class-10"},
}
