package intent

// Keyword tables driving extraction. The matching algorithm is table-agnostic:
// swapping a table changes behavior without touching code.

var genreKeywords = map[string][]string{
	"pop":          {"pop", "поп", "попс"},
	"dance":        {"dance", "танц", "дэнс"},
	"electronic":   {"electronic", "edm", "house", "techno", "trance", "электрон", "хаус", "техно", "транс"},
	"indie":        {"indie", "инди"},
	"hip_hop":      {"hip", "hop", "хип", "хоп"},
	"rap":          {"rap", "рэп", "реп", "рэпчик"},
	"trap":         {"trap", "трэп", "треп"},
	"rnb":          {"rnb", "r&b", "рнб", "ритм"},
	"rock":         {"rock", "рок"},
	"metal":        {"metal", "метал", "металл"},
	"punk":         {"punk", "панк"},
	"alternative":  {"alternative", "альтернатив", "альт"},
	"classical":    {"classical", "классик", "symphon", "orchestr", "оркест", "симфон"},
	"instrumental": {"instrumental", "инструмент", "piano", "пиан", "фортепиано"},
	"ambient":      {"ambient", "эмбиент", "амбиент"},
	"jazz":         {"jazz", "джаз"},
	"folk":         {"folk", "фолк", "народн"},
	"latin":        {"latin", "латино", "регетон", "reggaeton"},
	"soundtrack":   {"soundtrack", "саундтрек", "score", "кино", "фильм"},
	"blues":        {"blues", "блюз"},
}

// languageKeywords are checked against the full lowercase text. Order of
// languagePriority decides which single tag wins.
var languageKeywords = map[string][]string{
	"ru":           {"русск", "российск", "по-русск", "отечествен", "наш"},
	"en":           {"английск", "по-английск", "english", "англоязычн", "зарубежн", "иностран"},
	"instrumental": {"инструментал", "без слов", "без вокал", "фонов", "саундтрек", "без текст"},
}

var languagePriority = []string{"instrumental", "ru", "en"}

var moodKeywords = map[string][]string{
	"happy":     {"весел", "радост", "позитив", "жизнерадост", "счастл", "хорош", "отличн"},
	"sad":       {"грустн", "печальн", "тоскл", "меланхол", "плох", "одинок", "горе"},
	"energetic": {"энергичн", "бодр", "драйв", "активн", "мощн", "зажигательн"},
	"calm":      {"спокойн", "расслаб", "тих", "умиротвор", "мягк", "нежн", "уютн"},
	"angry":     {"злост", "агрессив", "ярост", "бешен", "дик", "жёстк", "жестк"},
	"romantic":  {"романтичн", "любов", "нежн", "чувствен", "лиричн"},
	"nostalgic": {"ностальг", "старых", "прошл", "ретро", "винтаж"},
	"party":     {"вечеринк", "тусовк", "клуб", "танцпол", "пати", "движ"},
}

var playKeywords = map[string]struct{}{
	"включи": {}, "поставь": {}, "запусти": {}, "проиграй": {}, "воспроизведи": {},
	"хочу": {}, "давай": {}, "дай": {}, "найди": {}, "подбери": {}, "порекомендуй": {},
	"play": {}, "start": {}, "put": {},
}

var stopWords = map[string]struct{}{
	"я": {}, "ты": {}, "мы": {}, "вы": {}, "он": {}, "она": {}, "они": {}, "оно": {},
	"что": {}, "как": {}, "это": {}, "тот": {}, "такой": {}, "такая": {}, "такие": {},
	"мне": {}, "мой": {}, "моя": {}, "мои": {}, "тебе": {}, "твой": {},
	"хочу": {}, "хочется": {}, "нужно": {}, "нужна": {}, "можно": {}, "можешь": {},
	"давай": {}, "дай": {}, "включи": {}, "поставь": {}, "послушать": {}, "слушать": {},
	"музык": {}, "песн": {}, "трек": {}, "нибудь": {}, "какой": {}, "какую": {}, "какие": {},
	"очень": {}, "немного": {}, "чуть": {}, "просто": {}, "сейчас": {}, "сегодня": {},
	"вчера": {}, "потом": {}, "ещё": {}, "еще": {}, "только": {}, "уже": {}, "тоже": {},
	"также": {}, "или": {}, "либо": {}, "а": {}, "и": {}, "но": {}, "да": {}, "нет": {},
	"не": {}, "под": {}, "на": {}, "в": {}, "к": {}, "от": {}, "для": {}, "с": {}, "по": {},
}
