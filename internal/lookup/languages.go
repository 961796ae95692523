package lookup

// Language is a selectable study or translation language.
type Language struct {
	Code string
	Name string
}

// Languages lists the languages offered in settings.
var Languages = []Language{
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"tr", "Turkish"},
	{"zh-CN", "Chinese (Simplified)"},
}

// LanguageName returns the display name for code, or code itself.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// NextLanguage returns the code after code in Languages, wrapping around.
// step may be negative.
func NextLanguage(code string, step int) string {
	n := len(Languages)
	for i, l := range Languages {
		if l.Code == code {
			return Languages[((i+step)%n+n)%n].Code
		}
	}
	return Languages[0].Code
}
