package profile

type stemInfo struct {
	element Element
	yang    bool
	pinyin  string
}

var stems = map[string]stemInfo{
	"甲": {Wood, true, "Jia"},
	"乙": {Wood, false, "Yi"},
	"丙": {Fire, true, "Bing"},
	"丁": {Fire, false, "Ding"},
	"戊": {Earth, true, "Wu"},
	"己": {Earth, false, "Ji"},
	"庚": {Metal, true, "Geng"},
	"辛": {Metal, false, "Xin"},
	"壬": {Water, true, "Ren"},
	"癸": {Water, false, "Gui"},
}

type branchInfo struct {
	element Element
	zodiac  string
	animal  string
}

var branches = map[string]branchInfo{
	"子": {Water, "鼠", "Rat"},
	"丑": {Earth, "牛", "Ox"},
	"寅": {Wood, "虎", "Tiger"},
	"卯": {Wood, "兔", "Rabbit"},
	"辰": {Earth, "龙", "Dragon"},
	"巳": {Fire, "蛇", "Snake"},
	"午": {Fire, "马", "Horse"},
	"未": {Earth, "羊", "Goat"},
	"申": {Metal, "猴", "Monkey"},
	"酉": {Metal, "鸡", "Rooster"},
	"戌": {Earth, "狗", "Dog"},
	"亥": {Water, "猪", "Pig"},
}

// StemElement returns the element of a heavenly stem character.
func StemElement(stem string) (Element, bool) {
	info, ok := stems[stem]
	return info.element, ok
}

// BranchElement returns the element of an earthly branch character.
func BranchElement(branch string) (Element, bool) {
	info, ok := branches[branch]
	return info.element, ok
}

// ZodiacAnimal maps an earthly branch to its zodiac character and English name.
func ZodiacAnimal(branch string) (string, string, bool) {
	info, ok := branches[branch]
	return info.zodiac, info.animal, ok
}

// Polarity returns "Yang" or "Yin" for a stem, empty when unknown.
func Polarity(stem string) string {
	info, ok := stems[stem]
	switch {
	case !ok:
		return ""
	case info.yang:
		return "Yang"
	default:
		return "Yin"
	}
}
