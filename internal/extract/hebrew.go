package extract

import "unicode"

// displayName returns the name with its runes reversed when the name is
// predominantly Hebrew. Right-to-left text otherwise renders backwards in
// the terminal and in naive HTML clients. Anything that is not clearly
// Hebrew passes through unchanged.
func displayName(name string) string {
	if !isHebrew(name) {
		return name
	}
	runes := []rune(name)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// isHebrew reports whether the majority of the letters in s are from the
// Hebrew script. Names with no letters at all are not Hebrew.
func isHebrew(s string) bool {
	var letters, hebrew int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hebrew, r) {
			hebrew++
		}
	}
	return letters > 0 && hebrew*2 > letters
}
