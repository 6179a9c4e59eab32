package output

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// count renders n with thousands separators, e.g. 50000 -> "50,000".
func count(n int) string {
	return printer.Sprintf("%d", n)
}

// pct1 renders a fraction as a one-decimal percentage, e.g. 0.163 -> "16.3%".
func pct1(r float64) string {
	return strconv.FormatFloat(r*100, 'f', 1, 64) + "%"
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// orNA renders a counter, or N/A when it could not be computed.
func orNA(n int, ok bool) string {
	if !ok {
		return "N/A"
	}
	return strconv.Itoa(n)
}
