// Package nlp turns informal pt-BR utterances into typed intents.
//
// Extraction is best-effort by design: every extractor returns its zero
// value (nil pointer / empty string) when nothing matches, and never
// errors. Multi-word names spanning an unexpected preposition may be
// truncated — accepted heuristic limitation.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// --- Amount ---

var (
	// R$ 1.234,56 — pt-BR grouping: dot = thousands, comma = decimal.
	amountCurrencyRe = regexp.MustCompile(`(?i)r\$\s*(\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:,\d{1,2})?)`)
	// 50 reais / 50,90 reais
	amountReaisRe = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d{1,2})?)\s*reais?\b`)
	// cinquenta reais
	amountWordRe = regexp.MustCompile(`(?i)\b([a-zçáéêíóú]+)\s+rea(?:l|is)\b`)
)

// wordAmounts is the fixed word-number dictionary. Only whole words
// followed by "real"/"reais" are accepted.
var wordAmounts = map[string]float64{
	"um": 1, "dois": 2, "três": 3, "tres": 3, "quatro": 4, "cinco": 5,
	"seis": 6, "sete": 7, "oito": 8, "nove": 9, "dez": 10,
	"quinze": 15, "vinte": 20, "trinta": 30, "quarenta": 40,
	"cinquenta": 50, "sessenta": 60, "setenta": 70, "oitenta": 80,
	"noventa": 90, "cem": 100, "duzentos": 200, "trezentos": 300,
	"quinhentos": 500, "mil": 1000,
}

// ExtractAmount pulls a monetary amount out of the text. The patterns
// are tried in order (currency prefix, "N reais", word-number) and the
// first hit wins. No match returns nil — never a defaulted zero.
func ExtractAmount(text string) *float64 {
	if m := amountCurrencyRe.FindStringSubmatch(text); m != nil {
		return parseBRNumber(m[1])
	}
	if m := amountReaisRe.FindStringSubmatch(text); m != nil {
		return parseBRNumber(m[1])
	}
	if m := amountWordRe.FindStringSubmatch(text); m != nil {
		if v, ok := wordAmounts[strings.ToLower(m[1])]; ok {
			amount := v
			return &amount
		}
	}
	return nil
}

var thousandsOnlyRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)

// parseBRNumber normalizes "1.234,56" to 1234.56. Dots in groups of
// three with no comma are thousands separators ("3.000" is 3000); a
// lone separator is the decimal mark ("50,90" and "50.90" both parse).
func parseBRNumber(s string) *float64 {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if thousandsOnlyRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// --- Date ---

var dayOfMonthRe = regexp.MustCompile(`(?i)\bdia\s+(\d{1,2})\b`)

// ExtractDate resolves "hoje", "ontem" and "dia N" relative to now.
// No match returns nil; callers default to now.
func ExtractDate(text string, now time.Time) *time.Time {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "hoje"):
		d := now
		return &d
	case strings.Contains(lower, "ontem"):
		d := now.AddDate(0, 0, -1)
		return &d
	}
	if m := dayOfMonthRe.FindStringSubmatch(lower); m != nil {
		day, err := strconv.Atoi(m[1])
		if err == nil && day >= 1 && day <= 31 {
			d := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
			return &d
		}
	}
	return nil
}

// --- Month ---

// monthNames maps a bare pt-BR month name to its number. A bare name is
// resolved against the CURRENT year — ambiguous across years, documented
// limitation.
var monthNames = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "março": time.March,
	"marco": time.March, "abril": time.April, "maio": time.May,
	"junho": time.June, "julho": time.July, "agosto": time.August,
	"setembro": time.September, "outubro": time.October,
	"novembro": time.November, "dezembro": time.December,
}

// ExtractMonth resolves "esse/este mês", "mês passado" and bare month
// names to "YYYY-MM". Empty string when nothing matches.
func ExtractMonth(text string, now time.Time) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "esse mês") || strings.Contains(lower, "este mês") ||
		strings.Contains(lower, "esse mes") || strings.Contains(lower, "este mes") {
		return now.Format("2006-01")
	}
	if strings.Contains(lower, "mês passado") || strings.Contains(lower, "mes passado") {
		return now.AddDate(0, -1, 0).Format("2006-01")
	}
	for name, m := range monthNames {
		if containsWord(lower, name) {
			return time.Date(now.Year(), m, 1, 0, 0, 0, 0, now.Location()).Format("2006-01")
		}
	}
	return ""
}

// ExtractMonthPair returns the two months named in a comparison
// utterance, in order of appearance. Used by period_comparison.
func ExtractMonthPair(text string, now time.Time) (string, string) {
	lower := strings.ToLower(text)
	type hit struct {
		pos   int
		month string
	}
	var hits []hit
	for name, m := range monthNames {
		if idx := indexWord(lower, name); idx >= 0 {
			hits = append(hits, hit{idx, time.Date(now.Year(), m, 1, 0, 0, 0, 0, now.Location()).Format("2006-01")})
		}
	}
	if len(hits) >= 2 {
		// keep textual order
		first, second := hits[0], hits[1]
		if second.pos < first.pos {
			first, second = second, first
		}
		for _, h := range hits[2:] {
			if h.pos < first.pos {
				second = first
				first = h
			} else if h.pos < second.pos {
				second = h
			}
		}
		return first.month, second.month
	}
	return "", ""
}

// --- Names (category / account / goal) ---

// stopWords end a free-text name capture: the next preposition-like
// token after the anchor closes the name. RE2 has no lookahead, so the
// capture runs to end of string and is truncated here.
var stopWords = map[string]bool{
	"em": true, "de": true, "da": true, "do": true, "das": true, "dos": true,
	"na": true, "no": true, "nas": true, "nos": true, "para": true, "pra": true,
	"pela": true, "pelo": true, "com": true, "conta": true, "categoria": true,
	"meta": true, "dia": true, "hoje": true, "ontem": true, "mês": true, "mes": true,
	"passado": true, "janeiro": true, "fevereiro": true, "março": true,
	"marco": true, "abril": true, "maio": true, "junho": true, "julho": true,
	"agosto": true, "setembro": true, "outubro": true, "novembro": true,
	"dezembro": true,
}

var (
	categoryRe = regexp.MustCompile(`(?i)(?:\bcategoria\b|\bem\b|\bna\b|\bno\b|\bde\b|\bcom\b)\s+(.+)$`)
	accountRe  = regexp.MustCompile(`(?i)\bconta\s+(?:d[aeo]\s+)?(.+)$`)
	transferRe = regexp.MustCompile(`(?i)\bd[ae]\s+(?:conta\s+)?(.+?)\s+para\s+(?:a\s+)?(?:conta\s+)?(.+)$`)
	goalRe     = regexp.MustCompile(`(?i)\bmeta\s+(?:d[aeo]\s+)?(.+)$`)

	installmentsRe = regexp.MustCompile(`(?i)\b(?:em\s+)?(\d{1,2})\s*(?:x\b|vezes|parcelas)`)
	minAmountRe    = regexp.MustCompile(`(?i)(?:acima\s+d[eo]s?|maior(?:es)?\s+(?:do\s+)?que)\s+(?:r\$\s*)?(\d{1,3}(?:\.\d{3})*(?:,\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
)

// ExtractCategory captures a category name anchored on a preposition,
// truncated at the next preposition. First match wins.
func ExtractCategory(text string) string {
	return captureName(categoryRe, text)
}

// ExtractAccountName captures an account name anchored on "conta".
func ExtractAccountName(text string) string {
	return captureName(accountRe, text)
}

// ExtractGoalName captures a savings-goal name anchored on "meta".
func ExtractGoalName(text string) string {
	return captureName(goalRe, text)
}

// ExtractTransferAccounts captures the "da conta X para a conta Y" pair.
func ExtractTransferAccounts(text string) (from, to string) {
	m := transferRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return trimAtStopWord(m[1]), trimAtStopWord(m[2])
}

// ExtractInstallments reads "em 3x" / "3 vezes" / "3 parcelas".
// Zero when absent.
func ExtractInstallments(text string) int {
	m := installmentsRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// ExtractMinAmount reads the threshold of "gastos acima de R$100".
func ExtractMinAmount(text string) *float64 {
	m := minAmountRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parseBRNumber(m[1])
}

func captureName(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return trimAtStopWord(m[1])
}

// anchorWords re-anchor a capture: when one of them leads the capture
// ("na categoria lazer" anchored on "na"), the real name comes after it.
var anchorWords = map[string]bool{"categoria": true, "conta": true, "meta": true}

// trimAtStopWord cuts the capture at the first stop token and strips
// amounts, digits and punctuation noise.
func trimAtStopWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	var kept []string
	for _, f := range fields {
		w := strings.Trim(f, "?!.,;:")
		if stopWords[w] {
			if len(kept) == 0 && anchorWords[w] {
				continue
			}
			break
		}
		// skip amount fragments ("r$50", "50", "3x")
		if w == "" || strings.HasPrefix(w, "r$") || startsWithDigit(w) {
			if len(kept) > 0 {
				break
			}
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}

func containsWord(text, word string) bool {
	return indexWord(text, word) >= 0
}

// indexWord finds word as a whole token (space/punct bounded).
func indexWord(text, word string) int {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return -1
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || isBoundary(text[start-1])
		afterOK := end == len(text) || isBoundary(text[end])
		if beforeOK && afterOK {
			return start
		}
		idx = start + 1
	}
}

func isBoundary(b byte) bool {
	return b == ' ' || b == ',' || b == '.' || b == '?' || b == '!' || b == ';' || b == ':'
}
