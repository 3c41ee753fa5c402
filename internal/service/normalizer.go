package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	separatorPattern  = regexp.MustCompile(`[-_*@.|#:/;]`)
	longNumberPattern = regexp.MustCompile(`\b\d{4,}\b`)
	mixedTokenPattern = regexp.MustCompile(`\b[a-z]*\d+[a-z\d]*\b`)
)

// noiseTokens are bank-statement boilerplate words that carry no signal for
// classification ("POS", scheme names, auth jargon and so on).
var noiseTokens = map[string]struct{}{
	"pos": {}, "visa": {}, "mastercard": {}, "debit": {}, "credit": {},
	"ecom": {}, "auth": {}, "authcode": {}, "approved": {}, "card": {},
	"payment": {}, "transaction": {}, "purchase": {}, "terminal": {},
	"term": {}, "intl": {}, "fee": {}, "fx": {}, "exchange": {},
	"recurring": {}, "subscription": {}, "online": {}, "ecommerce": {},
	"ref": {}, "trace": {}, "seq": {}, "batch": {}, "settled": {},
	"pending": {}, "contactless": {}, "chip": {}, "pin": {}, "tap": {},
}

// NormalizerService cleans raw transaction descriptions into the canonical
// token string the categorizer was trained on.
type NormalizerService struct{}

func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// Normalize lower-cases the text, breaks punctuation separators into spaces,
// strips reference numbers, auth codes and noise tokens, and rejoins the
// surviving tokens with single spaces. Idempotent; empty input yields "".
func (s *NormalizerService) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = sanitizeUTF8(text)
	text = strings.ToLower(text)
	text = separatorPattern.ReplaceAllString(text, " ")

	// Long numeric runs are transaction IDs and reference codes.
	text = longNumberPattern.ReplaceAllString(text, " ")

	// Tokens mixing letters and digits are auth codes like "auth928374".
	text = mixedTokenPattern.ReplaceAllString(text, " ")

	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, token := range tokens {
		if _, noisy := noiseTokens[token]; noisy {
			continue
		}
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		kept = append(kept, token)
	}

	return strings.Join(kept, " ")
}
