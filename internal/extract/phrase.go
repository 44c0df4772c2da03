package extract

import (
	"regexp"
	"strings"
	"time"
)

// phraseStops end a merchant phrase.
var phraseStops = map[string]bool{
	"on": true, "for": true, "via": true, "using": true, "ref": true, "refno": true,
	"upi": true, "avl": true, "avbl": true, "bal": true, "info": true, "with": true,
	"rs": true, "rs.": true, "inr": true, "dated": true, "thru": true, "through": true,
	"is": true, "has": true, "was": true, "from": true, "to": true, "at": true,
	"and": true, "by": true, "of": true, "txn": true, "transaction": true, "if": true,
	"not": true, "call": true, "sms": true, "on-": true, "ac": true, "a": true,
}

// phraseLeadRejects mark captures that name the account holder's side or a
// transfer rail rather than a counterparty.
var phraseLeadRejects = map[string]bool{
	"your": true, "you": true, "the": true, "beneficiary": true, "self": true,
	"neft": true, "imps": true, "rtgs": true, "upi": true,
}

// phraseLead captures the words after a counterparty preposition.
var phraseLead = regexp.MustCompile(`(?i)\b(?:at|to|from|towards|by)\s+([a-z0-9][a-z0-9&'._ -]{0,60})`)

// accountWords anywhere in a phrase mean it names an account, not a merchant.
var accountWords = map[string]bool{
	"ac": true, "a/c": true, "acct": true, "account": true, "card": true,
	"bank": true, "wallet": true,
}

var maskedAccount = regexp.MustCompile(`(?i)^x+\d+$|^\*+\d+$|^\d+$`)

// ExtractPhrase trims a raw capture down to the merchant words.
func ExtractPhrase(capture string) (string, bool) {
	words := strings.Fields(capture)
	if len(words) > 0 && strings.EqualFold(words[0], "vpa") {
		words = words[1:]
	}

	var kept []string
	for _, w := range words {
		lw := strings.ToLower(w)
		if phraseStops[lw] || maskedAccount.MatchString(w) || strings.Contains(w, "@") {
			break
		}
		trimmed := strings.TrimRight(w, ".,;:-'")
		if trimmed != w {
			if trimmed != "" {
				kept = append(kept, trimmed)
			}
			break
		}
		kept = append(kept, w)
		if len(kept) == 4 {
			break
		}
	}
	if len(kept) == 0 || phraseLeadRejects[strings.ToLower(kept[0])] {
		return "", false
	}
	for _, w := range kept {
		if accountWords[strings.ToLower(w)] {
			return "", false
		}
	}
	phrase := strings.Join(kept, " ")
	if len(phrase) < 2 {
		return "", false
	}
	return phrase, true
}

// parseMerchantPhrase falls back to leads nested in a rejected capture, as in
// "by NEFT from ACME CORP" where the whole tail was taken by the first match.
func parseMerchantPhrase(text string, loc []int, _ time.Time) (Value, bool) {
	capture := group(text, loc, 1)
	if p, ok := ExtractPhrase(capture); ok {
		return Value{Text: p}, true
	}
	for _, m := range phraseLead.FindAllStringSubmatch(capture, -1) {
		if p, ok := ExtractPhrase(m[1]); ok {
			return Value{Text: p}, true
		}
	}
	return Value{}, false
}
