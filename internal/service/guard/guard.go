// Package guard decides whether a user utterance is a banking question before
// anything is sent to the model.
package guard

import "strings"

// bankingKeywords is matched as plain substrings of the lower-cased input.
var bankingKeywords = []string{
	"account", "bank", "transfer", "transaction", "card", "debit", "credit",
	"loan", "mortgage", "apr", "interest", "balance", "statement", "iban",
	"swift", "branch", "atm", "fee", "payment", "refund", "charge", "login",
	"password", "otp", "pin",
}

const offTopicReply = "I’m designed to help with banking questions (accounts, cards, transfers, loans, and app support). " +
	"If you have a banking question, tell me what you’re trying to do and I’ll guide you step-by-step."

// Verdict is the outcome of Classify. Matched lists the keywords found, in
// keyword-set order.
type Verdict struct {
	InDomain bool
	Matched  []string
}

// Classify reports whether text contains any banking keyword. Empty input is
// never in-domain.
func Classify(text string) Verdict {
	t := strings.ToLower(text)
	var matched []string
	for _, k := range bankingKeywords {
		if strings.Contains(t, k) {
			matched = append(matched, k)
		}
	}
	return Verdict{InDomain: len(matched) > 0, Matched: matched}
}

// IsBankingQuery is Classify without the match details.
func IsBankingQuery(text string) bool {
	return Classify(text).InDomain
}

// OffTopicReply is the fixed redirect sent instead of calling the model.
func OffTopicReply() string {
	return offTopicReply
}

// Keywords returns a copy of the keyword set.
func Keywords() []string {
	out := make([]string, len(bankingKeywords))
	copy(out, bankingKeywords)
	return out
}
