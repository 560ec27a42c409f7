package assistant

// QuickAction is a canned prompt offered as a shortcut. Once submitted it is
// handled exactly like typed input.
type QuickAction struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

var quickActions = []QuickAction{
	{"Open a new account", "I want to open a bank account. What documents do I need and what are the steps?"},
	{"Card lost or stolen", "My card is lost. What should I do immediately and what happens next?"},
	{"Transfer not received", "I sent a transfer but it’s not received. What could be wrong and what should I check?"},
	{"Reset / login help", "I can’t log in to the banking app. How can I reset access safely?"},
	{"Loan / mortgage info", "Can you explain how fixed-rate vs variable-rate loans differ and what I should consider?"},
	{"Branch / ATM info", "How do I find my nearest branch/ATM and what are typical banking hours?"},
}

// QuickActions returns the quick actions in display order.
func QuickActions() []QuickAction {
	out := make([]QuickAction, len(quickActions))
	copy(out, quickActions)
	return out
}

// QuickActionPrompt looks up the prompt for label.
func QuickActionPrompt(label string) (string, bool) {
	for _, qa := range quickActions {
		if qa.Label == label {
			return qa.Prompt, true
		}
	}
	return "", false
}
