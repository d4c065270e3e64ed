package ui

// ActionPrompt is a key hint shown in the footer.
type ActionPrompt struct {
	Input  string
	Action string
}
