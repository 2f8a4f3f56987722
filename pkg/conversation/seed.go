package conversation

import "time"

const (
	seedFirstUser = "Hi, I need to start the Q3 marketing plan for the 'Velocity' product line."
	seedWelcome   = "Welcome! I'm here to help you build the Q3 plan for Velocity. Our first step is to establish the strategic context.\n\n" +
		"Based on our database, I've prioritized the following datasets to inform your situation analysis:\n\n" +
		"1. Market Overview / Macro Picture: What shifts have occurred?\n" +
		"2. Global Scorecard: How did Velocity perform against our annual goals in Q2?\n" +
		"3. Brand Tracking: Are there any critical shifts in perception or health?\n\n" +
		"Question for you: Which area of the business are you focused on optimizing in Q3 (e.g., brand awareness, market share, profitability)?"
	seedFocus = "We're primarily focused on driving market share, specifically with new customers. Our brand health is stable."
)

// SeedMessages returns the conversation every session starts with.
// All three messages carry the given timestamp.
func SeedMessages(ts time.Time) []Message {
	return []Message{
		NewMessage("1", SenderUser, seedFirstUser, ts),
		NewMessage("2", SenderAgent, seedWelcome, ts),
		NewMessage("3", SenderUser, seedFocus, ts),
	}
}
