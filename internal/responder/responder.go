// Package responder picks canned study-assistant answers by keyword.
package responder

import (
	"fmt"
	"strings"
)

// Rule maps a set of keywords to a fixed answer.
type Rule struct {
	Keywords []string
	Answer   string
}

// Matches reports whether any keyword occurs in the lower-cased question.
func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rules is the dispatch table, evaluated in order. The first matching rule wins.
var Rules = []Rule{
	{
		Keywords: []string{"derivative", "calculus"},
		Answer:   "Great question about derivatives! A derivative represents the rate of change of a function. For example, if f(x) = x², then f'(x) = 2x. This means at any point x, the slope of the tangent line is 2x. The derivative tells us how fast the function is changing at that specific point. Would you like me to explain any specific derivative rules like the power rule, product rule, or chain rule?",
	},
	{
		Keywords: []string{"newton", "force"},
		Answer:   "Newton's laws are fundamental to understanding motion! Newton's Second Law states that F = ma, where F is the net force, m is mass, and a is acceleration. This means that the acceleration of an object is directly proportional to the net force acting on it and inversely proportional to its mass. For example, if you push a heavy box and a light box with the same force, the light box will accelerate more. Would you like examples or want to discuss the other laws of motion?",
	},
	{
		Keywords: []string{"photosynthesis", "plant"},
		Answer:   "Photosynthesis is how plants make their own food! The process can be summarized as: 6CO₂ + 6H₂O + light energy → C₆H₁₂O₆ + 6O₂. It happens in two main stages: Light reactions (in thylakoids) capture light energy and produce ATP and NADPH, while the Calvin cycle (in stroma) uses this energy to convert CO₂ into glucose. Chlorophyll is the green pigment that captures light energy. Would you like me to explain either stage in more detail?",
	},
	{
		Keywords: []string{"bond", "chemical"},
		Answer:   "Chemical bonds hold atoms together! There are three main types: 1) Ionic bonds - formed when electrons are transferred between atoms (like NaCl), 2) Covalent bonds - formed when electrons are shared between atoms (like H₂O), and 3) Metallic bonds - found in metals where electrons move freely. The type of bond depends on the electronegativity difference between atoms. Would you like me to explain any specific type in more detail or give more examples?",
	},
}

const fallbackTemplate = "That's an interesting question about %s! I'd be happy to help you understand this concept better. Could you provide a bit more context or specify which aspect you'd like me to focus on? This will help me give you a more detailed and targeted explanation."

// Respond returns the answer of the first rule matching question, or the
// generic answer mentioning subject. The subject never influences matching.
func Respond(question, subject string) string {
	lowered := strings.ToLower(question)
	for _, rule := range Rules {
		if rule.Matches(lowered) {
			return rule.Answer
		}
	}
	return Fallback(subject)
}

// Fallback renders the generic answer for subject.
func Fallback(subject string) string {
	return fmt.Sprintf(fallbackTemplate, subject)
}

// QuickQuestion is a suggested prompt shown next to the chat.
type QuickQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Subject  string `json:"subject"`
}

// QuickQuestions returns the suggested prompts, one per rule.
func QuickQuestions() []QuickQuestion {
	return []QuickQuestion{
		{ID: "1", Question: "Explain the concept of derivatives in calculus", Subject: "Mathematics"},
		{ID: "2", Question: "What is Newton's second law of motion?", Subject: "Physics"},
		{ID: "3", Question: "How does photosynthesis work?", Subject: "Biology"},
		{ID: "4", Question: "What are the types of chemical bonds?", Subject: "Chemistry"},
	}
}
