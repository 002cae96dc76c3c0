package domain

// DefaultQuestionBank returns the built-in sample questions in authoring order.
// A fresh slice is returned on every call.
func DefaultQuestionBank() []Question {
	return []Question{
		{
			ID:            "1",
			Type:          QuestionMCQ,
			Prompt:        "What is the derivative of x²?",
			Options:       []string{"x", "2x", "x²", "2x²"},
			CorrectAnswer: IndexAnswer(1),
			Explanation:   "The derivative of x² is 2x using the power rule: d/dx(xⁿ) = nxⁿ⁻¹",
			Difficulty:    DifficultyEasy,
			Topic:         "Calculus",
		},
		{
			ID:            "2",
			Type:          QuestionTrueFalse,
			Prompt:        "The speed of light in vacuum is approximately 3 × 10⁸ m/s.",
			CorrectAnswer: TextAnswer("true"),
			Explanation:   "This is correct. The speed of light in vacuum is exactly 299,792,458 m/s, approximately 3 × 10⁸ m/s.",
			Difficulty:    DifficultyEasy,
			Topic:         "Physics",
		},
		{
			ID:            "3",
			Type:          QuestionMCQ,
			Prompt:        "Which organelle is responsible for photosynthesis in plant cells?",
			Options:       []string{"Mitochondria", "Chloroplast", "Nucleus", "Ribosome"},
			CorrectAnswer: IndexAnswer(1),
			Explanation:   "Chloroplasts contain chlorophyll and are the sites where photosynthesis occurs in plant cells.",
			Difficulty:    DifficultyMedium,
			Topic:         "Biology",
		},
	}
}
