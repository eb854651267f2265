package srs

import "fmt"

// Feedback is the learner's self-reported recall quality at review time.
type Feedback int

const (
	FeedbackAgain Feedback = iota + 1 // 1=Again
	FeedbackHard                      // 2=Hard
	FeedbackGood                      // 3=Good
	FeedbackEasy                      // 4=Easy
)

// FeedbackFromRating maps the 1-4 rating submitted by API clients to a Feedback.
func FeedbackFromRating(rating int) (Feedback, error) {
	if rating < int(FeedbackAgain) || rating > int(FeedbackEasy) {
		return 0, fmt.Errorf("%w: rating must be between 1 and 4, got %d", ErrInvalidFeedback, rating)
	}
	return Feedback(rating), nil
}

// FeedbackFromString parses the textual form used in configs and logs.
func FeedbackFromString(s string) (Feedback, error) {
	switch s {
	case "again":
		return FeedbackAgain, nil
	case "hard":
		return FeedbackHard, nil
	case "good":
		return FeedbackGood, nil
	case "easy":
		return FeedbackEasy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFeedback, s)
	}
}

func (f Feedback) Valid() bool {
	return f >= FeedbackAgain && f <= FeedbackEasy
}

func (f Feedback) String() string {
	switch f {
	case FeedbackAgain:
		return "again"
	case FeedbackHard:
		return "hard"
	case FeedbackGood:
		return "good"
	case FeedbackEasy:
		return "easy"
	default:
		return fmt.Sprintf("feedback(%d)", int(f))
	}
}
