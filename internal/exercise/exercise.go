// Package exercise runs vocabulary quizzes from a Markdown pipe table of
// question and answer columns.
package exercise

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Card is one quiz question.
type Card struct {
	Question string
	Answer   string
}

// Score counts answers in a quiz run.
type Score struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Total is the number of questions asked.
func (s Score) Total() int {
	return s.Correct + s.Incorrect
}

// Load reads cards from a table like
//
//	| question | answer |
//	|----------|--------|
//	| chat     | cat // also a chat room |
//
// Lines mentioning "question" and separator lines are skipped, as are lines
// without two cells. Anything after "//" in the answer is a comment.
func Load(r io.Reader) ([]Card, error) {
	var cards []Card
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if c, ok := parseLine(sc.Text()); ok {
			cards = append(cards, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("exercise: read: %w", err)
	}
	return cards, nil
}

func parseLine(line string) (Card, bool) {
	if strings.Contains(line, "question") || strings.Contains(line, "--") {
		return Card{}, false
	}
	cells := strings.Split(line, "|")
	if len(cells) < 3 {
		return Card{}, false
	}
	answer, _, _ := strings.Cut(cells[2], "//")
	c := Card{Question: strings.TrimSpace(cells[1]), Answer: strings.TrimSpace(answer)}
	if c.Question == "" {
		return Card{}, false
	}
	return c, true
}

// Run asks every card on out and reads one answer line per card from in.
// An exact match after trimming prints "check"; otherwise the correct answer
// is shown. Run stops early when ctx is done or in is exhausted.
func Run(ctx context.Context, cards []Card, in io.Reader, out io.Writer) (Score, error) {
	var score Score
	sc := bufio.NewScanner(in)
	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return score, err
		}
		fmt.Fprintf(out, "%s: ", c.Question)
		if !sc.Scan() {
			fmt.Fprintln(out)
			break
		}
		if strings.TrimSpace(sc.Text()) == c.Answer {
			fmt.Fprintln(out, "check")
			score.Correct++
		} else {
			fmt.Fprintf(out, "Incorrect answer: %s\n", c.Answer)
			score.Incorrect++
		}
	}
	if err := sc.Err(); err != nil {
		return score, fmt.Errorf("exercise: read answer: %w", err)
	}
	fmt.Fprintf(out, "Correct: %d, Incorrect: %d\n", score.Correct, score.Incorrect)
	return score, nil
}
