package vocab

import (
	"math/rand/v2"
	"slices"
)

// Session is a flashcard run over a shuffled deck.
type Session struct {
	deck     []Entry
	pos      int
	flipped  bool
	mastered int
	rand     *rand.Rand
}

// NewSession shuffles entries into a deck. It returns nil for an empty
// list. r may be nil for a time-seeded shuffle.
func NewSession(entries []Entry, r *rand.Rand) *Session {
	if len(entries) == 0 {
		return nil
	}
	s := &Session{deck: slices.Clone(entries), rand: r}
	s.shuffle()
	return s
}

func (s *Session) shuffle() {
	if s.rand != nil {
		s.rand.Shuffle(len(s.deck), func(i, j int) { s.deck[i], s.deck[j] = s.deck[j], s.deck[i] })
		return
	}
	rand.Shuffle(len(s.deck), func(i, j int) { s.deck[i], s.deck[j] = s.deck[j], s.deck[i] })
}

// Card returns the current card. ok is false once the deck is done.
func (s *Session) Card() (e Entry, ok bool) {
	if s.Done() {
		return Entry{}, false
	}
	return s.deck[s.pos], true
}

// Flipped reports whether the answer side is showing.
func (s *Session) Flipped() bool { return s.flipped }

// Flip turns the current card over.
func (s *Session) Flip() {
	if !s.Done() {
		s.flipped = !s.flipped
	}
}

// GotIt counts the card as mastered and moves on.
func (s *Session) GotIt() {
	if s.Done() {
		return
	}
	s.mastered++
	s.next()
}

// StillLearning moves on without counting the card.
func (s *Session) StillLearning() {
	if !s.Done() {
		s.next()
	}
}

func (s *Session) next() {
	s.pos++
	s.flipped = false
}

// Done reports whether every card has been answered.
func (s *Session) Done() bool { return s.pos >= len(s.deck) }

// Progress returns the 1-based card number and the deck size.
func (s *Session) Progress() (current, total int) {
	return min(s.pos+1, len(s.deck)), len(s.deck)
}

// Mastered is the number of cards answered with GotIt.
func (s *Session) Mastered() int { return s.mastered }

// Restart reshuffles the deck and clears the score.
func (s *Session) Restart() {
	s.pos = 0
	s.flipped = false
	s.mastered = 0
	s.shuffle()
}
