package qa

// Pair is a single known question with its stored answer
type Pair struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Store is an immutable, ordered set of question/answer pairs.
// Questions are unique by exact string equality and keep their load order.
type Store struct {
	pairs []Pair
	index map[string]int
}

// NewStore builds a store from pairs in the given order.
// A repeated question keeps its first position and takes the last answer.
func NewStore(pairs []Pair) *Store {
	s := &Store{
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}

	for _, p := range pairs {
		if i, ok := s.index[p.Question]; ok {
			s.pairs[i].Answer = p.Answer
			continue
		}
		s.index[p.Question] = len(s.pairs)
		s.pairs = append(s.pairs, p)
	}

	return s
}

// Len returns the number of pairs
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

// Question returns the question at position i
func (s *Store) Question(i int) string {
	return s.pairs[i].Question
}

// Answer returns the answer at position i
func (s *Store) Answer(i int) string {
	return s.pairs[i].Answer
}

// Index returns the position of an exact question
func (s *Store) Index(question string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[question]
	return i, ok
}

// Pairs returns a copy of all pairs in store order
func (s *Store) Pairs() []Pair {
	if s == nil {
		return []Pair{}
	}
	pairs := make([]Pair, len(s.pairs))
	copy(pairs, s.pairs)
	return pairs
}

// Questions returns all questions in store order
func (s *Store) Questions() []string {
	questions := make([]string, s.Len())
	for i := range questions {
		questions[i] = s.pairs[i].Question
	}
	return questions
}
