package quotes

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"github.com/seedytypey/raceserver/internal/dependencies/random"
	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/storage"
)

// Service provides the pool of quotes that races are typed against
type Service struct {
	storage storage.Storage
	random  random.Random

	mu     sync.RWMutex
	quotes []string
	loaded bool
}

// New creates a new quotes service
func New(storage storage.Storage, random random.Random) *Service {
	return &Service{
		storage: storage,
		random:  random,
	}
}

// LoadFromStorage loads quotes from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	quotes, err := s.storage.GetQuotes(ctx)
	if err != nil {
		return err
	}
	return s.loadQuotes(quotes)
}

// LoadFromFile loads quotes from a file (one quote per line)
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var quotes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		quote := strings.TrimSpace(scanner.Text())
		if quote != "" {
			quotes = append(quotes, quote)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(quotes) == 0 {
		return model.ErrQuotesNotLoaded
	}

	// Save to storage for future use
	if err := s.storage.SaveQuotes(ctx, quotes); err != nil {
		return err
	}

	return s.loadQuotes(quotes)
}

// LoadQuotes directly loads a slice of quotes (useful for testing)
func (s *Service) LoadQuotes(quotes []string) error {
	if len(quotes) == 0 {
		return model.ErrQuotesNotLoaded
	}
	return s.loadQuotes(quotes)
}

// LoadDefaults loads the built-in quote pool and saves it to storage
func (s *Service) LoadDefaults(ctx context.Context) error {
	if err := s.storage.SaveQuotes(ctx, DefaultQuotes()); err != nil {
		return err
	}
	return s.loadQuotes(DefaultQuotes())
}

func (s *Service) loadQuotes(quotes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = make([]string, len(quotes))
	copy(s.quotes, quotes)
	s.loaded = true
	return nil
}

// RandomQuote picks a quote at random for a new race
func (s *Service) RandomQuote() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded || len(s.quotes) == 0 {
		return "", model.ErrQuotesNotLoaded
	}
	return s.quotes[s.random.Intn(len(s.quotes))], nil
}

// IsLoaded returns whether any quotes have been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Count returns the number of loaded quotes
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

// DefaultQuotes returns the built-in quote pool used when no quote file
// is configured
func DefaultQuotes() []string {
	return []string{
		"The quick brown fox jumps over the lazy dog.",
		"Programming is the art of telling another human what one wants the computer to do.",
		"Type racing is a fun way to improve your typing speed and accuracy.",
		"Practice makes perfect when it comes to typing quickly and accurately.",
		"The only way to learn a new programming language is by writing programs in it.",
		"Computers are good at following instructions, but not at reading your mind.",
		"The best error message is the one that never shows up.",
		"First, solve the problem. Then, write the code.",
		"Any fool can write code that a computer can understand. Good programmers write code that humans can understand.",
	}
}
