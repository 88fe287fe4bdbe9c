package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"price-tracker/extractor"
	"price-tracker/internal/types"
)

const (
	separator = "--------------------------------------------------------------------------------"
	topDeals  = 5
)

// Searcher runs a product search across all sites
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.Record, error)
}

// HistoryStore persists observations and answers history lookups
type HistoryStore interface {
	SaveAll(ctx context.Context, records []types.Record) (int, error)
	History(ctx context.Context, nameQuery string) ([]types.Observation, error)
}

// Shell is the interactive menu around the search and history operations
type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	searcher Searcher
	store    HistoryStore
	open     func(url string) error
	logger   types.Logger
	// ClearScreen enables ANSI screen clearing between menus
	ClearScreen bool
}

// New creates a shell reading commands from in and writing to out
func New(in io.Reader, out io.Writer, searcher Searcher, store HistoryStore, logger types.Logger) *Shell {
	return &Shell{
		in:       bufio.NewScanner(in),
		out:      out,
		searcher: searcher,
		store:    store,
		open:     OpenBrowser,
		logger:   logger,
	}
}

// SetOpener replaces the function used to open deal URLs
func (s *Shell) SetOpener(open func(url string) error) {
	s.open = open
}

var errEOF = errors.New("end of input")

// Run shows the menu until the user exits, input ends or ctx is cancelled
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.clear()
		s.println("🛍️  US Price Comparison Tool 🛍️")
		s.println("\n1. 🔍 Search for products")
		s.println("2. 📊 View price history")
		s.println("3. 🚪 Exit")

		choice, err := s.prompt("\n✨ Enter your choice (1-3): ")
		if err != nil {
			s.println("\n👋 Goodbye!")
			return nil
		}

		switch choice {
		case "1":
			err = s.searchMenu(ctx)
		case "2":
			err = s.historyMenu(ctx)
		case "3":
			s.clear()
			s.println("👋 Goodbye! Thank you for using Price Comparison Tool!")
			return nil
		default:
			s.println("❌ Invalid choice. Please try again.")
		}

		if errors.Is(err, errEOF) {
			s.println("\n👋 Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) searchMenu(ctx context.Context) error {
	s.clear()
	query, err := s.prompt("🔍 Enter product name to search: ")
	if err != nil {
		return err
	}
	if query == "" {
		s.println("❌ Please enter a valid product name.")
		return nil
	}

	s.println("\n🔍 Searching for products across multiple sites...")
	records, err := s.searcher.Search(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.printf("\n❌ An error occurred: %v\n", err)
		return s.pause()
	}

	ranked := s.DisplayResults(records)
	if err := s.offerBestDeals(ranked); err != nil {
		return err
	}

	if len(ranked) > 0 {
		saved, err := s.store.SaveAll(ctx, ranked)
		if err != nil {
			s.logger.Errorf("Error saving products: %v", err)
			s.printf("❌ Could not save price history: %v\n", err)
		} else {
			s.logger.Debugf("Saved %d observations", saved)
		}
	}

	return s.pause()
}

// DisplayResults prints the records with a known price, cheapest first, and
// returns them in that order
func (s *Shell) DisplayResults(records []types.Record) []types.Record {
	if len(records) == 0 {
		s.println("❌ No products found.")
		return nil
	}

	ranked := extractor.RankByPrice(records)
	if len(ranked) == 0 {
		s.println("❌ No products found with valid prices.")
		return nil
	}

	s.println("\n🎯 Search Results:")
	s.println(separator)
	for i, r := range ranked {
		s.printf("%d. %s\n", i+1, r.Name)
		s.printf("   💰 Price: $%.2f\n", *r.Price)
		s.printf("   🏪 Website: %s\n", r.Site)
		if r.Rating > 0 {
			s.printf("   ⭐ Rating: %.1f (%d reviews)\n", r.Rating, r.ReviewCount)
		}
		if r.Availability != "" {
			s.printf("   📦 Status: %s\n", r.Availability)
		}
		s.printf("   🔗 URL: %s\n", r.URL)
		s.println(separator)
	}
	return ranked
}

func (s *Shell) offerBestDeals(ranked []types.Record) error {
	if len(ranked) == 0 {
		return nil
	}

	answer, err := s.prompt("\n🎁 Would you like to see the top 5 best deals? (y/n): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		return nil
	}

	deals := extractor.TopDeals(ranked, topDeals)
	s.clear()
	s.println("\n🏆 Top 5 Best Deals:")
	s.println(separator)
	for i, r := range deals {
		s.printf("%d. %s\n", i+1, r.Name)
		s.printf("   💰 Price: $%.2f\n", *r.Price)
		s.printf("   🏪 Website: %s\n", r.Site)
		s.printf("   🔗 URL: %s\n", r.URL)
		s.println(separator)
	}

	answer, err = s.prompt("\n🌐 Would you like to open these deals in your browser? (y/n): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		return nil
	}

	for _, r := range deals {
		if err := s.open(r.URL); err != nil {
			s.logger.Warnf("Failed to open %s: %v", r.URL, err)
			s.printf("Error opening %s: %v\n", r.URL, err)
		}
	}
	return nil
}

func (s *Shell) historyMenu(ctx context.Context) error {
	s.clear()
	name, err := s.prompt("🔍 Enter product name to view history: ")
	if err != nil {
		return err
	}
	if name == "" {
		s.println("❌ Please enter a valid product name.")
		return nil
	}

	history, err := s.store.History(ctx, name)
	if err != nil {
		s.logger.Errorf("Error loading price history: %v", err)
		s.printf("Error displaying price history: %v\n", err)
		return s.pause()
	}

	s.DisplayHistory(name, history)
	return s.pause()
}

// DisplayHistory prints observations in the order given
func (s *Shell) DisplayHistory(name string, history []types.Observation) {
	if len(history) == 0 {
		s.printf("❌ No price history found for '%s'\n", name)
		return
	}

	s.printf("\n📊 Price History for '%s':\n", name)
	s.println(separator)
	for _, o := range history {
		s.printf("🛒 Product: %s\n", o.Name)
		s.printf("🏪 Website: %s\n", o.Site)
		s.printf("💰 Price: $%.2f\n", o.Price)
		s.printf("📅 Date: %s\n", o.ObservedAt.Format("2006-01-02 15:04:05"))
		s.printf("🔗 URL: %s\n", o.URL)
		s.println(separator)
	}
}

func (s *Shell) prompt(text string) (string, error) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errEOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) pause() error {
	_, err := s.prompt("\n⏎ Press Enter to continue...")
	return err
}

func (s *Shell) clear() {
	if s.ClearScreen {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
