package main

import (
	"log"
	"sync"
)

// tokenBook is the demo token ledger. The court asks it to move fine
// money; a convict who cannot pay in full pays what they have.
type tokenBook struct {
	mu  sync.Mutex
	bal map[string]int
	log *log.Logger
}

func newTokenBook(logger *log.Logger) *tokenBook {
	return &tokenBook{bal: make(map[string]int), log: logger}
}

func (b *tokenBook) set(name string, amount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bal[name] = amount
}

func (b *tokenBook) balance(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bal[name]
}

func (b *tokenBook) Fine(from, to string, amount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if amount <= 0 {
		return nil
	}
	if b.bal[from] < amount {
		b.log.Printf("tokens: %s owes %d but holds %d; paying what they have", from, amount, b.bal[from])
		amount = b.bal[from]
	}
	b.bal[from] -= amount
	b.bal[to] += amount
	return nil
}
